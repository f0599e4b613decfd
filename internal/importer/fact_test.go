package importer

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdash/internal/clock"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sliceReader struct {
	rows []FactRecord
	pos  int
}

func (r *sliceReader) Next() (FactRecord, error) {
	if r.pos >= len(r.rows) {
		return FactRecord{}, io.EOF
	}
	rec := r.rows[r.pos]
	r.pos++
	return rec, nil
}

type countingWriter struct {
	sizes  []int
	rows   []transactiondomain.Transaction
	failAt int
}

func (w *countingWriter) WriteBatch(_ context.Context, rows []transactiondomain.Transaction) error {
	if w.failAt > 0 && len(w.sizes)+1 == w.failAt {
		return errors.New("disk full")
	}
	w.sizes = append(w.sizes, len(rows))
	w.rows = append(w.rows, rows...)
	return nil
}

var factNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestLoader(t *testing.T, w FactWriter, cfg FactLoaderConfig) *FactLoader {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return NewFactLoader(w, zap.NewNop(), node, clock.NewFakeClock(factNow), rand.New(rand.NewPCG(1, 2)), cfg)
}

func testKeys() FactKeys {
	return FactKeys{
		Products:  NewKeyMap(map[string]snowflake.ID{"p1": 101, "p2": 102}),
		Customers: NewKeyMap(map[string]snowflake.ID{"c1": 201}),
		Regions:   NewKeyMap(map[string]snowflake.ID{"r1": 301}),
	}
}

func TestLoadFlushesInBatches(t *testing.T) {
	rows := make([]FactRecord, 1234)
	for i := range rows {
		rows[i] = FactRecord{ProductKey: "p1", Sales: strconv.Itoa(i)}
	}
	w := &countingWriter{}
	var progress []Progress
	loader := newTestLoader(t, w, FactLoaderConfig{
		BatchSize: 500,
		Progress:  func(p Progress) { progress = append(progress, p) },
	})

	res, err := loader.Load(context.Background(), &sliceReader{rows: rows}, testKeys())
	require.NoError(t, err)
	assert.Equal(t, []int{500, 500, 234}, w.sizes)
	assert.Equal(t, 1234, res.Inserted)
	assert.Equal(t, 3, res.Batches)
	require.Len(t, progress, 3)
	assert.Equal(t, 1234, progress[2].Inserted)
}

func TestLoadResolvesKeysAndDropsBadRows(t *testing.T) {
	w := &countingWriter{}
	loader := newTestLoader(t, w, FactLoaderConfig{})

	res, err := loader.Load(context.Background(), &sliceReader{rows: []FactRecord{
		{ProductKey: "p1", CustomerKey: "c1", RegionKey: "r1", Sales: "10.50"},
		{ProductKey: "p2", CustomerKey: "c9", RegionKey: "", Sales: ""},
		{ProductKey: "missing", Sales: "5"},
		{ProductKey: "", Sales: "5"},
		{ProductKey: "p1", Sales: "-5"},
		{ProductKey: "p1", Sales: "n/a"},
	}}, testKeys())
	require.NoError(t, err)

	assert.Equal(t, FactResult{Read: 6, Inserted: 2, Skipped: 2, Invalid: 2, Batches: 1}, res)
	require.Len(t, w.rows, 2)

	first := w.rows[0]
	assert.Equal(t, snowflake.ID(101), first.ProductID)
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, snowflake.ID(201), *first.CustomerID)
	require.NotNil(t, first.RegionID)
	assert.Equal(t, "10.5", first.Sales.String())

	second := w.rows[1]
	assert.Nil(t, second.CustomerID)
	assert.Nil(t, second.RegionID)
	assert.True(t, second.Sales.IsZero())
}

func TestLoadSyntheticDatesWithinYear(t *testing.T) {
	w := &countingWriter{}
	loader := newTestLoader(t, w, FactLoaderConfig{})
	rows := make([]FactRecord, 200)
	for i := range rows {
		rows[i] = FactRecord{ProductKey: "p1", Sales: "1", OrderDate: "2017-11-08"}
	}

	_, err := loader.Load(context.Background(), &sliceReader{rows: rows}, testKeys())
	require.NoError(t, err)
	for _, row := range w.rows {
		assert.False(t, row.TransactionDate.After(factNow.AddDate(0, 0, -1)))
		assert.False(t, row.TransactionDate.Before(factNow.AddDate(0, 0, -365)))
	}
}

func TestLoadSourceDatePolicy(t *testing.T) {
	w := &countingWriter{}
	loader := newTestLoader(t, w, FactLoaderConfig{DatePolicy: DatePolicySource})

	_, err := loader.Load(context.Background(), &sliceReader{rows: []FactRecord{
		{ProductKey: "p1", Sales: "1", OrderDate: "2017-11-08"},
		{ProductKey: "p1", Sales: "1", TransactionDate: "08/11/2017"},
		{ProductKey: "p1", Sales: "1", OrderDate: "someday"},
	}}, testKeys())
	require.NoError(t, err)
	require.Len(t, w.rows, 3)

	want := time.Date(2017, 11, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, w.rows[0].TransactionDate)
	assert.Equal(t, want, w.rows[1].TransactionDate)
	assert.True(t, w.rows[2].TransactionDate.Before(factNow))
	assert.True(t, w.rows[2].TransactionDate.After(want))
}

func TestLoadFlushFailureIsFatal(t *testing.T) {
	rows := make([]FactRecord, 25)
	for i := range rows {
		rows[i] = FactRecord{ProductKey: "p1", Sales: "1"}
	}
	w := &countingWriter{failAt: 2}
	loader := newTestLoader(t, w, FactLoaderConfig{BatchSize: 10})

	res, err := loader.Load(context.Background(), &sliceReader{rows: rows}, testKeys())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush fact batch 2")
	assert.Equal(t, 10, res.Inserted)
	assert.Equal(t, []int{10}, w.sizes)
}

func TestParseDatePolicy(t *testing.T) {
	p, err := ParseDatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DatePolicySynthetic, p)

	p, err = ParseDatePolicy(" Source ")
	require.NoError(t, err)
	assert.Equal(t, DatePolicySource, p)

	_, err = ParseDatePolicy("random")
	assert.Error(t, err)
}
