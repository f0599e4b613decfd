package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdash/internal/clock"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultBatchSize = 500

// DatePolicy decides how transaction dates are assigned to fact rows.
type DatePolicy string

const (
	// DatePolicySynthetic places each row 1 to 365 days before import time.
	DatePolicySynthetic DatePolicy = "synthetic"
	// DatePolicySource uses the row's order_date or transaction_date and
	// falls back to synthetic when absent or unparseable.
	DatePolicySource DatePolicy = "source"
)

func ParseDatePolicy(s string) (DatePolicy, error) {
	switch DatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DatePolicySynthetic:
		return DatePolicySynthetic, nil
	case DatePolicySource:
		return DatePolicySource, nil
	default:
		return "", fmt.Errorf("unknown date policy %q", s)
	}
}

var sourceDateLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"02/01/2006",
	"2/1/2006",
}

func parseSourceDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range sourceDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}

// FactWriter persists one batch of transactions.
type FactWriter interface {
	WriteBatch(ctx context.Context, rows []transactiondomain.Transaction) error
}

type repoWriter struct {
	db   *gorm.DB
	repo transactiondomain.Repository
}

// NewRepositoryWriter writes batches through the transaction repository.
func NewRepositoryWriter(db *gorm.DB, repo transactiondomain.Repository) FactWriter {
	return &repoWriter{db: db, repo: repo}
}

func (w *repoWriter) WriteBatch(ctx context.Context, rows []transactiondomain.Transaction) error {
	return w.repo.BulkInsert(ctx, w.db, rows)
}

// FactKeys bundles the key maps a fact row is resolved through.
type FactKeys struct {
	Products  KeyMap
	Customers KeyMap
	Regions   KeyMap
}

type FactResult struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
	Batches  int `json:"batches"`
}

// Progress is reported after every flushed batch.
type Progress struct {
	Batch    int
	Size     int
	Inserted int
}

type FactLoaderConfig struct {
	BatchSize  int
	DatePolicy DatePolicy
	Progress   func(Progress)
}

// FactLoader streams fact rows into transactions in fixed-size batches.
type FactLoader struct {
	writer   FactWriter
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	rand     *rand.Rand
	batch    int
	policy   DatePolicy
	progress func(Progress)
}

func NewFactLoader(writer FactWriter, log *zap.Logger, genID *snowflake.Node, clk clock.Clock, rng *rand.Rand, cfg FactLoaderConfig) *FactLoader {
	size := cfg.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	policy := cfg.DatePolicy
	if policy == "" {
		policy = DatePolicySynthetic
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &FactLoader{
		writer:   writer,
		log:      log.Named("importer.fact"),
		genID:    genID,
		clock:    clk,
		rand:     rng,
		batch:    size,
		policy:   policy,
		progress: cfg.Progress,
	}
}

// Load consumes src until io.EOF. A failed flush aborts the load; batches
// written before it stay committed.
func (l *FactLoader) Load(ctx context.Context, src RecordReader[FactRecord], keys FactKeys) (FactResult, error) {
	var res FactResult
	importedAt := l.clock.Now().UTC().Truncate(time.Second)
	batch := make([]transactiondomain.Transaction, 0, l.batch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.writer.WriteBatch(ctx, batch); err != nil {
			return fmt.Errorf("flush fact batch %d: %w", res.Batches+1, err)
		}
		res.Batches++
		res.Inserted += len(batch)
		if l.progress != nil {
			l.progress(Progress{Batch: res.Batches, Size: len(batch), Inserted: res.Inserted})
		}
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read fact row %d: %w", res.Read+1, err)
		}
		res.Read++

		productID, ok := keys.Products.Resolve(rec.ProductKey)
		if !ok {
			res.Skipped++
			l.log.Debug("fact row skipped, product unresolved",
				zap.Int("row", res.Read),
				zap.String("product_key", rec.ProductKey),
			)
			continue
		}

		sales, err := transactiondomain.ParseSales(rec.Sales)
		if err != nil {
			res.Invalid++
			l.log.Warn("fact row dropped", zap.Int("row", res.Read), zap.Error(err))
			continue
		}

		batch = append(batch, transactiondomain.Transaction{
			ID:              l.genID.Generate(),
			ProductID:       productID,
			CustomerID:      keys.Customers.ResolvePtr(rec.CustomerKey),
			RegionID:        keys.Regions.ResolvePtr(rec.RegionKey),
			Sales:           sales,
			TransactionDate: l.transactionDate(rec, importedAt),
			CreatedAt:       importedAt,
			UpdatedAt:       importedAt,
		})

		if len(batch) >= l.batch {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}

	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (l *FactLoader) transactionDate(rec FactRecord, importedAt time.Time) time.Time {
	if l.policy == DatePolicySource {
		if t, ok := parseSourceDate(rec.SourceDate()); ok {
			return t
		}
	}
	days := 1 + l.rand.IntN(365)
	return importedAt.AddDate(0, 0, -days)
}
