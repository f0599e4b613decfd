package datagen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallbiznis/salesdash/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func generate(t *testing.T, opts Options) (string, Result) {
	t.Helper()
	opts.Dir = t.TempDir()
	opts.Now = fixedNow
	g, err := New(opts)
	require.NoError(t, err)
	res, err := g.Write()
	require.NoError(t, err)
	return opts.Dir, res
}

func TestGeneratorWritesAllFiles(t *testing.T) {
	dir, res := generate(t, Options{Products: 5, Customers: 7, Regions: 4, Facts: 40, Seed: 42})

	assert.Equal(t, Result{Dir: dir, Products: 5, Customers: 7, Regions: 4, Facts: 40}, res)

	products, err := importer.ReadAll[importer.ProductRecord](filepath.Join(dir, importer.FileProducts), importer.ProductKeyColumn)
	require.NoError(t, err)
	require.Len(t, products, 5)
	for _, p := range products {
		assert.NotEmpty(t, p.ProductID)
		assert.NotEmpty(t, p.ProductName)
		assert.NotEmpty(t, p.Category)
	}

	customers, err := importer.ReadAll[importer.CustomerRecord](filepath.Join(dir, importer.FileCustomers), importer.CustomerKeyColumn)
	require.NoError(t, err)
	require.Len(t, customers, 7)
	for _, c := range customers {
		assert.Contains(t, segments, c.Segment)
	}

	facts, err := importer.ReadAll[importer.FactRecord](filepath.Join(dir, importer.FileFacts), importer.ProductKeyColumn)
	require.NoError(t, err)
	require.Len(t, facts, 40)
	for _, f := range facts {
		d, err := time.Parse(time.DateOnly, f.OrderDate)
		require.NoError(t, err)
		assert.False(t, d.After(fixedNow))
		assert.False(t, d.Before(fixedNow.AddDate(-1, 0, -1)))
		assert.NotEmpty(t, f.Sales)
	}
}

func TestGeneratorRegionPairsAreUnique(t *testing.T) {
	dir, _ := generate(t, Options{Products: 1, Regions: 200, Seed: 7})

	regions, err := importer.ReadAll[importer.RegionRecord](filepath.Join(dir, importer.FileRegions), importer.RegionKeyColumn)
	require.NoError(t, err)
	require.Len(t, regions, 200)

	seen := map[string]bool{}
	for _, r := range regions {
		key := r.City + "|" + r.State
		assert.False(t, seen[key], "duplicate location %s", key)
		seen[key] = true
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	opts := Options{Products: 3, Customers: 3, Regions: 3, Facts: 10, Seed: 99}
	dirA, _ := generate(t, opts)
	dirB, _ := generate(t, opts)

	for _, name := range []string{importer.FileProducts, importer.FileCustomers, importer.FileRegions, importer.FileFacts} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestGeneratorWithoutOptionalDimensions(t *testing.T) {
	dir, res := generate(t, Options{Products: 2, Facts: 5, Seed: 1})
	assert.Equal(t, 0, res.Customers)

	facts, err := importer.ReadAll[importer.FactRecord](filepath.Join(dir, importer.FileFacts), importer.ProductKeyColumn)
	require.NoError(t, err)
	for _, f := range facts {
		assert.Empty(t, f.CustomerKey)
		assert.Empty(t, f.RegionKey)
	}
}

func TestNewRejectsInvalidCounts(t *testing.T) {
	_, err := New(Options{Products: 0})
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = New(Options{Products: 1, Facts: -1})
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestCategoryCode(t *testing.T) {
	assert.Equal(t, "FUR", categoryCode("Furniture"))
	assert.Equal(t, "OFF", categoryCode("office supplies"))
	assert.Equal(t, "GEN", categoryCode("123"))
}
