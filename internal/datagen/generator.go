// Package datagen writes sample sales extracts in the layout the importer reads.
package datagen

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jszwec/csvutil"
	"github.com/smallbiznis/salesdash/internal/importer"
)

var (
	ErrInvalidCount = errors.New("invalid_count")
)

var (
	segments    = []string{"Consumer", "Corporate", "Home Office"}
	regionNames = []string{"Central", "East", "South", "West"}
)

// maxRegionAttempts bounds retries when drawing a unique (city, state) pair.
const maxRegionAttempts = 20

type Options struct {
	Dir       string
	Products  int
	Customers int
	Regions   int
	Facts     int
	Seed      uint64
	// Now anchors order dates; facts fall within the year before it.
	Now time.Time
}

func DefaultOptions() Options {
	return Options{
		Dir:       "data",
		Products:  50,
		Customers: 100,
		Regions:   30,
		Facts:     2000,
	}
}

type Result struct {
	Dir       string `json:"dir"`
	Products  int    `json:"products"`
	Customers int    `json:"customers"`
	Regions   int    `json:"regions"`
	Facts     int    `json:"facts"`
}

// Generator produces the four extract files from a seeded faker so the same
// seed always yields the same files.
type Generator struct {
	faker *gofakeit.Faker
	opts  Options
}

func New(opts Options) (*Generator, error) {
	if opts.Products < 1 {
		return nil, fmt.Errorf("%w: products must be at least 1", ErrInvalidCount)
	}
	if opts.Customers < 0 || opts.Regions < 0 || opts.Facts < 0 {
		return nil, ErrInvalidCount
	}
	if strings.TrimSpace(opts.Dir) == "" {
		opts.Dir = DefaultOptions().Dir
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(opts.Now.UnixNano())
	}
	return &Generator{faker: gofakeit.New(seed), opts: opts}, nil
}

func (g *Generator) Write() (Result, error) {
	if err := os.MkdirAll(g.opts.Dir, 0o755); err != nil {
		return Result{}, err
	}

	products := g.products()
	customers := g.customers()
	regions := g.regions()
	facts := g.facts(len(products), len(customers), len(regions))

	if err := writeFile(filepath.Join(g.opts.Dir, importer.FileProducts), products); err != nil {
		return Result{}, err
	}
	if err := writeFile(filepath.Join(g.opts.Dir, importer.FileCustomers), customers); err != nil {
		return Result{}, err
	}
	if err := writeFile(filepath.Join(g.opts.Dir, importer.FileRegions), regions); err != nil {
		return Result{}, err
	}
	if err := writeFile(filepath.Join(g.opts.Dir, importer.FileFacts), facts); err != nil {
		return Result{}, err
	}

	return Result{
		Dir:       g.opts.Dir,
		Products:  len(products),
		Customers: len(customers),
		Regions:   len(regions),
		Facts:     len(facts),
	}, nil
}

func (g *Generator) products() []importer.ProductRecord {
	out := make([]importer.ProductRecord, 0, g.opts.Products)
	for i := 0; i < g.opts.Products; i++ {
		category := g.faker.ProductCategory()
		out = append(out, importer.ProductRecord{
			ProductKey:  strconv.Itoa(i + 1),
			ProductID:   fmt.Sprintf("%s-%08d", categoryCode(category), i+1),
			ProductName: g.faker.ProductName(),
			Category:    category,
			SubCategory: g.faker.ProductMaterial(),
		})
	}
	return out
}

func (g *Generator) customers() []importer.CustomerRecord {
	out := make([]importer.CustomerRecord, 0, g.opts.Customers)
	for i := 0; i < g.opts.Customers; i++ {
		first, last := g.faker.FirstName(), g.faker.LastName()
		out = append(out, importer.CustomerRecord{
			CustomerKey:  strconv.Itoa(i + 1),
			CustomerID:   fmt.Sprintf("%c%c-%05d", initial(first), initial(last), 10000+i),
			CustomerName: first + " " + last,
			Segment:      g.faker.RandomString(segments),
		})
	}
	return out
}

func (g *Generator) regions() []importer.RegionRecord {
	out := make([]importer.RegionRecord, 0, g.opts.Regions)
	seen := make(map[string]struct{}, g.opts.Regions)
	for i := 0; i < g.opts.Regions; i++ {
		city, state := g.uniqueLocation(seen, i)
		out = append(out, importer.RegionRecord{
			RegionKey: strconv.Itoa(i + 1),
			Country:   "United States",
			Region:    g.faker.RandomString(regionNames),
			State:     state,
			City:      city,
		})
	}
	return out
}

func (g *Generator) uniqueLocation(seen map[string]struct{}, i int) (string, string) {
	var city, state string
	for attempt := 0; attempt < maxRegionAttempts; attempt++ {
		city, state = g.faker.City(), g.faker.State()
		key := city + "\x00" + state
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			return city, state
		}
	}
	city = fmt.Sprintf("%s %d", city, i+1)
	seen[city+"\x00"+state] = struct{}{}
	return city, state
}

func (g *Generator) facts(products, customers, regions int) []importer.FactRecord {
	out := make([]importer.FactRecord, 0, g.opts.Facts)
	end := g.opts.Now
	start := end.AddDate(-1, 0, 0)
	for i := 0; i < g.opts.Facts; i++ {
		rec := importer.FactRecord{
			ProductKey: strconv.Itoa(g.faker.IntRange(1, products)),
			Sales:      strconv.FormatFloat(roundCents(g.faker.Price(1, 2500)), 'f', 2, 64),
			OrderDate:  g.faker.DateRange(start, end).Format(time.DateOnly),
		}
		if customers > 0 {
			rec.CustomerKey = strconv.Itoa(g.faker.IntRange(1, customers))
		}
		if regions > 0 {
			rec.RegionKey = strconv.Itoa(g.faker.IntRange(1, regions))
		}
		out = append(out, rec)
	}
	return out
}

func writeFile[T any](path string, records []T) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	var zero T
	if err := enc.EncodeHeader(zero); err != nil {
		return fmt.Errorf("encode header %s: %w", filepath.Base(path), err)
	}
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
		}
	}
	w.Flush()
	return w.Error()
}

func categoryCode(category string) string {
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(category) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 3 {
			break
		}
	}
	if len(letters) == 0 {
		return "GEN"
	}
	return string(letters)
}

func initial(s string) rune {
	for _, r := range strings.ToUpper(s) {
		return r
	}
	return 'X'
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
