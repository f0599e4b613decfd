package importer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	customerdomain "github.com/smallbiznis/salesdash/internal/customer/domain"
	"github.com/smallbiznis/salesdash/internal/dashboard/rollup"
	obscontext "github.com/smallbiznis/salesdash/internal/observability/context"
	"github.com/smallbiznis/salesdash/internal/observability/metrics"
	"github.com/smallbiznis/salesdash/internal/observability/tracing"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	regiondomain "github.com/smallbiznis/salesdash/internal/region/domain"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Config       config.Config
	Products     productdomain.Repository
	Customers    customerdomain.Repository
	Regions      regiondomain.Repository
	Transactions transactiondomain.Repository
	Rollup       *rollup.Service
	Lock         *ImportLock
	Runs         *RunStore
	Metrics      *metrics.Metrics `optional:"true"`
}

// Pipeline runs a full import: dimensions, key mapping, facts, snapshots.
type Pipeline struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	cfg          config.ImportConfig
	products     productdomain.Repository
	customers    customerdomain.Repository
	regions      regiondomain.Repository
	transactions transactiondomain.Repository
	rollup       *rollup.Service
	lock         *ImportLock
	runs         *RunStore
	metrics      *metrics.Metrics
}

func NewPipeline(p Params) *Pipeline {
	return &Pipeline{
		db:           p.DB,
		log:          p.Log.Named("importer.pipeline"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Config.Import,
		products:     p.Products,
		customers:    p.Customers,
		regions:      p.Regions,
		transactions: p.Transactions,
		rollup:       p.Rollup,
		lock:         p.Lock,
		runs:         p.Runs,
		metrics:      p.Metrics,
	}
}

// Options override the configured import settings for one run.
type Options struct {
	Dir         string
	BatchSize   int
	DatePolicy  string
	SkipMetrics bool
	Progress    func(Progress)
	Rand        *rand.Rand
}

type Report struct {
	RunID     string          `json:"run_id"`
	Dir       string          `json:"dir"`
	Products  DimensionResult `json:"products"`
	Customers DimensionResult `json:"customers"`
	Regions   DimensionResult `json:"regions"`
	Facts     FactResult      `json:"facts"`
	Snapshots []string        `json:"snapshots"`
	Duration  string          `json:"duration"`
}

func (p *Pipeline) resolve(opts Options) (Options, DatePolicy, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		opts.Dir = p.cfg.Dir
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = p.cfg.BatchSize
	}
	if strings.TrimSpace(opts.DatePolicy) == "" {
		opts.DatePolicy = p.cfg.DatePolicy
	}
	opts.SkipMetrics = opts.SkipMetrics || p.cfg.SkipMetrics
	policy, err := ParseDatePolicy(opts.DatePolicy)
	return opts, policy, err
}

// Run executes one import. It returns ErrImportInProgress when another
// import holds the lock.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	opts, policy, err := p.resolve(opts)
	if err != nil {
		return Report{}, err
	}

	release, err := p.lock.Acquire(ctx)
	if err != nil {
		return Report{}, err
	}
	defer release()

	started := p.clock.Now().UTC()
	report := Report{RunID: NewRunID(started), Dir: opts.Dir}
	ctx = obscontext.WithRunID(ctx, report.RunID)
	log := p.log.With(zap.String("run_id", report.RunID), zap.String("dir", opts.Dir))

	if _, err := p.runs.Start(ctx, report.RunID, opts.Dir, started); err != nil {
		return report, fmt.Errorf("record import run: %w", err)
	}
	log.Info("import started", zap.String("date_policy", string(policy)), zap.Int("batch_size", opts.BatchSize))

	runErr := p.execute(ctx, log, opts, policy, &report)

	finished := p.clock.Now().UTC()
	report.Duration = finished.Sub(started).String()
	status := RunStatusCompleted
	if runErr != nil {
		status = RunStatusFailed
	}
	if err := p.runs.Finish(context.WithoutCancel(ctx), report.RunID, finished, report, runErr); err != nil {
		log.Error("record import run result", zap.Error(err))
	}
	p.metrics.RecordImportRun(ctx, status)
	p.metrics.ObserveStage(ctx, "total", finished.Sub(started))

	if runErr != nil {
		log.Error("import failed", zap.Error(runErr))
		return report, runErr
	}
	log.Info("import completed",
		zap.Int("products", report.Products.Upserted),
		zap.Int("customers", report.Customers.Upserted),
		zap.Int("regions", report.Regions.Upserted),
		zap.Int("facts_inserted", report.Facts.Inserted),
		zap.Int("facts_skipped", report.Facts.Skipped),
		zap.Int("facts_invalid", report.Facts.Invalid),
	)
	return report, nil
}

func (p *Pipeline) execute(ctx context.Context, log *zap.Logger, opts Options, policy DatePolicy, report *Report) error {
	upserter := NewDimensionUpserter(p.db, p.log, p.genID, p.clock, p.products, p.customers, p.regions)
	mapper := NewKeyMapper(p.db, p.products, p.customers, p.regions)
	var keys FactKeys

	products, err := loadDimension[ProductRecord](log, opts.Dir, FileProducts, ProductKeyColumn)
	if err != nil {
		return err
	}
	if err := p.stage(ctx, "products", func(ctx context.Context) error {
		if products == nil {
			report.Products = DimensionResult{Dataset: "products", Skipped: true}
			keys.Products = NewKeyMap(nil)
			return nil
		}
		if report.Products, err = upserter.UpsertProducts(ctx, products); err != nil {
			return err
		}
		p.recordDimension(ctx, report.Products)
		keys.Products, err = mapper.Products(ctx, products)
		return err
	}); err != nil {
		return err
	}

	customers, err := loadDimension[CustomerRecord](log, opts.Dir, FileCustomers, CustomerKeyColumn)
	if err != nil {
		return err
	}
	if err := p.stage(ctx, "customers", func(ctx context.Context) error {
		if customers == nil {
			report.Customers = DimensionResult{Dataset: "customers", Skipped: true}
			keys.Customers = NewKeyMap(nil)
			return nil
		}
		if report.Customers, err = upserter.UpsertCustomers(ctx, customers); err != nil {
			return err
		}
		p.recordDimension(ctx, report.Customers)
		keys.Customers, err = mapper.Customers(ctx, customers)
		return err
	}); err != nil {
		return err
	}

	regions, err := loadDimension[RegionRecord](log, opts.Dir, FileRegions, RegionKeyColumn)
	if err != nil {
		return err
	}
	if err := p.stage(ctx, "regions", func(ctx context.Context) error {
		if regions == nil {
			report.Regions = DimensionResult{Dataset: "regions", Skipped: true}
			keys.Regions = NewKeyMap(nil)
			return nil
		}
		if report.Regions, err = upserter.UpsertRegions(ctx, regions); err != nil {
			return err
		}
		p.recordDimension(ctx, report.Regions)
		keys.Regions, err = mapper.Regions(ctx, regions)
		return err
	}); err != nil {
		return err
	}

	log.Info("key maps built",
		zap.Int("products", keys.Products.Len()),
		zap.Int("customers", keys.Customers.Len()),
		zap.Int("regions", keys.Regions.Len()),
	)

	if err := p.stage(ctx, "facts", func(ctx context.Context) error {
		report.Facts, err = p.loadFacts(ctx, log, opts, policy, keys)
		return err
	}); err != nil {
		return err
	}

	if opts.SkipMetrics {
		log.Info("snapshot materialization skipped")
		return nil
	}
	return p.stage(ctx, "materialize", func(ctx context.Context) error {
		res, err := p.rollup.Materialize(ctx)
		if err != nil {
			return err
		}
		report.Snapshots = res.Keys
		return nil
	})
}

func (p *Pipeline) loadFacts(ctx context.Context, log *zap.Logger, opts Options, policy DatePolicy, keys FactKeys) (FactResult, error) {
	path := filepath.Join(opts.Dir, FileFacts)
	src, err := OpenCSV[FactRecord](path, "")
	if errors.Is(err, ErrFileMissing) {
		log.Warn("fact file missing, skipping", zap.String("file", path))
		return FactResult{}, nil
	}
	if err != nil {
		return FactResult{}, err
	}
	defer src.Close()

	progress := func(pr Progress) {
		p.metrics.RecordBatch(ctx)
		log.Debug("fact batch flushed", zap.Int("batch", pr.Batch), zap.Int("size", pr.Size), zap.Int("inserted", pr.Inserted))
		if opts.Progress != nil {
			opts.Progress(pr)
		}
	}

	loader := NewFactLoader(
		NewRepositoryWriter(p.db, p.transactions),
		p.log,
		p.genID,
		p.clock,
		opts.Rand,
		FactLoaderConfig{BatchSize: opts.BatchSize, DatePolicy: policy, Progress: progress},
	)
	res, err := loader.Load(ctx, src, keys)
	p.metrics.RecordRows(ctx, "facts", "inserted", res.Inserted)
	p.metrics.RecordRows(ctx, "facts", "skipped", res.Skipped)
	p.metrics.RecordRows(ctx, "facts", "invalid", res.Invalid)
	return res, err
}

// stage runs fn under an "import <name>" span; fn gets the span's context so
// its queries and log lines nest under it.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, end := tracing.StartStage(ctx, name)
	start := p.clock.Now()
	err := fn(ctx)
	p.metrics.ObserveStage(ctx, name, p.clock.Now().Sub(start))
	end(err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) recordDimension(ctx context.Context, res DimensionResult) {
	p.metrics.RecordRows(ctx, res.Dataset, "upserted", res.Upserted)
	p.metrics.RecordRows(ctx, res.Dataset, "invalid", res.Invalid)
}

// loadDimension reads a dimension file. A missing file yields nil records.
func loadDimension[T any](log *zap.Logger, dir, file, surrogate string) ([]T, error) {
	path := filepath.Join(dir, file)
	records, err := ReadAll[T](path, surrogate)
	if errors.Is(err, ErrFileMissing) {
		log.Warn("dimension file missing, skipping", zap.String("file", path))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
