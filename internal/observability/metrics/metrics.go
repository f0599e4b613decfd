package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes import pipeline instruments.
type Metrics struct {
	importRuns     metric.Int64Counter
	importRows     metric.Int64Counter
	importBatches  metric.Int64Counter
	importDuration metric.Float64Histogram
	snapshots      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the import metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "salesdash"
	}
	meter := provider.Meter(name)

	importRuns, err := meter.Int64Counter("salesdash_import_runs_total",
		metric.WithDescription("Import runs by final status."))
	if err != nil {
		return nil, err
	}
	importRows, err := meter.Int64Counter("salesdash_import_rows_total",
		metric.WithDescription("Rows processed by the import pipeline, by dataset and outcome."))
	if err != nil {
		return nil, err
	}
	importBatches, err := meter.Int64Counter("salesdash_import_batches_total",
		metric.WithDescription("Fact batches flushed."))
	if err != nil {
		return nil, err
	}
	importDuration, err := meter.Float64Histogram("salesdash_import_duration_seconds",
		metric.WithDescription("Wall time of import stages."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	snapshots, err := meter.Int64Counter("salesdash_metric_snapshots_total",
		metric.WithDescription("Dashboard snapshot upserts by metric key."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		importRuns:     importRuns,
		importRows:     importRows,
		importBatches:  importBatches,
		importDuration: importDuration,
		snapshots:      snapshots,
	}, nil
}

// NewNoop returns instruments bound to a no-op provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordImportRun increments run counts by final status.
func (m *Metrics) RecordImportRun(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.importRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRows adds n rows for a dataset and outcome (upserted, inserted, skipped, invalid).
func (m *Metrics) RecordRows(ctx context.Context, dataset, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	attrs := FilterAttributes(
		attribute.String("dataset", strings.TrimSpace(dataset)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.importRows.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}

// RecordBatch increments flushed fact batches.
func (m *Metrics) RecordBatch(ctx context.Context) {
	if m == nil {
		return
	}
	m.importBatches.Add(ctx, 1)
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(ctx context.Context, stage string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("stage", strings.TrimSpace(stage)))
	m.importDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// RecordSnapshot increments snapshot upserts for a metric key.
func (m *Metrics) RecordSnapshot(ctx context.Context, key string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("metric_key", strings.TrimSpace(key)))
	m.snapshots.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"status":     {},
	"dataset":    {},
	"outcome":    {},
	"stage":      {},
	"metric_key": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
