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

// Metrics exposes prepaid domain instruments.
type Metrics struct {
	historyFetches  metric.Int64Counter
	historyDuration metric.Float64Histogram
	staleDiscarded  metric.Int64Counter
	reconciliations metric.Int64Counter
	discrepancy     metric.Float64Histogram
	fallbackTags    metric.Int64Counter
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
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "prepaid"
	}
	meter := provider.Meter(name)

	historyFetches, err := meter.Int64Counter("prepaid_history_fetch_total")
	if err != nil {
		return nil, err
	}
	historyDuration, err := meter.Float64Histogram("prepaid_history_fetch_duration_ms")
	if err != nil {
		return nil, err
	}
	staleDiscarded, err := meter.Int64Counter("prepaid_history_stale_discarded_total")
	if err != nil {
		return nil, err
	}
	reconciliations, err := meter.Int64Counter("prepaid_reconciliation_total")
	if err != nil {
		return nil, err
	}
	discrepancy, err := meter.Float64Histogram("prepaid_reconciliation_discrepancy")
	if err != nil {
		return nil, err
	}
	fallbackTags, err := meter.Int64Counter("prepaid_payment_method_fallback_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		historyFetches:  historyFetches,
		historyDuration: historyDuration,
		staleDiscarded:  staleDiscarded,
		reconciliations: reconciliations,
		discrepancy:     discrepancy,
		fallbackTags:    fallbackTags,
	}, nil
}

// RecordHistoryFetch counts a history fetch by outcome (ok, error, skipped).
func (m *Metrics) RecordHistoryFetch(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.historyFetches.Add(ctx, 1, metric.WithAttributes(attrs...))
	if outcome != "skipped" {
		m.historyDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
}

// RecordStaleDiscarded counts fetch results dropped because a newer load superseded them.
func (m *Metrics) RecordStaleDiscarded(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleDiscarded.Add(ctx, 1)
}

// RecordReconciliation counts reconciliations by which source won.
func (m *Metrics) RecordReconciliation(ctx context.Context, source string, discrepancy float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.reconciliations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.discrepancy.Record(ctx, discrepancy)
}

// RecordFallbackTags counts records whose payment method fell back to the default category.
func (m *Metrics) RecordFallbackTags(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fallbackTags.Add(ctx, int64(n))
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
	"endpoint":    {},
	"status_code": {},
	"outcome":     {},
	"source":      {},
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
