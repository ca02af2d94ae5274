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

// Metrics holds the storefront instruments.
type Metrics struct {
	purchases       metric.Int64Counter
	purchaseRevenue metric.Int64Counter
	watches         metric.Int64Counter
	loginThrottled  metric.Int64Counter
	eventsPublished metric.Int64Counter
}

// NewProvider registers a global meter provider. A noop provider is used when export is disabled.
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

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics exporter configured",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New creates the storefront counters on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "movieshop"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	var err error
	if m.purchases, err = meter.Int64Counter("movieshop_purchases_total",
		metric.WithDescription("Completed movie purchases")); err != nil {
		return nil, err
	}
	if m.purchaseRevenue, err = meter.Int64Counter("movieshop_purchase_revenue_cents_total",
		metric.WithUnit("{cent}")); err != nil {
		return nil, err
	}
	if m.watches, err = meter.Int64Counter("movieshop_watches_total"); err != nil {
		return nil, err
	}
	if m.loginThrottled, err = meter.Int64Counter("movieshop_login_throttled_total"); err != nil {
		return nil, err
	}
	if m.eventsPublished, err = meter.Int64Counter("movieshop_events_published_total"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordPurchase counts a purchase. Repeat purchases of an owned movie are counted with already_owned=true.
func (m *Metrics) RecordPurchase(ctx context.Context, priceCents int64, alreadyOwned bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.Bool("already_owned", alreadyOwned))
	m.purchases.Add(ctx, 1, metric.WithAttributes(attrs...))
	if !alreadyOwned && priceCents > 0 {
		m.purchaseRevenue.Add(ctx, priceCents)
	}
}

func (m *Metrics) RecordWatch(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.watches.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordLoginThrottled(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.loginThrottled.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	attrs := FilterAttributes(
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("outcome", outcome),
	)
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
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

// Labels carrying user, profile or movie ids are never exported.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"already_owned": {},
	"outcome":       {},
	"reason":        {},
	"event_type":    {},
	"route":         {},
	"method":        {},
	"status_code":   {},
}

// FilterAttributes strips labels outside the allow-list.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
