package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ginvite/ginvite-api"

// Metrics groups the counters recorded by the presentation pipeline.
type Metrics struct {
	themeFallbacks metric.Int64Counter
	malformedDates metric.Int64Counter
	dedupHits      metric.Int64Counter
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns counters bound to the global meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(otel.Meter(meterName))
	})
	return defaultMetrics
}

// NewMetrics creates counters on meter. Instrument errors leave the counter nil, which
// turns the corresponding record call into a no-op.
func NewMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}
	if meter == nil {
		return m
	}
	m.themeFallbacks, _ = meter.Int64Counter("ginvite.theme.fallbacks",
		metric.WithDescription("Invitations rendered with the placeholder theme"))
	m.malformedDates, _ = meter.Int64Counter("ginvite.events.malformed_dates",
		metric.WithDescription("Event entries whose date and time could not be parsed"))
	m.dedupHits, _ = meter.Int64Counter("ginvite.drafts.dedup_hits",
		metric.WithDescription("Draft saves suppressed as duplicates"))
	return m
}

// ThemeFallback records a placeholder render for the unresolved theme id.
func (m *Metrics) ThemeFallback(ctx context.Context, themeID string) {
	if m == nil || m.themeFallbacks == nil {
		return
	}
	m.themeFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("theme.id", SanitizeValue(themeID))))
}

// MalformedDates records n unparseable event instants.
func (m *Metrics) MalformedDates(ctx context.Context, n int) {
	if m == nil || m.malformedDates == nil || n <= 0 {
		return
	}
	m.malformedDates.Add(ctx, int64(n))
}

// DedupHit records a suppressed duplicate draft save.
func (m *Metrics) DedupHit(ctx context.Context) {
	if m == nil || m.dedupHits == nil {
		return
	}
	m.dedupHits.Add(ctx, 1)
}
