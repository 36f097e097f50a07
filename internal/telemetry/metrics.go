package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/766jbcodes/reddit-bot-aufintools-debt-recycler"

// Metrics counts scan outcomes. A nil *Metrics records nothing.
type Metrics struct {
	resolved   metric.Int64Counter
	unresolved metric.Int64Counter
	skipped    metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewMetrics creates the instruments on meter, or on the global meter
// provider when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	resolved, err := meter.Int64Counter("redditbot.notifications.resolved",
		metric.WithDescription("Notifications resolved to a Reddit thread"))
	if err != nil {
		return nil, err
	}
	unresolved, err := meter.Int64Counter("redditbot.notifications.unresolved",
		metric.WithDescription("Notifications without a Reddit reference"))
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("redditbot.notifications.skipped",
		metric.WithDescription("Notifications skipped before resolution"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("redditbot.scan.duration",
		metric.WithDescription("Duration of one mailbox scan"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		resolved:   resolved,
		unresolved: unresolved,
		skipped:    skipped,
		duration:   duration,
	}, nil
}

func (m *Metrics) Resolved(ctx context.Context, rule string) {
	if m == nil {
		return
	}
	m.resolved.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

func (m *Metrics) Unresolved(ctx context.Context, rule string) {
	if m == nil {
		return
	}
	m.unresolved.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

// Skipped records a message dropped for reason ("processed" or "unmatched").
func (m *Metrics) Skipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) ScanDuration(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, d.Seconds())
}
