package fallback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/observability"
)

// Policy wraps named remote calls: on failure it substitutes a static,
// schema-compatible payload and records the degradation instead of
// surfacing an error.
type Policy struct {
	logger     *zap.Logger
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// New constructs a Policy.
func New(logger *zap.Logger, dispatcher events.Dispatcher, metrics *observability.Metrics) *Policy {
	return &Policy{logger: logger, dispatcher: dispatcher, metrics: metrics}
}

// Fetch runs primary and, on any error, returns fallbackValue instead. The
// second return value reports whether the fallback was used, so the caller
// can show a non-blocking "API unavailable" warning.
func Fetch[T any](ctx context.Context, p *Policy, endpoint string, primary func(context.Context) (T, error), fallbackValue T) (T, bool) {
	value, err := primary(ctx)
	if err == nil {
		return value, false
	}
	p.recordDegradation(ctx, endpoint, err)
	return fallbackValue, true
}

func (p *Policy) recordDegradation(ctx context.Context, endpoint string, cause error) {
	now := time.Now()
	if p.logger != nil {
		p.logger.Warn("using fallback data, API unavailable",
			zap.String("endpoint", endpoint),
			zap.Error(cause),
			zap.Time("occurred", now))
	}
	p.metrics.RecordDegradation(endpoint)
	if p.dispatcher == nil {
		return
	}
	_ = p.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventDegradation,
		Timestamp: now,
		Payload: events.DegradationPayload{
			Endpoint: endpoint,
			Error:    cause.Error(),
			Occurred: now,
		},
	})
}
