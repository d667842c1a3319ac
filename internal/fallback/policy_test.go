package fallback

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/observability"
)

func TestFetchPassesThroughOnSuccess(t *testing.T) {
	metrics := observability.NewMetrics()
	policy := New(zap.NewNop(), nil, metrics)

	want := &domain.DashboardMetrics{TotalTicketsAnalyzed: 42}
	got, degraded := Fetch(context.Background(), policy, "/analytics/dashboard",
		func(context.Context) (*domain.DashboardMetrics, error) { return want, nil },
		DashboardMetrics())

	if degraded {
		t.Fatal("success marked as degraded")
	}
	if got != want {
		t.Fatalf("got %+v, want live value", got)
	}
	if n := len(metrics.Degradations()); n != 0 {
		t.Fatalf("degradations recorded on success: %d", n)
	}
}

func TestFetchSubstitutesFallbackOnError(t *testing.T) {
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.EventDegradation, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	policy := New(zap.NewNop(), dispatcher, metrics)
	fallbackValue := DashboardMetrics()

	got, degraded := Fetch(context.Background(), policy, "/analytics/dashboard",
		func(context.Context) (*domain.DashboardMetrics, error) {
			return nil, errors.New("connection refused")
		},
		fallbackValue)

	if !degraded {
		t.Fatal("failure not marked degraded")
	}
	if got != fallbackValue {
		t.Fatalf("got %+v, want the fallback payload", got)
	}
	if metrics.Degradations()["/analytics/dashboard"] != 1 {
		t.Fatalf("degradations = %v", metrics.Degradations())
	}
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	payload, ok := published[0].Payload.(events.DegradationPayload)
	if !ok || payload.Endpoint != "/analytics/dashboard" || payload.Error == "" {
		t.Fatalf("payload = %+v", published[0].Payload)
	}
}

func TestFetchWorksWithoutDispatcherOrMetrics(t *testing.T) {
	policy := New(zap.NewNop(), nil, nil)
	got, degraded := Fetch(context.Background(), policy, "/health",
		func(context.Context) (*domain.HealthStatus, error) { return nil, errors.New("down") },
		Health())
	if !degraded || got == nil {
		t.Fatalf("got %+v degraded %v", got, degraded)
	}
	if got.Status != "unreachable" {
		t.Fatalf("fallback health status = %q", got.Status)
	}
}
