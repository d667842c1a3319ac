package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/observability"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observability.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	metrics := observability.NewMetrics()
	client := New(config.APIConfig{
		BaseURL:       server.URL,
		VersionPrefix: "/api/v1",
		AuthToken:     "test-token",
	}, zap.NewNop(), metrics)
	return client, metrics
}

func TestClassifyBuildsPathAndAuthHeader(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(map[string]any{
			"classification": map[string]any{"category": "Network Issues", "confidence": 0.91},
		})
	})

	result, err := client.ClassifyTicket(context.Background(), "VPN drops", "VPN disconnects constantly")
	if err != nil {
		t.Fatalf("ClassifyTicket: %v", err)
	}
	if gotPath != "/api/v1/tickets/classify" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content-type = %q", gotContentType)
	}
	if result.Category != "Network Issues" {
		t.Fatalf("classification = %+v", result)
	}
}

func TestSetTokenReplacesBearer(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(domain.HealthStatus{Status: "healthy"})
	})

	client.SetToken("rotated")
	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if gotAuth != "Bearer rotated" {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestSearchSolutionsEncodesQueryParams(t *testing.T) {
	var got map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"path":     r.URL.Path,
			"q":        r.URL.Query().Get("q"),
			"category": r.URL.Query().Get("category"),
			"limit":    r.URL.Query().Get("limit"),
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []domain.SolutionSearchResult{{Title: "Restart VPN", Similarity: 0.8}},
		})
	})

	results, err := client.SearchSolutions(context.Background(), "vpn drops often", "Network Issues", 3)
	if err != nil {
		t.Fatalf("SearchSolutions: %v", err)
	}
	if got["path"] != "/api/v1/solutions/search" {
		t.Fatalf("path = %q", got["path"])
	}
	if got["q"] != "vpn drops often" || got["category"] != "Network Issues" || got["limit"] != "3" {
		t.Fatalf("query = %+v", got)
	}
	if len(results) != 1 || results[0].BestScore() != 0.8 {
		t.Fatalf("results = %+v", results)
	}
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"fastapi detail", http.StatusUnprocessableEntity, `{"detail":"description too short"}`, "description too short"},
		{"wrapped error", http.StatusBadRequest, `{"error":{"code":"VALIDATION_FAILED","message":"title is required"}}`, "title is required"},
		{"raw body", http.StatusBadGateway, `upstream timed out`, "upstream timed out"},
		{"empty body", http.StatusInternalServerError, ``, "request failed with status 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.Health(context.Background())
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) {
				t.Fatalf("err = %v, want DomainError", err)
			}
			if domainErr.Code != "TRANSPORT_FAILED" {
				t.Fatalf("code = %q", domainErr.Code)
			}
			if domainErr.HTTPStatus != tc.status {
				t.Fatalf("status = %d, want %d", domainErr.HTTPStatus, tc.status)
			}
			if domainErr.Message != tc.message {
				t.Fatalf("message = %q, want %q", domainErr.Message, tc.message)
			}
			if domainErr.Details["endpoint"] != "/health" {
				t.Fatalf("details = %+v", domainErr.Details)
			}
			if len(metrics.Degradations()) != 0 {
				t.Fatal("transport errors must not count as degradations")
			}
		})
	}
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	metrics := observability.NewMetrics()
	client := New(config.APIConfig{
		BaseURL:       "http://127.0.0.1:1", // nothing listens here
		VersionPrefix: "/api/v1",
	}, zap.NewNop(), metrics)

	_, err := client.Health(context.Background())
	if !apperrors.IsTransport(err) {
		t.Fatalf("err = %v, want transport error", err)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.HTTPStatus != 0 {
		t.Fatalf("status = %+v, want 0 for no response", domainErr)
	}
}

func TestDashboardUnwrapsMetricsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("days"); got != "30" {
			t.Errorf("days = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"metrics": domain.DashboardMetrics{TotalTicketsAnalyzed: 1247, KnowledgeBaseSize: 356},
		})
	})

	metrics, err := client.Dashboard(context.Background(), 30)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if metrics.TotalTicketsAnalyzed != 1247 || metrics.KnowledgeBaseSize != 356 {
		t.Fatalf("metrics = %+v", metrics)
	}
}

func TestBulkValidateRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CSVContent string `json:"csv_content"`
			HasHeaders bool   `json:"has_headers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.HasHeaders || req.CSVContent == "" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(domain.BulkValidationResult{
			IsValid:   true,
			TotalRows: 1,
			ValidRows: 1,
			Tickets:   []domain.BulkTicket{{Title: "WiFi down"}},
		})
	})

	result, err := client.BulkValidate(context.Background(), "title,description\nWiFi down,cannot connect\n", true)
	if err != nil {
		t.Fatalf("BulkValidate: %v", err)
	}
	if !result.IsValid || result.ValidRows != 1 || len(result.Tickets) != 1 {
		t.Fatalf("result = %+v", result)
	}
}
