package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/observability"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// Client is the single request/response wrapper for the analysis backend.
// It builds URLs, attaches the bearer token, and normalizes error bodies
// into the DomainError shape.
type Client struct {
	baseURL string
	prefix  string
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics

	mu    sync.RWMutex
	token string
}

// New constructs a Client from configuration.
func New(cfg config.APIConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  cfg.VersionPrefix,
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		logger:  logger,
		metrics: metrics,
		token:   cfg.AuthToken,
	}
}

// SetToken replaces the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// AnalyzeTicket runs the blocking full analysis for a composed ticket.
func (c *Client) AnalyzeTicket(ctx context.Context, req domain.AnalysisRequest) (*domain.TicketAnalysis, error) {
	var out domain.TicketAnalysis
	if err := c.do(ctx, http.MethodPost, "/tickets/analyze", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type classifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type classifyResponse struct {
	Classification domain.Classification `json:"classification"`
}

// ClassifyTicket predicts category and subcategory only.
func (c *Client) ClassifyTicket(ctx context.Context, title, description string) (*domain.Classification, error) {
	var out classifyResponse
	req := classifyRequest{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/tickets/classify", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Classification, nil
}

// PredictPriority predicts urgency and estimated resolution time.
func (c *Client) PredictPriority(ctx context.Context, title, description string) (*domain.PriorityPrediction, error) {
	var out domain.PriorityPrediction
	req := classifyRequest{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/tickets/predict-priority", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type searchResponse struct {
	Results []domain.SolutionSearchResult `json:"results"`
}

// SearchSolutions queries the knowledge base for ranked fixes.
func (c *Client) SearchSolutions(ctx context.Context, query, category string, limit int) ([]domain.SolutionSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if category != "" {
		params.Set("category", category)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out searchResponse
	if err := c.do(ctx, http.MethodGet, "/solutions/search", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

type bulkValidateRequest struct {
	CSVContent string `json:"csv_content"`
	HasHeaders bool   `json:"has_headers"`
	Delimiter  string `json:"delimiter,omitempty"`
}

// BulkValidate submits raw CSV content for server-side row validation. The
// server is the sole authority on row-level correctness.
func (c *Client) BulkValidate(ctx context.Context, csvContent string, hasHeaders bool) (*domain.BulkValidationResult, error) {
	var out domain.BulkValidationResult
	req := bulkValidateRequest{CSVContent: csvContent, HasHeaders: hasHeaders}
	if err := c.do(ctx, http.MethodPost, "/tickets/bulk-validate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type bulkProcessRequest struct {
	Tickets []domain.BulkTicket      `json:"tickets"`
	Options domain.ProcessingOptions `json:"options"`
}

// BulkProcess submits the validated ticket subset for batch processing.
func (c *Client) BulkProcess(ctx context.Context, tickets []domain.BulkTicket, opts domain.ProcessingOptions) (*domain.ProcessingResult, error) {
	var out domain.ProcessingResult
	req := bulkProcessRequest{Tickets: tickets, Options: opts}
	if err := c.do(ctx, http.MethodPost, "/tickets/bulk-process", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkTemplate fetches the CSV template for bulk import.
func (c *Client) BulkTemplate(ctx context.Context) (*domain.CSVTemplate, error) {
	var out domain.CSVTemplate
	if err := c.do(ctx, http.MethodGet, "/tickets/bulk-template", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type dashboardResponse struct {
	Metrics domain.DashboardMetrics `json:"metrics"`
}

// Dashboard fetches aggregate metrics for the trailing window.
func (c *Client) Dashboard(ctx context.Context, days int) (*domain.DashboardMetrics, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var out dashboardResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/dashboard", params, nil, &out); err != nil {
		return nil, err
	}
	return &out.Metrics, nil
}

// Health probes backend availability.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	var out domain.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	target := c.baseURL + c.prefix + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperrors.NewTransportError(endpoint, 0, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordError(endpoint, method, "TRANSPORT_FAILED")
		return apperrors.NewTransportError(endpoint, 0, "request failed", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordRequest(endpoint, method, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(endpoint, resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := normalizeErrorBody(raw, resp.StatusCode)
		c.logger.Warn("backend call failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		c.metrics.RecordError(endpoint, method, strconv.Itoa(resp.StatusCode))
		return apperrors.NewTransportError(endpoint, resp.StatusCode, message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewTransportError(endpoint, resp.StatusCode, "invalid response body", err)
	}
	return nil
}

// normalizeErrorBody extracts a single message string from whatever error
// shape the backend produced: {"detail": "..."} from the analysis API,
// {"error": {"message": "..."}} from the stub, or a raw non-JSON body.
func normalizeErrorBody(raw []byte, status int) string {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" && len(trimmed) <= 200 {
		return trimmed
	}
	return fmt.Sprintf("request failed with status %d", status)
}
