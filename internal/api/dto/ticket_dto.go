package dto

import "github.com/spec-kit/ticketflow/internal/domain"

// AnalyzeRequest is the analyze/classify/predict-priority request body.
type AnalyzeRequest struct {
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	RequesterInfo     *domain.RequesterInfo `json:"requester_info,omitempty"`
	AdditionalContext map[string]any        `json:"additional_context,omitempty"`
}

// BulkValidateRequest carries raw CSV content for validation.
type BulkValidateRequest struct {
	CSVContent string `json:"csv_content"`
	HasHeaders bool   `json:"has_headers"`
	Delimiter  string `json:"delimiter,omitempty"`
}

// BulkProcessRequest carries the validated ticket subset for batch work.
type BulkProcessRequest struct {
	Tickets []domain.BulkTicket       `json:"tickets"`
	Options *domain.ProcessingOptions `json:"options,omitempty"`
}

// TokenRequest asks for a mock dev session token.
type TokenRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
