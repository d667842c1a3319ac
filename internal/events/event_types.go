package events

import (
	"time"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAdded       EventType = "ticket_added"
	EventTicketUpdated     EventType = "ticket_updated"
	EventTicketDeleted     EventType = "ticket_deleted"
	EventStatsRecomputed   EventType = "stats_recomputed"
	EventDegradation       EventType = "degradation"
	EventAnalysisCompleted EventType = "analysis_completed"
	EventAnalysisAbandoned EventType = "analysis_abandoned"
)

// Event represents an event emitted by the client core.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketAddedPayload payload.
type TicketAddedPayload struct {
	TicketID string                `json:"ticket_id"`
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketID string `json:"ticket_id"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketID string `json:"ticket_id"`
}

// StatsRecomputedPayload payload.
type StatsRecomputedPayload struct {
	TotalTickets   int `json:"total_tickets"`
	ResolutionRate int `json:"resolution_rate"`
}

// DegradationPayload records a fallback substitution for a failed endpoint.
type DegradationPayload struct {
	Endpoint string    `json:"endpoint"`
	Error    string    `json:"error"`
	Occurred time.Time `json:"occurred"`
}

// AnalysisCompletedPayload payload.
type AnalysisCompletedPayload struct {
	RequestID string `json:"request_id"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
}

// AnalysisAbandonedPayload records a best-effort analysis pass that failed.
type AnalysisAbandonedPayload struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}
