package domain

// TicketStatus enumerates lifecycle states for tickets in the local ledger.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// TicketPriority enumerates urgency levels as the backend reports them.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Ticket is one entry in the local ledger.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	Assignee    string         `json:"assignee"`
	Category    string         `json:"category"`
	Complexity  string         `json:"complexity"`
	Progress    int            `json:"progress"`
	Created     string         `json:"created"`
	// TicketID is the backend correlation id, set once the ticket has been
	// submitted for analysis.
	TicketID string `json:"ticket_id,omitempty"`
}

// TicketDraft is the compose-form state before submission.
type TicketDraft struct {
	Title       string
	Description string
	Category    string
	Priority    TicketPriority
	Tags        []string
}

// RequesterInfo identifies the person a ticket is filed for.
type RequesterInfo struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
	Location   string `json:"location,omitempty"`
	Phone      string `json:"phone,omitempty"`
}
