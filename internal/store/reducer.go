package store

import (
	"math"

	"github.com/google/uuid"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// State is the immutable snapshot held by the store: the ticket ledger plus
// the statistics derived from it.
type State struct {
	Tickets []domain.Ticket
	Stats   domain.Stats
}

// Action mutates store state through the reducer. Implementations outside
// this package reduce to the identity transition.
type Action interface {
	actionName() string
}

// AddTicket prepends a new ticket built from the draft.
type AddTicket struct {
	Draft domain.TicketDraft
}

// UpdateTicket merges the patch into the matching ticket. A missing id is a
// silent no-op.
type UpdateTicket struct {
	ID    string
	Patch TicketPatch
}

// DeleteTicket removes the matching ticket.
type DeleteTicket struct {
	ID string
}

// SetDashboardMetrics replaces the remote-metrics slice of Stats without
// touching the ticket-derived slice.
type SetDashboardMetrics struct {
	Metrics *domain.DashboardMetrics
}

func (AddTicket) actionName() string           { return "add_ticket" }
func (UpdateTicket) actionName() string        { return "update_ticket" }
func (DeleteTicket) actionName() string        { return "delete_ticket" }
func (SetDashboardMetrics) actionName() string { return "set_dashboard_metrics" }

// TicketPatch carries partial ticket updates; nil fields are left untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	Assignee    *string
	Category    *string
	Complexity  *string
	Progress    *int
	TicketID    *string
}

// Reduce is the pure transition function. It never fails: unknown actions
// return the state unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddTicket:
		ticket := domain.Ticket{
			ID:          uuid.NewString(),
			Title:       a.Draft.Title,
			Description: a.Draft.Description,
			Priority:    a.Draft.Priority,
			Status:      domain.TicketStatusOpen,
			Category:    a.Draft.Category,
			Progress:    0,
			Created:     "just now",
		}
		if ticket.Priority == "" {
			ticket.Priority = domain.TicketPriorityMedium
		}
		tickets := make([]domain.Ticket, 0, len(state.Tickets)+1)
		tickets = append(tickets, ticket)
		tickets = append(tickets, state.Tickets...)
		return withStats(State{Tickets: tickets, Stats: state.Stats})

	case UpdateTicket:
		tickets := cloneTickets(state.Tickets)
		for i := range tickets {
			if tickets[i].ID != a.ID {
				continue
			}
			applyPatch(&tickets[i], a.Patch)
			return withStats(State{Tickets: tickets, Stats: state.Stats})
		}
		return state

	case DeleteTicket:
		tickets := make([]domain.Ticket, 0, len(state.Tickets))
		found := false
		for _, t := range state.Tickets {
			if t.ID == a.ID {
				found = true
				continue
			}
			tickets = append(tickets, t)
		}
		if !found {
			return state
		}
		return withStats(State{Tickets: tickets, Stats: state.Stats})

	case SetDashboardMetrics:
		next := state
		next.Tickets = cloneTickets(state.Tickets)
		next.Stats.Remote = a.Metrics
		return next

	default:
		return state
	}
}

func applyPatch(t *domain.Ticket, p TicketPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Complexity != nil {
		t.Complexity = *p.Complexity
	}
	if p.Progress != nil {
		t.Progress = clampProgress(*p.Progress)
	}
	if p.TicketID != nil {
		t.TicketID = *p.TicketID
	}
	// progress == 100 and status == Resolved are kept in lockstep. An
	// explicitly patched status wins over carried progress, so a resolved
	// ticket can be reopened without also patching progress.
	switch {
	case p.Status != nil && *p.Status != domain.TicketStatusResolved:
		if t.Progress == 100 {
			t.Progress = 99
		}
	case t.Status == domain.TicketStatusResolved:
		t.Progress = 100
	case t.Progress == 100:
		t.Status = domain.TicketStatusResolved
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// RecomputeStats derives the aggregate view from the ticket list alone. The
// remote slice is carried through untouched.
func RecomputeStats(tickets []domain.Ticket, remote *domain.DashboardMetrics) domain.Stats {
	stats := domain.Stats{
		TotalTickets: len(tickets),
		Remote:       remote,
	}
	for _, t := range tickets {
		if t.Status == domain.TicketStatusOpen {
			stats.OpenTickets++
		}
		if t.Status == domain.TicketStatusResolved {
			stats.ResolvedCount++
		}
		if t.Priority == domain.TicketPriorityHigh || t.Priority == domain.TicketPriorityCritical {
			stats.HighPriority++
		}
	}
	if stats.TotalTickets > 0 {
		stats.ResolutionRate = int(math.Round(100 * float64(stats.ResolvedCount) / float64(stats.TotalTickets)))
	}
	return stats
}

func withStats(state State) State {
	state.Stats = RecomputeStats(state.Tickets, state.Stats.Remote)
	return state
}

func cloneTickets(tickets []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)
	return out
}
