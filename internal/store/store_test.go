package store_test

import (
	"math"
	"testing"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/store"
)

func seedTickets(s *store.Store, n int) []string {
	for i := 0; i < n; i++ {
		s.Dispatch(store.AddTicket{Draft: domain.TicketDraft{
			Title:       "ticket",
			Description: "a description long enough",
		}})
	}
	state := s.State()
	ids := make([]string, 0, len(state.Tickets))
	for _, t := range state.Tickets {
		ids = append(ids, t.ID)
	}
	return ids
}

func resolve(s *store.Store, id string) {
	status := domain.TicketStatusResolved
	s.Dispatch(store.UpdateTicket{ID: id, Patch: store.TicketPatch{Status: &status}})
}

func assertStatsConsistent(t *testing.T, state store.State) {
	t.Helper()
	if state.Stats.TotalTickets != len(state.Tickets) {
		t.Fatalf("totalTickets = %d, ledger length = %d", state.Stats.TotalTickets, len(state.Tickets))
	}
	resolved := 0
	for _, ticket := range state.Tickets {
		if ticket.Status == domain.TicketStatusResolved {
			resolved++
		}
	}
	want := 0
	if len(state.Tickets) > 0 {
		want = int(math.Round(100 * float64(resolved) / float64(len(state.Tickets))))
	}
	if state.Stats.ResolutionRate != want {
		t.Fatalf("resolutionRate = %d, want %d", state.Stats.ResolutionRate, want)
	}
}

func TestAddTicketOnSeededLedger(t *testing.T) {
	s := store.New(nil)
	ids := seedTickets(s, 5)
	resolve(s, ids[0])
	resolve(s, ids[1])

	s.Dispatch(store.AddTicket{Draft: domain.TicketDraft{
		Title:       "switch down",
		Description: "core switch unreachable",
		Priority:    domain.TicketPriorityHigh,
	}})

	state := s.State()
	if state.Stats.TotalTickets != 6 {
		t.Fatalf("totalTickets = %d, want 6", state.Stats.TotalTickets)
	}
	// 2 resolved out of 6 rounds to 33
	if state.Stats.ResolutionRate != 33 {
		t.Fatalf("resolutionRate = %d, want 33", state.Stats.ResolutionRate)
	}
	added := state.Tickets[0]
	if added.Title != "switch down" {
		t.Fatalf("new ticket not prepended, got %q", added.Title)
	}
	if added.Progress != 0 || added.Created != "just now" || added.Status != domain.TicketStatusOpen {
		t.Fatalf("new ticket defaults wrong: %+v", added)
	}
	if added.ID == "" {
		t.Fatal("new ticket has no identity")
	}
	assertStatsConsistent(t, state)
}

func TestStatsConsistentAcrossActionSequences(t *testing.T) {
	s := store.New(nil)
	ids := seedTickets(s, 4)
	assertStatsConsistent(t, s.State())

	resolve(s, ids[2])
	assertStatsConsistent(t, s.State())

	s.Dispatch(store.DeleteTicket{ID: ids[0]})
	assertStatsConsistent(t, s.State())

	high := domain.TicketPriorityCritical
	s.Dispatch(store.UpdateTicket{ID: ids[1], Patch: store.TicketPatch{Priority: &high}})
	state := s.State()
	assertStatsConsistent(t, state)
	if state.Stats.HighPriority != 1 {
		t.Fatalf("highPriority = %d, want 1", state.Stats.HighPriority)
	}

	s.Dispatch(store.DeleteTicket{ID: ids[1]})
	s.Dispatch(store.DeleteTicket{ID: ids[2]})
	s.Dispatch(store.DeleteTicket{ID: ids[3]})
	state = s.State()
	assertStatsConsistent(t, state)
	if state.Stats.ResolutionRate != 0 {
		t.Fatalf("empty ledger resolutionRate = %d, want 0", state.Stats.ResolutionRate)
	}
}

func TestUpdateMissingTicketIsSilentNoOp(t *testing.T) {
	s := store.New(nil)
	seedTickets(s, 2)
	before := s.State()

	notified := false
	unsubscribe := s.Subscribe(func(store.State) { notified = true })
	defer unsubscribe()

	title := "nope"
	s.Dispatch(store.UpdateTicket{ID: "missing", Patch: store.TicketPatch{Title: &title}})

	after := s.State()
	if notified {
		t.Fatal("no-op update notified subscribers")
	}
	if len(after.Tickets) != len(before.Tickets) || after.Stats != before.Stats {
		t.Fatal("no-op update changed state")
	}
}

func TestNilActionIsIdentity(t *testing.T) {
	initial := store.State{Tickets: []domain.Ticket{{ID: "a", Status: domain.TicketStatusOpen}}}
	next := store.Reduce(initial, nil)
	if len(next.Tickets) != 1 || next.Tickets[0].ID != "a" {
		t.Fatalf("nil action mutated state: %+v", next)
	}
}

func TestSetDashboardMetricsLeavesLedgerSliceAlone(t *testing.T) {
	s := store.New(nil)
	ids := seedTickets(s, 3)
	resolve(s, ids[0])
	before := s.State().Stats

	s.Dispatch(store.SetDashboardMetrics{Metrics: &domain.DashboardMetrics{
		TotalTicketsAnalyzed: 1000,
		KnowledgeBaseSize:    50,
	}})

	state := s.State()
	if state.Stats.Remote == nil || state.Stats.Remote.TotalTicketsAnalyzed != 1000 {
		t.Fatalf("remote metrics not applied: %+v", state.Stats.Remote)
	}
	if state.Stats.TotalTickets != before.TotalTickets ||
		state.Stats.ResolutionRate != before.ResolutionRate ||
		state.Stats.OpenTickets != before.OpenTickets {
		t.Fatalf("ticket-derived stats changed: before %+v after %+v", before, state.Stats)
	}
}

func TestResolvedStatusAndProgressStayInLockstep(t *testing.T) {
	s := store.New(nil)
	ids := seedTickets(s, 1)

	status := domain.TicketStatusResolved
	s.Dispatch(store.UpdateTicket{ID: ids[0], Patch: store.TicketPatch{Status: &status}})
	if got := s.State().Tickets[0]; got.Progress != 100 {
		t.Fatalf("resolving did not complete progress: %+v", got)
	}

	s2 := store.New(nil)
	ids2 := seedTickets(s2, 1)
	full := 100
	s2.Dispatch(store.UpdateTicket{ID: ids2[0], Patch: store.TicketPatch{Progress: &full}})
	if got := s2.State().Tickets[0]; got.Status != domain.TicketStatusResolved {
		t.Fatalf("progress 100 did not resolve: %+v", got)
	}
}

func TestExplicitStatusPatchReopensResolvedTicket(t *testing.T) {
	s := store.New(nil)
	ids := seedTickets(s, 1)
	resolve(s, ids[0])

	status := domain.TicketStatusInProgress
	s.Dispatch(store.UpdateTicket{ID: ids[0], Patch: store.TicketPatch{Status: &status}})

	got := s.State().Tickets[0]
	if got.Status != domain.TicketStatusInProgress {
		t.Fatalf("explicit status patch discarded: %+v", got)
	}
	if got.Progress == 100 {
		t.Fatalf("reopened ticket kept completed progress: %+v", got)
	}
	assertStatsConsistent(t, s.State())
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := store.New(nil)

	calls := 0
	unsubscribe := s.Subscribe(func(state store.State) {
		calls++
		if state.Stats.TotalTickets != len(state.Tickets) {
			t.Fatalf("listener saw inconsistent snapshot")
		}
	})

	seedTickets(s, 2)
	if calls != 2 {
		t.Fatalf("listener called %d times, want 2", calls)
	}

	unsubscribe()
	seedTickets(s, 1)
	if calls != 2 {
		t.Fatalf("listener called after unsubscribe")
	}
}
