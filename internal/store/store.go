package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/events"
)

// Store is the only mutator of ticket state. All changes go through
// Dispatch; subscribers are notified synchronously with a state snapshot.
type Store struct {
	mu         sync.Mutex
	state      State
	listeners  map[int]func(State)
	nextID     int
	dispatcher events.Dispatcher
}

// New creates an empty store. The dispatcher is optional; when present,
// ticket mutations publish lifecycle events.
func New(dispatcher events.Dispatcher) *Store {
	return &Store{
		state:      State{Tickets: []domain.Ticket{}},
		listeners:  map[int]func(State){},
		dispatcher: dispatcher,
	}
}

// Dispatch applies the action through the reducer and notifies subscribers.
// Unknown actions are no-ops and notify nobody.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	changed := !sameState(prev, next)
	s.state = next
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	s.publish(action, next)
	for _, l := range listeners {
		l(next)
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (s *Store) Subscribe(listener func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) publish(action Action, state State) {
	if s.dispatcher == nil {
		return
	}
	ctx := context.Background()
	switch a := action.(type) {
	case AddTicket:
		if len(state.Tickets) == 0 {
			return
		}
		added := state.Tickets[0]
		s.emit(ctx, events.EventTicketAdded, events.TicketAddedPayload{
			TicketID: added.ID,
			Title:    added.Title,
			Priority: added.Priority,
		})
	case UpdateTicket:
		s.emit(ctx, events.EventTicketUpdated, events.TicketUpdatedPayload{TicketID: a.ID})
	case DeleteTicket:
		s.emit(ctx, events.EventTicketDeleted, events.TicketDeletedPayload{TicketID: a.ID})
	}
	s.emit(ctx, events.EventStatsRecomputed, events.StatsRecomputedPayload{
		TotalTickets:   state.Stats.TotalTickets,
		ResolutionRate: state.Stats.ResolutionRate,
	})
}

func (s *Store) emit(ctx context.Context, eventType events.EventType, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// sameState detects identity transitions without deep comparison: the
// reducer returns the input state unchanged for no-op actions.
func sameState(a, b State) bool {
	if len(a.Tickets) != len(b.Tickets) {
		return false
	}
	for i := range a.Tickets {
		if a.Tickets[i] != b.Tickets[i] {
			return false
		}
	}
	return a.Stats == b.Stats
}
