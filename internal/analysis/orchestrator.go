package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/session"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// MinDescriptionLength is the shortest description worth analyzing; the
// backend rejects anything shorter.
const MinDescriptionLength = 10

// solutionLimit caps the pre-submission knowledge-base search.
const solutionLimit = 3

// ErrSuperseded reports that a newer analysis request replaced this one
// while it was in flight; its result must be discarded.
var ErrSuperseded = errors.New("analysis superseded by a newer request")

// ErrDescriptionTooShort reports a draft below the analysis threshold.
var ErrDescriptionTooShort = errors.New("description too short for analysis")

// Backend is the slice of the transport client the orchestrator needs.
type Backend interface {
	ClassifyTicket(ctx context.Context, title, description string) (*domain.Classification, error)
	PredictPriority(ctx context.Context, title, description string) (*domain.PriorityPrediction, error)
	SearchSolutions(ctx context.Context, query, category string, limit int) ([]domain.SolutionSearchResult, error)
	AnalyzeTicket(ctx context.Context, req domain.AnalysisRequest) (*domain.TicketAnalysis, error)
}

// Orchestrator sequences the pre-submission analysis fan-out and the
// blocking final submission for a single ticket draft.
type Orchestrator struct {
	backend    Backend
	logger     *zap.Logger
	dispatcher events.Dispatcher

	mu       sync.Mutex
	latestID string
}

// New constructs an Orchestrator.
func New(backend Backend, logger *zap.Logger, dispatcher events.Dispatcher) *Orchestrator {
	return &Orchestrator{backend: backend, logger: logger, dispatcher: dispatcher}
}

// Analyze fires classify, predict-priority, and search-solutions
// concurrently and merges the results. The join propagates the first
// rejection: one failing call abandons the whole attempt, with no partial
// merge. Callers treat the error as advisory and swallow it.
//
// Each call is tagged with a fresh request id; if a newer Analyze run starts
// before this one finishes, the stale result is discarded and ErrSuperseded
// returned, regardless of arrival order.
func (o *Orchestrator) Analyze(ctx context.Context, draft domain.TicketDraft) (*domain.AnalysisResult, error) {
	description := strings.TrimSpace(draft.Description)
	if len(description) < MinDescriptionLength {
		return nil, ErrDescriptionTooShort
	}
	title := strings.TrimSpace(draft.Title)

	requestID := uuid.NewString()
	o.mu.Lock()
	o.latestID = requestID
	o.mu.Unlock()

	var (
		classification *domain.Classification
		priority       *domain.PriorityPrediction
		searchResults  []domain.SolutionSearchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := o.backend.ClassifyTicket(gctx, title, description)
		if err != nil {
			return err
		}
		classification = result
		return nil
	})
	g.Go(func() error {
		result, err := o.backend.PredictPriority(gctx, title, description)
		if err != nil {
			return err
		}
		priority = result
		return nil
	})
	g.Go(func() error {
		results, err := o.backend.SearchSolutions(gctx, title+" "+description, "", solutionLimit)
		if err != nil {
			return err
		}
		searchResults = results
		return nil
	})

	if err := g.Wait(); err != nil {
		o.logger.Debug("analysis attempt abandoned",
			zap.String("request_id", requestID),
			zap.Error(err))
		o.emit(ctx, events.EventAnalysisAbandoned, events.AnalysisAbandonedPayload{
			RequestID: requestID,
			Error:     err.Error(),
		})
		return nil, err
	}

	if !o.isLatest(requestID) {
		return nil, ErrSuperseded
	}

	result := &domain.AnalysisResult{
		Classification: *classification,
		Priority:       *priority,
		Solutions:      mapSolutions(searchResults),
	}
	o.emit(ctx, events.EventAnalysisCompleted, events.AnalysisCompletedPayload{
		RequestID: requestID,
		Category:  result.Classification.Category,
		Priority:  string(result.Priority.Priority),
	})
	return result, nil
}

// ApplySuggestions writes analysis suggestions into the draft only where the
// corresponding field is still empty. A value the user already chose is
// never overwritten.
func (o *Orchestrator) ApplySuggestions(draft *domain.TicketDraft, result *domain.AnalysisResult) {
	if draft == nil || result == nil {
		return
	}
	if draft.Category == "" {
		draft.Category = result.Classification.Category
	}
	if draft.Priority == "" {
		draft.Priority = result.Priority.Priority
	}
	if len(draft.Tags) == 0 && result.Classification.Subcategory != "" {
		draft.Tags = []string{result.Classification.Subcategory}
	}
}

// Submit runs the blocking full analysis. Unlike Analyze, failures here
// surface to the user.
func (o *Orchestrator) Submit(ctx context.Context, draft domain.TicketDraft, sess *session.Session) (*domain.TicketAnalysis, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if len(strings.TrimSpace(draft.Description)) < MinDescriptionLength {
		return nil, apperrors.NewValidationError("description must be at least 10 characters", nil)
	}
	if draft.Category == "" {
		return nil, apperrors.NewValidationError("category is required", nil)
	}

	req := domain.AnalysisRequest{
		Title:         strings.TrimSpace(draft.Title),
		Description:   strings.TrimSpace(draft.Description),
		RequesterInfo: sess.RequesterInfo(),
	}
	analysis, err := o.backend.AnalyzeTicket(ctx, req)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (o *Orchestrator) isLatest(requestID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latestID == requestID
}

func (o *Orchestrator) emit(ctx context.Context, eventType events.EventType, payload any) {
	if o.dispatcher == nil {
		return
	}
	_ = o.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// mapSolutions converts raw search hits into preview suggestions, re-scoring
// similarity into a whole percentage.
func mapSolutions(results []domain.SolutionSearchResult) []domain.SuggestedSolution {
	suggestions := make([]domain.SuggestedSolution, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, domain.SuggestedSolution{
			Title:      r.Title,
			Similarity: int(math.Round(r.BestScore() * 100)),
		})
	}
	return suggestions
}
