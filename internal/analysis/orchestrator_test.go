package analysis

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/session"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

type fakeBackend struct {
	mu sync.Mutex

	classification *domain.Classification
	classifyErr    error
	priority       *domain.PriorityPrediction
	priorityErr    error
	solutions      []domain.SolutionSearchResult
	searchErr      error
	analysis       *domain.TicketAnalysis
	analyzeErr     error

	analyzeCalls int32
	lastRequest  domain.AnalysisRequest

	// when set, the first SearchSolutions call blocks until closed
	searchGate chan struct{}
	searchSeen int32
}

func (f *fakeBackend) ClassifyTicket(ctx context.Context, title, description string) (*domain.Classification, error) {
	return f.classification, f.classifyErr
}

func (f *fakeBackend) PredictPriority(ctx context.Context, title, description string) (*domain.PriorityPrediction, error) {
	return f.priority, f.priorityErr
}

func (f *fakeBackend) SearchSolutions(ctx context.Context, query, category string, limit int) ([]domain.SolutionSearchResult, error) {
	if f.searchGate != nil && atomic.AddInt32(&f.searchSeen, 1) == 1 {
		<-f.searchGate
	}
	return f.solutions, f.searchErr
}

func (f *fakeBackend) AnalyzeTicket(ctx context.Context, req domain.AnalysisRequest) (*domain.TicketAnalysis, error) {
	atomic.AddInt32(&f.analyzeCalls, 1)
	f.mu.Lock()
	f.lastRequest = req
	f.mu.Unlock()
	return f.analysis, f.analyzeErr
}

func healthyBackend() *fakeBackend {
	return &fakeBackend{
		classification: &domain.Classification{Category: "Network Issues", Subcategory: "VPN", Confidence: 0.91},
		priority:       &domain.PriorityPrediction{Priority: domain.TicketPriorityHigh, Confidence: 0.8},
		solutions: []domain.SolutionSearchResult{
			{Title: "Restart the VPN client", Similarity: 0.87},
			{Title: "Reset network adapter", Score: 0.62},
		},
		analysis: &domain.TicketAnalysis{TicketID: "TCK-AB12CD34"},
	}
}

func draft() domain.TicketDraft {
	return domain.TicketDraft{
		Title:       "VPN drops",
		Description: "VPN disconnects every few minutes on the office network",
		Category:    "Network Issues",
	}
}

func TestAnalyzeMergesAllThreeCalls(t *testing.T) {
	backend := healthyBackend()
	o := New(backend, zap.NewNop(), nil)

	result, err := o.Analyze(context.Background(), draft())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Classification.Category != "Network Issues" {
		t.Fatalf("classification = %+v", result.Classification)
	}
	if result.Priority.Priority != domain.TicketPriorityHigh {
		t.Fatalf("priority = %+v", result.Priority)
	}
	if len(result.Solutions) != 2 {
		t.Fatalf("solutions = %+v", result.Solutions)
	}
	if result.Solutions[0].Similarity != 87 || result.Solutions[1].Similarity != 62 {
		t.Fatalf("similarity percentages = %d, %d", result.Solutions[0].Similarity, result.Solutions[1].Similarity)
	}
}

func TestAnalyzeOneFailureAbandonsEverything(t *testing.T) {
	backend := healthyBackend()
	backend.priorityErr = errors.New("model service down")
	o := New(backend, zap.NewNop(), nil)

	result, err := o.Analyze(context.Background(), draft())
	if err == nil {
		t.Fatal("expected error from failed priority call")
	}
	if result != nil {
		t.Fatalf("partial merge leaked: %+v", result)
	}
}

func TestAnalyzeRejectsShortDescription(t *testing.T) {
	backend := healthyBackend()
	o := New(backend, zap.NewNop(), nil)

	d := draft()
	d.Description = "too short"
	if _, err := o.Analyze(context.Background(), d); !errors.Is(err, ErrDescriptionTooShort) {
		t.Fatalf("err = %v, want ErrDescriptionTooShort", err)
	}
}

func TestAnalyzeStaleRunIsSuperseded(t *testing.T) {
	backend := healthyBackend()
	backend.searchGate = make(chan struct{})
	o := New(backend, zap.NewNop(), nil)

	staleErr := make(chan error, 1)
	go func() {
		_, err := o.Analyze(context.Background(), draft())
		staleErr <- err
	}()

	// wait for the first run to park inside the search call
	for atomic.LoadInt32(&backend.searchSeen) == 0 {
		runtime.Gosched()
	}

	if _, err := o.Analyze(context.Background(), draft()); err != nil {
		t.Fatalf("fresh run failed: %v", err)
	}

	close(backend.searchGate)
	if err := <-staleErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale run err = %v, want ErrSuperseded", err)
	}
}

func TestApplySuggestionsNeverClobbersUserChoices(t *testing.T) {
	o := New(healthyBackend(), zap.NewNop(), nil)
	result := &domain.AnalysisResult{
		Classification: domain.Classification{Category: "Network Issues", Subcategory: "VPN"},
		Priority:       domain.PriorityPrediction{Priority: domain.TicketPriorityHigh},
	}

	d := domain.TicketDraft{Category: "Hardware"}
	o.ApplySuggestions(&d, result)
	if d.Category != "Hardware" {
		t.Fatalf("category clobbered: %q", d.Category)
	}
	if d.Priority != domain.TicketPriorityHigh {
		t.Fatalf("empty priority not filled: %q", d.Priority)
	}
	if len(d.Tags) != 1 || d.Tags[0] != "VPN" {
		t.Fatalf("tags = %v", d.Tags)
	}

	d2 := domain.TicketDraft{Priority: domain.TicketPriorityLow, Tags: []string{"printer"}}
	o.ApplySuggestions(&d2, result)
	if d2.Priority != domain.TicketPriorityLow {
		t.Fatalf("priority clobbered: %q", d2.Priority)
	}
	if len(d2.Tags) != 1 || d2.Tags[0] != "printer" {
		t.Fatalf("tags clobbered: %v", d2.Tags)
	}
	if d2.Category != "Network Issues" {
		t.Fatalf("empty category not filled: %q", d2.Category)
	}
}

func TestSubmitValidatesBeforeAnyCall(t *testing.T) {
	backend := healthyBackend()
	o := New(backend, zap.NewNop(), nil)
	sess := &session.Session{Name: "Dev User", Email: "dev@example.com"}

	cases := []struct {
		name  string
		draft domain.TicketDraft
	}{
		{"missing title", domain.TicketDraft{Description: "long enough description", Category: "General"}},
		{"short description", domain.TicketDraft{Title: "t", Description: "short", Category: "General"}},
		{"missing category", domain.TicketDraft{Title: "t", Description: "long enough description"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.Submit(context.Background(), tc.draft, sess)
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
	if n := atomic.LoadInt32(&backend.analyzeCalls); n != 0 {
		t.Fatalf("backend called %d times despite invalid drafts", n)
	}
}

func TestSubmitCarriesSessionRequester(t *testing.T) {
	backend := healthyBackend()
	o := New(backend, zap.NewNop(), nil)
	sess := &session.Session{Name: "Dev User", Email: "dev@example.com", Department: "IT"}

	analysis, err := o.Submit(context.Background(), draft(), sess)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if analysis.TicketID != "TCK-AB12CD34" {
		t.Fatalf("ticket id = %q", analysis.TicketID)
	}
	backend.mu.Lock()
	req := backend.lastRequest
	backend.mu.Unlock()
	if req.RequesterInfo == nil || req.RequesterInfo.Email != "dev@example.com" {
		t.Fatalf("requester info = %+v", req.RequesterInfo)
	}
}
