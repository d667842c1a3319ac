package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/domain"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// AnalyzeHandler serves canned analysis responses shaped exactly like the
// real backend's, so the client can be exercised without it.
type AnalyzeHandler struct{}

// NewAnalyzeHandler constructs the handler.
func NewAnalyzeHandler() *AnalyzeHandler {
	return &AnalyzeHandler{}
}

// Analyze POST /tickets/analyze.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateDraft(req); err != nil {
		return err
	}

	classification := classify(req.Title, req.Description)
	priority := predictPriority(req.Title, req.Description)
	solutions := searchSolutions(req.Title+" "+req.Description, "", 3)
	recommended := make([]domain.SolutionRecommendation, 0, len(solutions))
	for _, s := range solutions {
		recommended = append(recommended, domain.SolutionRecommendation{
			SolutionID:      s.DocID,
			Title:           s.Title,
			Description:     s.ContentSnippet,
			Category:        s.Category,
			SimilarityScore: s.Score,
			Source:          s.Source,
		})
	}

	return c.JSON(domain.TicketAnalysis{
		TicketID:             "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		Classification:       classification,
		PriorityPrediction:   priority,
		RecommendedSolutions: recommended,
		Summary:              "Stub analysis of: " + req.Title,
		Tags:                 []string{strings.ToLower(strings.ReplaceAll(classification.Category, " ", "_"))},
		ProcessingTimeMS:     42,
	})
}

// Classify POST /tickets/classify.
func (h *AnalyzeHandler) Classify(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateDraft(req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"classification": classify(req.Title, req.Description),
		"ticket_info": fiber.Map{
			"title":       req.Title,
			"description": req.Description,
		},
	})
}

// PredictPriority POST /tickets/predict-priority.
func (h *AnalyzeHandler) PredictPriority(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateDraft(req); err != nil {
		return err
	}
	return c.JSON(predictPriority(req.Title, req.Description))
}

func validateDraft(req dto.AnalyzeRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title cannot be empty", nil)
	}
	if len(strings.TrimSpace(req.Description)) < 10 {
		return apperrors.NewValidationError("description must be at least 10 characters long", nil)
	}
	return nil
}

// keyword tables drive the canned predictions so repeated requests stay
// deterministic and vaguely plausible.
var categoryKeywords = []struct {
	keywords    []string
	category    string
	subcategory string
}{
	{[]string{"wifi", "network", "vpn", "dns"}, "Network Issues", "Connectivity"},
	{[]string{"password", "login", "locked", "account"}, "Account Access", "Credentials"},
	{[]string{"email", "outlook", "mailbox"}, "Email Issues", "Client"},
	{[]string{"printer", "print"}, "Printer Problems", "Hardware"},
	{[]string{"slow", "performance", "cpu", "memory"}, "System Performance", "Degradation"},
	{[]string{"crash", "error", "exception"}, "Application Errors", "Stability"},
}

var urgentKeywords = []string{"outage", "down", "production", "security", "breach", "critical", "urgent"}

func classify(title, description string) domain.Classification {
	text := strings.ToLower(title + " " + description)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return domain.Classification{
					Category:    entry.category,
					Subcategory: entry.subcategory,
					Confidence:  0.85,
					Reasoning:   "matched keyword: " + kw,
				}
			}
		}
	}
	return domain.Classification{
		Category:    "General Support",
		Subcategory: "Needs Review",
		Confidence:  0.3,
		Reasoning:   "no keyword matched",
	}
}

func predictPriority(title, description string) domain.PriorityPrediction {
	text := strings.ToLower(title + " " + description)
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return domain.PriorityPrediction{
				Priority:                 domain.TicketPriorityCritical,
				Confidence:               0.9,
				EstimatedResolutionHours: 4,
				Factors:                  []string{"urgency keyword: " + kw},
			}
		}
	}
	if strings.Contains(text, "cannot") || strings.Contains(text, "blocked") {
		return domain.PriorityPrediction{
			Priority:                 domain.TicketPriorityHigh,
			Confidence:               0.75,
			EstimatedResolutionHours: 8,
			Factors:                  []string{"user blocked"},
		}
	}
	return domain.PriorityPrediction{
		Priority:                 domain.TicketPriorityMedium,
		Confidence:               0.6,
		EstimatedResolutionHours: 24,
	}
}
