package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// SolutionsHandler serves canned knowledge-base search results.
type SolutionsHandler struct{}

// NewSolutionsHandler constructs the handler.
func NewSolutionsHandler() *SolutionsHandler {
	return &SolutionsHandler{}
}

// Search GET /solutions/search.
func (h *SolutionsHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	category := c.Query("category")
	limit := c.QueryInt("limit", 10)

	results := searchSolutions(query, category, limit)
	return c.JSON(fiber.Map{
		"results":       results,
		"query":         query,
		"total_results": len(results),
	})
}

var knowledgeBase = []domain.SolutionSearchResult{
	{DocID: "kb-001", Title: "Reset WiFi adapter and rejoin corporate network", ContentSnippet: "Disable and re-enable the adapter, forget the network, rejoin with current credentials.", Category: "Network Issues", Score: 0.91, Source: "documentation"},
	{DocID: "kb-002", Title: "Unlock a locked Active Directory account", ContentSnippet: "Verify identity, unlock via the admin console, require a password change at next login.", Category: "Account Access", Score: 0.88, Source: "documentation"},
	{DocID: "kb-003", Title: "Repair an Outlook profile that crashes on attachments", ContentSnippet: "Start Outlook in safe mode, disable COM add-ins, rebuild the mail profile if needed.", Category: "Email Issues", Score: 0.86, Source: "stackoverflow"},
	{DocID: "kb-004", Title: "Clear stuck print queue", ContentSnippet: "Stop the spooler service, purge spool files, restart the service.", Category: "Printer Problems", Score: 0.82, Source: "documentation"},
	{DocID: "kb-005", Title: "Diagnose high CPU usage on workstations", ContentSnippet: "Identify the offending process, check for runaway scans, apply pending updates.", Category: "System Performance", Score: 0.79, Source: "github"},
	{DocID: "kb-006", Title: "Collect crash dumps for recurring application errors", ContentSnippet: "Enable WER local dumps, reproduce the crash, attach dumps to the ticket.", Category: "Application Errors", Score: 0.77, Source: "documentation"},
}

// searchSolutions ranks the canned knowledge base by naive term overlap so
// different queries return different orderings.
func searchSolutions(query, category string, limit int) []domain.SolutionSearchResult {
	if limit <= 0 {
		limit = 10
	}
	terms := strings.Fields(strings.ToLower(query))
	type scored struct {
		result domain.SolutionSearchResult
		hits   int
	}
	matches := make([]scored, 0, len(knowledgeBase))
	for _, doc := range knowledgeBase {
		if category != "" && !strings.EqualFold(doc.Category, category) {
			continue
		}
		text := strings.ToLower(doc.Title + " " + doc.ContentSnippet)
		hits := 0
		for _, term := range terms {
			if len(term) > 3 && strings.Contains(text, term) {
				hits++
			}
		}
		matches = append(matches, scored{result: doc, hits: hits})
	}
	for i := 0; i < len(matches); i++ {
		best := i
		for j := i + 1; j < len(matches); j++ {
			if matches[j].hits > matches[best].hits {
				best = j
			}
		}
		matches[i], matches[best] = matches[best], matches[i]
	}
	out := make([]domain.SolutionSearchResult, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.result)
	}
	return out
}
