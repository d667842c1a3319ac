package fallback

import (
	"time"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// Static payloads substituted when the backend is unreachable. Each one must
// satisfy the same schema as the live response so downstream rendering code
// needs no branching.

// DashboardMetrics returns placeholder analytics.
func DashboardMetrics() *domain.DashboardMetrics {
	return &domain.DashboardMetrics{
		TotalTicketsAnalyzed: 0,
		AvgProcessingTimeMS:  0,
		AccuracyRate:         0,
		KnowledgeBaseSize:    0,
		ActiveSolutions:      0,
	}
}

// SolutionResults returns generic knowledge-base hits for any query.
func SolutionResults() []domain.SolutionSearchResult {
	return []domain.SolutionSearchResult{
		{
			DocID:          "fallback-restart",
			Title:          "Restart the affected application or service",
			ContentSnippet: "Many transient faults clear after a controlled restart of the affected component.",
			Category:       "General Support",
			Score:          0.5,
			Source:         "fallback",
		},
		{
			DocID:          "fallback-escalate",
			Title:          "Collect logs and escalate to the support desk",
			ContentSnippet: "Gather timestamps, error messages, and recent changes before escalating.",
			Category:       "General Support",
			Score:          0.4,
			Source:         "fallback",
		},
	}
}

// CSVTemplate returns a locally generated bulk-import template.
func CSVTemplate() *domain.CSVTemplate {
	content := "title,description,requester_name,requester_email,requester_department\n" +
		"Cannot connect to corporate WiFi,User reports WiFi authentication failure on office network.,Jane Doe,jane@example.com,Engineering\n" +
		"Outlook crashes when opening attachments,Outlook app closes unexpectedly whenever user opens PDF attachments.,John Smith,john@example.com,Finance\n"
	return &domain.CSVTemplate{
		Filename: "ticketflow_bulk_template.csv",
		Content:  content,
	}
}

// Health returns a degraded health report.
func Health() *domain.HealthStatus {
	return &domain.HealthStatus{
		Status:    "unreachable",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]bool{},
	}
}
