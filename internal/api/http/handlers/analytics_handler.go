package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// AnalyticsHandler serves canned dashboard metrics.
type AnalyticsHandler struct{}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler() *AnalyticsHandler {
	return &AnalyticsHandler{}
}

// Dashboard GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	return c.JSON(fiber.Map{
		"metrics": domain.DashboardMetrics{
			TotalTicketsAnalyzed: 1247,
			AvgProcessingTimeMS:  850,
			AccuracyRate:         0.92,
			KnowledgeBaseSize:    356,
			ActiveSolutions:      198,
		},
		"window_days": days,
	})
}
