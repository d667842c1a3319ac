package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Prefix    string
	Analyze   *handlers.AnalyzeHandler
	Bulk      *handlers.BulkHandler
	Solutions *handlers.SolutionsHandler
	Analytics *handlers.AnalyticsHandler
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
}

// RegisterRoutes wires the analysis-backend contract plus stub extensions.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group(cfg.Prefix)

	api.Get("/health", cfg.Health.Health)

	tickets := api.Group("/tickets")
	tickets.Post("/analyze", cfg.Analyze.Analyze)
	tickets.Post("/classify", cfg.Analyze.Classify)
	tickets.Post("/predict-priority", cfg.Analyze.PredictPriority)
	tickets.Post("/bulk-validate", cfg.Bulk.Validate)
	tickets.Post("/bulk-process", cfg.Bulk.Process)
	tickets.Get("/bulk-template", cfg.Bulk.Template)
	tickets.Get("/bulk-tasks/:id", cfg.Bulk.TaskStatus)

	api.Get("/solutions/search", cfg.Solutions.Search)
	api.Get("/analytics/dashboard", cfg.Analytics.Dashboard)

	api.Post("/auth/token", cfg.Auth.Token)
}
