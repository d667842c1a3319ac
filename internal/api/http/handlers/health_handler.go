package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/persistence"
)

// HealthHandler reports stub availability in the backend's health shape.
type HealthHandler struct {
	version string
	redis   *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(version string, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{version: version, redis: redis}
}

// Health GET /health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	services := fiber.Map{
		"workflow_manager":  true,
		"knowledge_service": true,
		"data_service":      true,
		"model_service":     true,
	}
	if h.redis != nil {
		services["task_registry"] = h.redis.Ping(c.Context()) == nil
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}
