package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/auth"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// AuthHandler issues mock dev session tokens. Stub extension, not part of
// the analysis contract.
type AuthHandler struct {
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Token POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	token, expiresAt, err := h.tokens.GenerateToken(req.UserID, req.Name, req.Email)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
