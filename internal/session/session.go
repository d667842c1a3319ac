package session

import (
	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
)

// Session is the explicit session context passed into each flow. It replaces
// ambient storage lookups: whoever constructs a flow hands it the session.
type Session struct {
	UserID     string
	Name       string
	Email      string
	Department string
	Token      string
}

// FromConfig builds the mock session seeded by environment configuration.
func FromConfig(cfg config.SessionConfig, token string) *Session {
	return &Session{
		UserID:     cfg.UserID,
		Name:       cfg.Name,
		Email:      cfg.Email,
		Department: cfg.Department,
		Token:      token,
	}
}

// RequesterInfo derives the submission requester payload from the session.
func (s *Session) RequesterInfo() *domain.RequesterInfo {
	if s == nil {
		return nil
	}
	return &domain.RequesterInfo{
		Name:       s.Name,
		Email:      s.Email,
		Department: s.Department,
	}
}
