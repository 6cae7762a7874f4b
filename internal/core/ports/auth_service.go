package ports

import (
	"context"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName       string `json:"firstName"       validate:"required,max=100"`
	LastName        string `json:"lastName"        validate:"required,max=100"`
	Username        string `json:"username"        validate:"required,max=50"`
	Email           string `json:"email"           validate:"required,email,max=254"`
	Password        string `json:"password"        validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// AuthResult is returned after a successful registration or login.
type AuthResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

// AuthService covers registration, login and logout.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
	EndSession(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, userID int64) (*domain.User, error)
}

// SessionGate authorizes callers.
type SessionGate interface {
	RequireAuthenticated(ctx context.Context, token string) (*domain.Session, error)
	RequireOwnership(session *domain.Session, ownerID int64) error
}
