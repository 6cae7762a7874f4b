package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
)

// Gate authorizes requests: a caller is authenticated when its token names a
// live session of an existing user, and owns a resource when the session's
// user id matches the resource owner.
type Gate struct {
	sessions ports.SessionStore
	users    ports.UserRepository
	tokens   sessionTokens
	now      func() time.Time
}

func NewGate(sessions ports.SessionStore, users ports.UserRepository, secret string) *Gate {
	return &Gate{
		sessions: sessions,
		users:    users,
		tokens:   newSessionTokens(secret),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequireAuthenticated resolves token to a live session or fails with
// domain.ErrUnauthorized. Store failures are returned wrapped.
func (g *Gate) RequireAuthenticated(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	sessionID, userID, err := g.tokens.parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID || session.Expired(g.now()) {
		return nil, domain.ErrUnauthorized
	}

	if _, err := g.users.FindByID(ctx, session.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return session, nil
}

// RequireOwnership passes only when the session belongs to ownerID.
func (g *Gate) RequireOwnership(session *domain.Session, ownerID int64) error {
	if session == nil {
		return domain.ErrUnauthorized
	}
	return requireOwner(session.UserID, ownerID)
}

func requireOwner(callerID, ownerID int64) error {
	if callerID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}
