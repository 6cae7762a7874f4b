package ports

import (
	"context"
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// SessionStore persists server-side sessions.
type SessionStore interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (*domain.Session, error)
	// Get returns domain.ErrSessionNotFound for missing or expired sessions.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}

// IdempotencyStore remembers which report an owner's idempotency key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error)
	Remember(ctx context.Context, ownerID int64, key string, reportID int64) error
}
