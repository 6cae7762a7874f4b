package ports

import (
	"context"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
// Username and email lookups are case-insensitive.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID.
	// Returns domain.ErrDuplicateIdentity when username or email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
