package ports

import (
	"context"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// Geocoder resolves free-text addresses to coordinates.
// Implementations return domain.ErrAddressNotFound when nothing matches and
// wrap domain.ErrLookupFailed on transport or payload failures.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*domain.GeoPoint, error)
}
