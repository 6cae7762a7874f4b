package ports

import (
	"context"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// AuditService records report status changes.
type AuditService interface {
	Record(ctx context.Context, change domain.StatusChange) error
}

// AuditPublisher hands status changes off for asynchronous recording.
type AuditPublisher interface {
	Publish(change domain.StatusChange)
}
