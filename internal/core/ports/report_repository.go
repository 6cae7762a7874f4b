package ports

import (
	"context"
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// ReportRepository defines persistence operations for reports.
// Lists are ordered by ID ascending.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) (*domain.Report, error)
	FindByID(ctx context.Context, id int64) (*domain.Report, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Report, error)
	ListAll(ctx context.Context) ([]*domain.Report, error)
	// UpdateStatus sets status and updated_at and returns the stored report.
	UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus, updatedAt time.Time) (*domain.Report, error)
}

// AuditRepository stores the status history of reports.
type AuditRepository interface {
	Insert(ctx context.Context, change *domain.StatusChange) error
	// ListByReport returns entries oldest first.
	ListByReport(ctx context.Context, reportID int64) ([]*domain.StatusChange, error)
}
