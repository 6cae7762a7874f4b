package ports

import (
	"context"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// ReportDraft is the submission payload. Coordinates are pointers so a missing
// value can be told apart from zero.
type ReportDraft struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Address     string   `json:"address"     validate:"required,max=300"`
	Latitude    *float64 `json:"latitude"    validate:"required,min=-90,max=90"`
	Longitude   *float64 `json:"longitude"   validate:"required,min=-180,max=180"`
	// IdempotencyKey is optional; replays with the same key return the first report.
	IdempotencyKey string `json:"-"`
}

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Report *domain.Report
	// Replayed is true when the idempotency key matched an earlier submission.
	Replayed bool
}

// ReportService defines the report lifecycle use cases.
type ReportService interface {
	Submit(ctx context.Context, ownerID int64, draft ReportDraft) (*SubmitResult, error)
	ListMine(ctx context.Context, ownerID int64) ([]*domain.Report, error)
	ListAll(ctx context.Context) ([]*domain.Report, error)
	Get(ctx context.Context, id int64) (*domain.Report, error)
	UpdateStatus(ctx context.Context, id, callerID int64, status string) (*domain.Report, error)
	History(ctx context.Context, id int64) ([]*domain.StatusChange, error)
	ResolveAddress(ctx context.Context, address string) (*domain.GeoPoint, error)
}
