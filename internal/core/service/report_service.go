package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
	"github.com/focoalerta/reports-api/internal/infrastructure/metrics"
	"github.com/focoalerta/reports-api/internal/pkg/validate"
)

// ReportService orchestrates the report lifecycle: validation, ownership,
// status changes and the geocoding lookup that precedes a submission.
type ReportService struct {
	reports   ports.ReportRepository
	audits    ports.AuditRepository
	geocoder  ports.Geocoder
	idem      ports.IdempotencyStore
	publisher ports.AuditPublisher
	validator *validate.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

// ReportOption configures optional collaborators of ReportService.
type ReportOption func(*ReportService)

// WithIdempotency enables Idempotency-Key replay protection on Submit.
func WithIdempotency(store ports.IdempotencyStore) ReportOption {
	return func(s *ReportService) { s.idem = store }
}

// WithAuditPublisher sends status changes to p for recording.
func WithAuditPublisher(p ports.AuditPublisher) ReportOption {
	return func(s *ReportService) { s.publisher = p }
}

func NewReportService(reports ports.ReportRepository, audits ports.AuditRepository, geocoder ports.Geocoder, logger zerolog.Logger, opts ...ReportOption) *ReportService {
	s := &ReportService{
		reports:   reports,
		audits:    audits,
		geocoder:  geocoder,
		validator: validate.New(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the draft and persists a new report in the initial status.
// Nothing is written when validation fails.
func (s *ReportService) Submit(ctx context.Context, ownerID int64, draft ports.ReportDraft) (*ports.SubmitResult, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	draft.Address = strings.TrimSpace(draft.Address)
	draft.IdempotencyKey = strings.TrimSpace(draft.IdempotencyKey)

	if err := s.validateDraft(draft); err != nil {
		metrics.ReportRejectionsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	if replay := s.replay(ctx, ownerID, draft.IdempotencyKey); replay != nil {
		metrics.ReportsSubmittedTotal.WithLabelValues("replayed").Inc()
		s.logger.Info().Str("idempotency_key", draft.IdempotencyKey).Int64("report_id", replay.ID).Msg("idempotent replay")
		return &ports.SubmitResult{Report: replay, Replayed: true}, nil
	}

	now := s.now()
	created, err := s.reports.Create(ctx, &domain.Report{
		UserID:      ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		Address:     draft.Address,
		Latitude:    *draft.Latitude,
		Longitude:   *draft.Longitude,
		Status:      domain.InitialStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to create report")
		return nil, fmt.Errorf("create report: %w", err)
	}

	if draft.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, ownerID, draft.IdempotencyKey, created.ID); err != nil {
			s.logger.Warn().Err(err).Int64("report_id", created.ID).Msg("failed to store idempotency key")
		}
	}

	s.publish(domain.StatusChange{
		ReportID:  created.ID,
		To:        created.Status,
		ChangedBy: ownerID,
		ChangedAt: now,
	})

	metrics.ReportsSubmittedTotal.WithLabelValues("created").Inc()
	s.logger.Info().Int64("report_id", created.ID).Int64("owner_id", ownerID).Msg("report submitted")
	return &ports.SubmitResult{Report: created}, nil
}

func (s *ReportService) validateDraft(draft ports.ReportDraft) error {
	if err := s.validator.Struct(draft); err != nil {
		return err
	}

	// min/max already reject NaN and infinities; this keeps the domain rule
	// authoritative should the tags change.
	if !domain.ValidCoordinates(*draft.Latitude, *draft.Longitude) {
		return domain.NewValidationError(
			domain.FieldError{Field: "latitude", Message: "latitude must be a finite coordinate"},
			domain.FieldError{Field: "longitude", Message: "longitude must be a finite coordinate"},
		)
	}
	return nil
}

// replay returns the report an earlier submission with the same key created.
func (s *ReportService) replay(ctx context.Context, ownerID int64, key string) *domain.Report {
	if key == "" || s.idem == nil {
		return nil
	}

	reportID, ok, err := s.idem.Lookup(ctx, ownerID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, submitting anyway")
		return nil
	}
	if !ok {
		return nil
	}

	existing, err := s.reports.FindByID(ctx, reportID)
	if err != nil || existing.UserID != ownerID {
		return nil
	}
	return existing
}

// ListMine returns the reports owned by ownerID.
func (s *ReportService) ListMine(ctx context.Context, ownerID int64) ([]*domain.Report, error) {
	reports, err := s.reports.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reports by owner: %w", err)
	}
	return reports, nil
}

// ListAll returns every report regardless of owner, for the shared map view.
func (s *ReportService) ListAll(ctx context.Context) ([]*domain.Report, error) {
	reports, err := s.reports.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id int64) (*domain.Report, error) {
	return s.reports.FindByID(ctx, id)
}

// UpdateStatus moves the report to status on behalf of callerID. Checks run
// in order: existence, status membership, ownership. Concurrent updates are
// not ordered; the last write wins.
func (s *ReportService) UpdateStatus(ctx context.Context, id, callerID int64, status string) (*domain.Report, error) {
	current, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			metrics.ReportRejectionsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	next := domain.ReportStatus(strings.TrimSpace(status))
	if !current.Status.CanTransitionTo(next) {
		metrics.ReportRejectionsTotal.WithLabelValues("invalid_status").Inc()
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	if err := requireOwner(callerID, current.UserID); err != nil {
		metrics.ReportRejectionsTotal.WithLabelValues("forbidden").Inc()
		s.logger.Warn().Int64("report_id", id).Int64("caller_id", callerID).Msg("status update by non-owner rejected")
		return nil, err
	}

	updatedAt := advance(current.UpdatedAt, s.now())

	updated, err := s.reports.UpdateStatus(ctx, id, next, updatedAt)
	if err != nil {
		s.logger.Error().Err(err).Int64("report_id", id).Msg("failed to update report status")
		return nil, err
	}

	s.publish(domain.StatusChange{
		ReportID:  id,
		From:      current.Status,
		To:        next,
		ChangedBy: callerID,
		ChangedAt: updatedAt,
	})

	metrics.ReportStatusChangesTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info().
		Int64("report_id", id).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Msg("report status updated")
	return updated, nil
}

// advance returns now unless, at millisecond precision (the coarsest any
// store keeps), it would not land after prev.
func advance(prev, now time.Time) time.Time {
	floor := prev.Truncate(time.Millisecond)
	if now.Truncate(time.Millisecond).After(floor) {
		return now
	}
	return floor.Add(time.Millisecond)
}

// History returns the recorded status changes of a report, oldest first.
func (s *ReportService) History(ctx context.Context, id int64) ([]*domain.StatusChange, error) {
	if _, err := s.reports.FindByID(ctx, id); err != nil {
		return nil, err
	}
	changes, err := s.audits.ListByReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return changes, nil
}

// ResolveAddress looks up coordinates for a free-text address. A miss is
// reported as domain.ErrAddressNotFound; callers fall back to picking the
// point on the map and submitting the coordinates directly.
func (s *ReportService) ResolveAddress(ctx context.Context, address string) (*domain.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "address", Message: "address is required"})
	}

	start := time.Now()
	point, err := s.geocoder.Resolve(ctx, address)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.GeocodeLookupsTotal.WithLabelValues("found").Inc()
		return point, nil
	case errors.Is(err, domain.ErrAddressNotFound):
		metrics.GeocodeLookupsTotal.WithLabelValues("not_found").Inc()
		s.logger.Debug().Str("address", address).Msg("address not found")
		return nil, err
	default:
		metrics.GeocodeLookupsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn().Err(err).Str("address", address).Msg("address lookup failed")
		if !errors.Is(err, domain.ErrLookupFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
		}
		return nil, err
	}
}

func (s *ReportService) publish(change domain.StatusChange) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(change)
}
