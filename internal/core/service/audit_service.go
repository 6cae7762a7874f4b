package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists status changes.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record validates and persists a single status change.
func (s *auditService) Record(ctx context.Context, change domain.StatusChange) error {
	if change.ReportID <= 0 {
		return fmt.Errorf("record status change: report id %d: %w", change.ReportID, domain.ErrReportNotFound)
	}
	if !change.To.Valid() {
		return fmt.Errorf("record status change: %w: %q", domain.ErrInvalidStatus, change.To)
	}

	if err := s.repo.Insert(ctx, &change); err != nil {
		return fmt.Errorf("record status change: %w", err)
	}

	s.log.Debug().
		Int64("report_id", change.ReportID).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Msg("status change recorded")
	return nil
}
