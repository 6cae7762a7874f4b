package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository with gorm.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func identityKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	m := userModel{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		UsernameKey:  identityKey(u.Username),
		Email:        u.Email,
		EmailKey:     identityKey(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username_key = ?", identityKey(username))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email_key = ?", identityKey(email))
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), nil
}

// ReportRepository implements ports.ReportRepository with gorm.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	m := reportModel{
		UserID:      rep.UserID,
		Title:       rep.Title,
		Description: rep.Description,
		Address:     rep.Address,
		Latitude:    rep.Latitude,
		Longitude:   rep.Longitude,
		Status:      string(rep.Status),
		CreatedAt:   rep.CreatedAt,
		UpdatedAt:   rep.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	var m reportModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ReportRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Report, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", ownerID))
}

func (r *ReportRepository) ListAll(ctx context.Context) ([]*domain.Report, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *ReportRepository) list(q *gorm.DB) ([]*domain.Report, error) {
	var rows []reportModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	reports := make([]*domain.Report, 0, len(rows))
	for _, m := range rows {
		reports = append(reports, m.toDomain())
	}
	return reports, nil
}

// UpdateStatus sets status and updated_at in one statement and reloads the row.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus, updatedAt time.Time) (*domain.Report, error) {
	var m reportModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&reportModel{}).
			Where("id = ?", id).
			UpdateColumns(map[string]any{"status": string(status), "updated_at": updatedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrReportNotFound
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update report status: %w", err)
	}
	return m.toDomain(), nil
}

// AuditRepository implements ports.AuditRepository with gorm.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, c *domain.StatusChange) error {
	m := statusEventModel{
		ReportID:   c.ReportID,
		FromStatus: string(c.From),
		ToStatus:   string(c.To),
		ChangedBy:  c.ChangedBy,
		ChangedAt:  c.ChangedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByReport(ctx context.Context, reportID int64) ([]*domain.StatusChange, error) {
	var rows []statusEventModel
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("changed_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}

	changes := make([]*domain.StatusChange, 0, len(rows))
	for _, m := range rows {
		changes = append(changes, &domain.StatusChange{
			ReportID:  m.ReportID,
			From:      domain.ReportStatus(m.FromStatus),
			To:        domain.ReportStatus(m.ToStatus),
			ChangedBy: m.ChangedBy,
			ChangedAt: m.ChangedAt.UTC(),
		})
	}
	return changes, nil
}
