package postgres

import (
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

type userModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	FirstName    string `gorm:"size:100;not null"`
	LastName     string `gorm:"size:100;not null"`
	Username     string `gorm:"size:50;not null"`
	UsernameKey  string `gorm:"size:50;not null;uniqueIndex"`
	Email        string `gorm:"size:254;not null"`
	EmailKey     string `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type reportModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	UserID      int64   `gorm:"not null;index"`
	Title       string  `gorm:"size:200;not null"`
	Description string  `gorm:"type:text;not null"`
	Address     string  `gorm:"size:300;not null"`
	Latitude    float64 `gorm:"not null"`
	Longitude   float64 `gorm:"not null"`
	Status      string  `gorm:"size:20;not null;default:pendente"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (reportModel) TableName() string { return "reports" }

func (m reportModel) toDomain() *domain.Report {
	return &domain.Report{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Address:     m.Address,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Status:      domain.ReportStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type statusEventModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	ReportID   int64  `gorm:"not null;index"`
	FromStatus string `gorm:"size:20"`
	ToStatus   string `gorm:"size:20;not null"`
	ChangedBy  int64  `gorm:"not null"`
	ChangedAt  time.Time
}

func (statusEventModel) TableName() string { return "report_status_events" }
