// Package memory provides in-process implementations of the repository and
// session ports. State lives in maps guarded by a mutex and ids come from
// incrementing counters, so the package suits tests and single-node demos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// Store keeps users, reports and status history in memory.
type Store struct {
	mu        sync.RWMutex
	users     map[int64]domain.User
	username  map[string]int64 // lower-cased username -> user ID
	email     map[string]int64 // lower-cased email -> user ID
	reports   map[int64]domain.Report
	history   map[int64][]domain.StatusChange
	userSeq   int64
	reportSeq int64
}

// NewStore initializes an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]domain.User),
		username: make(map[string]int64),
		email:    make(map[string]int64),
		reports:  make(map[int64]domain.Report),
		history:  make(map[int64][]domain.StatusChange),
	}
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Users returns a view of the store satisfying ports.UserRepository.
func (m *Store) Users() *UserRepository { return &UserRepository{m} }

// Reports returns a view of the store satisfying ports.ReportRepository.
func (m *Store) Reports() *ReportRepository { return &ReportRepository{m} }

// Audits returns a view of the store satisfying ports.AuditRepository.
func (m *Store) Audits() *AuditRepository { return &AuditRepository{m} }

// UserRepository is the user half of Store.
type UserRepository struct{ m *Store }

func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	uk, ek := key(u.Username), key(u.Email)
	if _, taken := m.username[uk]; taken {
		return nil, domain.ErrDuplicateIdentity
	}
	if _, taken := m.email[ek]; taken {
		return nil, domain.ErrDuplicateIdentity
	}

	m.userSeq++
	stored := *u
	stored.ID = m.userSeq
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.users[stored.ID] = stored
	m.username[uk] = stored.ID
	m.email[ek] = stored.ID

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.m.userLocked(id)
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.username[key(username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.m.userLocked(id)
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.email[key(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.m.userLocked(id)
}

func (m *Store) userLocked(id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// ReportRepository is the report half of Store.
type ReportRepository struct{ m *Store }

func (r *ReportRepository) Create(_ context.Context, rep *domain.Report) (*domain.Report, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reportSeq++
	stored := *rep
	stored.ID = m.reportSeq
	m.reports[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *ReportRepository) FindByID(_ context.Context, id int64) (*domain.Report, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	rep, ok := r.m.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return &rep, nil
}

func (r *ReportRepository) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Report, error) {
	return r.m.listReports(func(rep domain.Report) bool { return rep.UserID == ownerID }), nil
}

func (r *ReportRepository) ListAll(_ context.Context) ([]*domain.Report, error) {
	return r.m.listReports(func(domain.Report) bool { return true }), nil
}

func (r *ReportRepository) UpdateStatus(_ context.Context, id int64, status domain.ReportStatus, updatedAt time.Time) (*domain.Report, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	rep, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	rep.Status = status
	rep.UpdatedAt = updatedAt
	m.reports[id] = rep

	out := rep
	return &out, nil
}

// listReports returns matching reports ordered by ID.
func (m *Store) listReports(match func(domain.Report) bool) []*domain.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]*domain.Report, 0, len(m.reports))
	for _, rep := range m.reports {
		if match(rep) {
			rep := rep
			res = append(res, &rep)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// AuditRepository is the status-history half of Store.
type AuditRepository struct{ m *Store }

func (r *AuditRepository) Insert(_ context.Context, c *domain.StatusChange) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.history[c.ReportID] = append(r.m.history[c.ReportID], *c)
	return nil
}

func (r *AuditRepository) ListByReport(_ context.Context, reportID int64) ([]*domain.StatusChange, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	entries := r.m.history[reportID]
	res := make([]*domain.StatusChange, len(entries))
	for i := range entries {
		c := entries[i]
		res[i] = &c
	}
	return res, nil
}
