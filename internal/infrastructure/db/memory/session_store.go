package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

// SessionStore keeps sessions in-process. Expired sessions are dropped lazily
// on lookup.
type SessionStore struct {
	mu   sync.Mutex
	sess map[string]domain.Session
	now  func() time.Time
}

// NewSessionStore initializes an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sess: make(map[string]domain.Session),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionStore) Create(_ context.Context, userID int64, ttl time.Duration) (*domain.Session, error) {
	now := s.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	s.sess[session.ID] = session
	s.mu.Unlock()

	return &session, nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sess[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		delete(s.sess, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sess, id)
	s.mu.Unlock()
	return nil
}

// IdempotencyStore remembers idempotency keys in-process. Keys never expire.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]int64
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]int64)}
}

func (s *IdempotencyStore) Lookup(_ context.Context, ownerID int64, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.keys[idemKey(ownerID, key)]
	return id, ok, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, ownerID int64, key string, reportID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idemKey(ownerID, key)
	if _, exists := s.keys[k]; !exists {
		s.keys[k] = reportID
	}
	return nil
}

func idemKey(ownerID int64, key string) string {
	return strconv.FormatInt(ownerID, 10) + ":" + key
}
