package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

func TestUserRepository_CaseInsensitiveUniqueness(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	alice, err := users.Create(ctx, &domain.User{Username: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if alice.ID != 1 {
		t.Fatalf("expected first id 1, got %d", alice.ID)
	}

	if _, err := users.Create(ctx, &domain.User{Username: "ALICE", Email: "other@example.com"}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate username, got %v", err)
	}
	if _, err := users.Create(ctx, &domain.User{Username: "bob", Email: "Alice@Example.com"}); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	found, err := users.FindByUsername(ctx, "alice")
	if err != nil || found.ID != alice.ID {
		t.Fatalf("lookup by username: %v %+v", err, found)
	}
	if _, err := users.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestReportRepository_ListsAndUpdates(t *testing.T) {
	reports := NewStore().Reports()
	ctx := context.Background()

	for _, owner := range []int64{1, 2, 1} {
		if _, err := reports.Create(ctx, &domain.Report{UserID: owner, Status: domain.StatusPending}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mine, _ := reports.ListByOwner(ctx, 1)
	if len(mine) != 2 || mine[0].ID != 1 || mine[1].ID != 3 {
		t.Fatalf("unexpected owner listing: %+v", mine)
	}
	all, _ := reports.ListAll(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(all))
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	updated, err := reports.UpdateStatus(ctx, 2, domain.StatusResolved, at)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusResolved || !updated.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := reports.UpdateStatus(ctx, 99, domain.StatusResolved, at); !errors.Is(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestReportRepository_ReturnsCopies(t *testing.T) {
	reports := NewStore().Reports()
	ctx := context.Background()

	created, _ := reports.Create(ctx, &domain.Report{Title: "original"})
	created.Title = "mutated"

	stored, _ := reports.FindByID(ctx, created.ID)
	if stored.Title != "original" {
		t.Fatalf("store leaked a reference: %q", stored.Title)
	}
}

func TestReportRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	reports := NewStore().Reports()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := reports.Create(ctx, &domain.Report{})
			if err == nil {
				ids <- r.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != 50 {
		t.Fatalf("expected 50 ids, got %d", len(seen))
	}
}

func TestAuditRepository_KeepsInsertionOrder(t *testing.T) {
	audits := NewStore().Audits()
	ctx := context.Background()

	_ = audits.Insert(ctx, &domain.StatusChange{ReportID: 1, To: domain.StatusPending})
	_ = audits.Insert(ctx, &domain.StatusChange{ReportID: 1, From: domain.StatusPending, To: domain.StatusInProgress})
	_ = audits.Insert(ctx, &domain.StatusChange{ReportID: 2, To: domain.StatusPending})

	history, _ := audits.ListByReport(ctx, 1)
	if len(history) != 2 || history[1].To != domain.StatusInProgress {
		t.Fatalf("unexpected history: %+v", history)
	}
	empty, _ := audits.ListByReport(ctx, 42)
	if len(empty) != 0 {
		t.Fatalf("expected empty history")
	}
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	s, err := store.Create(ctx, 7, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil || got.UserID != 7 {
		t.Fatalf("get: %v %+v", err, got)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	s, _ := store.Create(ctx, 1, time.Minute)
	now = now.Add(2 * time.Minute)

	if _, err := store.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestIdempotencyStore_FirstWriteWins(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	_ = store.Remember(ctx, 1, "k", 10)
	_ = store.Remember(ctx, 1, "k", 11)

	id, ok, _ := store.Lookup(ctx, 1, "k")
	if !ok || id != 10 {
		t.Fatalf("expected 10, got %d (%v)", id, ok)
	}
	if _, ok, _ := store.Lookup(ctx, 2, "k"); ok {
		t.Fatalf("keys must be scoped per owner")
	}
}
