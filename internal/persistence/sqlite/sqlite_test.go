package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

func openTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		t.Fatalf("NewConnectionPool: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("close pool: %v", err)
		}
	})

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := openTestPool(t)

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate run failed: %v", err)
	}

	var count int
	if err := pool.DB().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("schema_migrations rows = %d, want %d", count, len(migrations))
	}
}

func TestMigrateSeedsShopCatalog(t *testing.T) {
	pool := openTestPool(t)

	items, err := NewShopRepository(pool).ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("catalog is empty after migration")
	}
	for _, item := range items {
		if item.Price <= 0 {
			t.Errorf("item %s has non-positive price %d", item.ID, item.Price)
		}
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	pool := openTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	description := "push the north gate"
	session := persistence.Session{
		ID:          "sess-1",
		Code:        "AB12CD",
		Title:       "Raid Night",
		Description: &description,
		Status:      "active",
		TimerStatus: "stopped",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	stored, err := repo.GetSessionByCode(ctx, "AB12CD")
	if err != nil {
		t.Fatalf("GetSessionByCode: %v", err)
	}
	if stored.Title != "Raid Night" || stored.Description == nil || *stored.Description != description {
		t.Errorf("stored session mismatch: %+v", stored)
	}
	if stored.TimerElapsedMs != 0 || stored.TimerStartAt != nil {
		t.Errorf("new session timer not zeroed: %+v", stored)
	}

	if _, err := repo.GetSessionByCode(ctx, "ZZZZZZ"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("unknown code error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_CodeCollision(t *testing.T) {
	pool := openTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	first := persistence.Session{ID: "sess-1", Code: "SAME00", Title: "One", Status: "active", TimerStatus: "stopped", CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateSession(ctx, first); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	second := first
	second.ID = "sess-2"
	second.Title = "Two"
	if err := repo.CreateSession(ctx, second); !errors.Is(err, persistence.ErrAlreadyExists) {
		t.Errorf("duplicate code error = %v, want ErrAlreadyExists", err)
	}
}

func TestSessionRepository_UpdateSessionTimer(t *testing.T) {
	pool := openTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	session := persistence.Session{ID: "sess-1", Code: "TIMER1", Title: "T", Status: "active", TimerStatus: "stopped", CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	startAt := now.Add(time.Minute)
	session.TimerStatus = "running"
	session.TimerStartAt = &startAt
	session.TimerElapsedMs = 1500
	session.UpdatedAt = startAt
	if err := repo.UpdateSessionTimer(ctx, session); err != nil {
		t.Fatalf("UpdateSessionTimer: %v", err)
	}

	stored, err := repo.GetSessionByCode(ctx, "TIMER1")
	if err != nil {
		t.Fatalf("GetSessionByCode: %v", err)
	}
	if stored.TimerStatus != "running" || stored.TimerElapsedMs != 1500 {
		t.Errorf("timer fields not persisted: %+v", stored)
	}
	if stored.TimerStartAt == nil || !stored.TimerStartAt.Equal(startAt) {
		t.Errorf("TimerStartAt = %v, want %v", stored.TimerStartAt, startAt)
	}

	missing := session
	missing.ID = "sess-missing"
	if err := repo.UpdateSessionTimer(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("update of missing session = %v, want ErrNotFound", err)
	}
}
