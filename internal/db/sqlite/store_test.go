package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/store/storetest"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openMemory(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mainquest.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	u, err := s.InsertUser(ctx, store.User{Username: "ana", XP: 42})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user after reopen: %v", err)
	}
	if got.XP != 42 {
		t.Fatalf("xp after reopen = %d", got.XP)
	}

	var versions int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&versions); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if versions != len(migrations) {
		t.Fatalf("migrations recorded = %d, want %d", versions, len(migrations))
	}
}

func TestXPCheckConstraint(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	defer s.Close()

	u, err := s.InsertUser(ctx, store.User{Username: "ana"})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	u.XP = -1
	if err := s.UpdateUser(ctx, u); err == nil {
		t.Fatal("negative xp must be rejected by the schema")
	}
}
