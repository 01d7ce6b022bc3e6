package postgres

import (
	"context"
	"os"
	"testing"

	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/store/storetest"
)

// Тесты требуют живой PostgreSQL: MAINQUEST_TEST_PG_DSN=postgres://...
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MAINQUEST_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MAINQUEST_TEST_PG_DSN не задан")
	}
	return dsn
}

func TestStoreContract(t *testing.T) {
	dsn := testDSN(t)
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) store.Store {
		pool, err := Connect(ctx, dsn, 4, 0)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		if err := RunMigrations(ctx, pool); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		_, err = pool.Exec(ctx, `TRUNCATE users, tasks, task_history, rewards, unlocked_rewards,
			wheel_states, wheel_daily_spins RESTART IDENTITY CASCADE`)
		if err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewStore(pool)
	})
}

func TestMigrationsIdempotent(t *testing.T) {
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := Connect(ctx, dsn, 2, 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(ctx, pool); err != nil {
			t.Fatalf("migrate run %d: %v", i, err)
		}
	}

	var versions int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&versions); err != nil {
		t.Fatalf("count: %v", err)
	}
	if versions < len(migrations) {
		t.Fatalf("versions = %d, want >= %d", versions, len(migrations))
	}
}
