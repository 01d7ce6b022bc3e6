// Package sqlite (migrate.go) применяет встроенные SQL-миграции.
// Версии фиксируются в таблице schema_migrations, каждая миграция
// выполняется в своей транзакции.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// migrations: схема хранилища по версиям.
var migrations = []struct {
	version int
	sql     string
}{
	{1, migration001Users},
	{2, migration002Tasks},
	{3, migration003Rewards},
	{4, migration004Wheel},
}

// runMigrations создаёт таблицу версий и применяет новые миграции по порядку.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	for _, m := range migrations {
		applied, err := execMigrationSQL(ctx, db, m.version, m.sql)
		if err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		if applied {
			log.WithField("version", m.version).Info("Миграция SQLite применена")
		}
	}
	return nil
}

// execMigrationSQL выполняет одну миграцию в транзакции.
// Возвращает false, если версия уже была применена.
func execMigrationSQL(ctx context.Context, db *sql.DB, version int, query string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки миграции: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, query); err != nil {
		return false, fmt.Errorf("ошибка выполнения миграции %d: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES (?)", version,
	); err != nil {
		return false, fmt.Errorf("ошибка записи версии миграции: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL,
    xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0)
);
`

var migration002Tasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    due_date TEXT NOT NULL DEFAULT '',
    is_completed INTEGER NOT NULL DEFAULT 0,
    xp_reward INTEGER NOT NULL DEFAULT 0 CHECK (xp_reward >= 0),
    is_daily_goal INTEGER NOT NULL DEFAULT 0,
    daily_target INTEGER NOT NULL DEFAULT 1,
    daily_progress INTEGER NOT NULL DEFAULT 0 CHECK (daily_progress >= 0),
    last_completed_date TEXT NOT NULL DEFAULT '',
    streak_count INTEGER NOT NULL DEFAULT 0 CHECK (streak_count >= 0),
    goal_met_date TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE TABLE IF NOT EXISTS task_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(id),
    completed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_history_user_id ON task_history(user_id);
`

var migration003Rewards = `
CREATE TABLE IF NOT EXISTS rewards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    xp_cost INTEGER NOT NULL CHECK (xp_cost >= 0)
);
CREATE TABLE IF NOT EXISTS unlocked_rewards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    reward_id INTEGER NOT NULL REFERENCES rewards(id),
    unlocked_at TEXT NOT NULL,
    UNIQUE (user_id, reward_id)
);
`

var migration004Wheel = `
CREATE TABLE IF NOT EXISTS wheel_states (
    user_id INTEGER PRIMARY KEY REFERENCES users(id),
    total_spins INTEGER NOT NULL DEFAULT 0,
    total_xp_won INTEGER NOT NULL DEFAULT 0,
    last_play_date TEXT NOT NULL DEFAULT '',
    streak_days INTEGER NOT NULL DEFAULT 0,
    best_spin TEXT NOT NULL DEFAULT '',
    total_bonus_turns INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS wheel_daily_spins (
    user_id INTEGER NOT NULL REFERENCES users(id),
    spin_date TEXT NOT NULL,
    used INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, spin_date)
);
`
