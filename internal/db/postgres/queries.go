// Package postgres (queries.go) содержит миграции схемы и их выполнение.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExecMigrationSQL выполняет один SQL-запрос миграции в транзакции.
// Если запрос упадёт: транзакция откатится автоматически.
// Возвращает false, если версия уже была применена.
func ExecMigrationSQL(ctx context.Context, pool *pgxpool.Pool, version int, sql string) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback(ctx)

	// Проверяем, не была ли эта миграция уже применена
	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки миграции: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		return false, fmt.Errorf("ошибка выполнения миграции %d: %w", version, err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return false, fmt.Errorf("ошибка записи версии миграции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// SQL-миграции встроены в код для упрощения деплоя.
var migrations = []struct {
	version int
	sql     string
}{
	{1, migration001Users},
	{2, migration002Tasks},
	{3, migration003Rewards},
	{4, migration004Wheel},
}

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(255) NOT NULL,
    xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
    created_at TIMESTAMP DEFAULT NOW()
);
`

var migration002Tasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category VARCHAR(128) NOT NULL DEFAULT '',
    due_date VARCHAR(10) NOT NULL DEFAULT '',
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    xp_reward INTEGER NOT NULL DEFAULT 0 CHECK (xp_reward >= 0),
    is_daily_goal BOOLEAN NOT NULL DEFAULT FALSE,
    daily_target INTEGER NOT NULL DEFAULT 1,
    daily_progress INTEGER NOT NULL DEFAULT 0 CHECK (daily_progress >= 0),
    last_completed_date VARCHAR(10) NOT NULL DEFAULT '',
    streak_count INTEGER NOT NULL DEFAULT 0 CHECK (streak_count >= 0),
    goal_met_date VARCHAR(10) NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE TABLE IF NOT EXISTS task_history (
    id BIGSERIAL PRIMARY KEY,
    task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES users(id),
    completed_at VARCHAR(19) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_history_user_id ON task_history(user_id);
`

var migration003Rewards = `
CREATE TABLE IF NOT EXISTS rewards (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    xp_cost INTEGER NOT NULL CHECK (xp_cost >= 0)
);
CREATE TABLE IF NOT EXISTS unlocked_rewards (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    reward_id BIGINT NOT NULL REFERENCES rewards(id),
    unlocked_at TIMESTAMPTZ NOT NULL,
    UNIQUE (user_id, reward_id)
);
CREATE INDEX IF NOT EXISTS idx_unlocked_rewards_user_id ON unlocked_rewards(user_id);
`

var migration004Wheel = `
CREATE TABLE IF NOT EXISTS wheel_states (
    user_id BIGINT PRIMARY KEY REFERENCES users(id),
    total_spins INTEGER NOT NULL DEFAULT 0,
    total_xp_won INTEGER NOT NULL DEFAULT 0,
    last_play_date VARCHAR(10) NOT NULL DEFAULT '',
    streak_days INTEGER NOT NULL DEFAULT 0,
    best_spin VARCHAR(32) NOT NULL DEFAULT '',
    total_bonus_turns INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS wheel_daily_spins (
    user_id BIGINT NOT NULL REFERENCES users(id),
    spin_date VARCHAR(10) NOT NULL,
    used INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, spin_date)
);
`
