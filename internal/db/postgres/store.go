// Package postgres (store.go) реализует хранилище движка поверх pgxpool.
// Изменения, затрагивающие несколько таблиц, выполняются в транзакциях БД.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
)

// querier: общее подмножество *pgxpool.Pool и pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store реализует store.Store поверх PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

var _ store.Store = (*Store)(nil)

// NewStore создаёт хранилище на готовом пуле. Миграции должны быть применены.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	if s.inTx || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (store.User, error) {
	var u store.User
	err := s.q.QueryRow(ctx, `SELECT id, username, xp FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.XP)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.User{}, common.ErrUserNotFound
	}
	if err != nil {
		return store.User{}, common.StoreError("получение пользователя", err)
	}
	return u, nil
}

func (s *Store) InsertUser(ctx context.Context, u store.User) (store.User, error) {
	err := s.q.QueryRow(ctx,
		`INSERT INTO users (username, xp) VALUES ($1, $2) RETURNING id`, u.Username, u.XP,
	).Scan(&u.ID)
	if err != nil {
		return store.User{}, common.StoreError("создание пользователя", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := s.q.Query(ctx, `SELECT id, username, xp FROM users ORDER BY id`)
	if err != nil {
		return nil, common.StoreError("список пользователей", err)
	}
	defer rows.Close()

	var out []store.User
	for rows.Next() {
		var u store.User
		if err := rows.Scan(&u.ID, &u.Username, &u.XP); err != nil {
			return nil, common.StoreError("список пользователей", err)
		}
		out = append(out, u)
	}
	return out, common.StoreError("список пользователей", rows.Err())
}

func (s *Store) UpdateUser(ctx context.Context, u store.User) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE users SET username = $2, xp = $3 WHERE id = $1`, u.ID, u.Username, u.XP,
	)
	return affectedOne(tag, err, "обновление пользователя", common.ErrUserNotFound)
}

const taskColumns = `id, user_id, title, description, category, due_date, is_completed, xp_reward,
	is_daily_goal, daily_target, daily_progress, last_completed_date, streak_count, goal_met_date`

func scanTask(row pgx.Row) (store.Task, error) {
	var t store.Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Category, &t.DueDate, &t.IsCompleted, &t.XPReward,
		&t.IsDailyGoal, &t.DailyTarget, &t.DailyProgress, &t.LastCompletedDate, &t.StreakCount, &t.GoalMetDate,
	)
	return t, err
}

func (s *Store) GetTask(ctx context.Context, id int64) (store.Task, error) {
	t, err := scanTask(s.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Task{}, common.ErrTaskNotFound
	}
	if err != nil {
		return store.Task{}, common.StoreError("получение задачи", err)
	}
	return t, nil
}

func (s *Store) InsertTask(ctx context.Context, t store.Task) (store.Task, error) {
	err := s.q.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, category, due_date, is_completed, xp_reward,
			is_daily_goal, daily_target, daily_progress, last_completed_date, streak_count, goal_met_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, t.UserID, t.Title, t.Description, t.Category, t.DueDate, t.IsCompleted, t.XPReward,
		t.IsDailyGoal, t.DailyTarget, t.DailyProgress, t.LastCompletedDate, t.StreakCount, t.GoalMetDate,
	).Scan(&t.ID)
	if err != nil {
		return store.Task{}, common.StoreError("создание задачи", err)
	}
	return t, nil
}

func (s *Store) ListTasksByUser(ctx context.Context, userID int64) ([]store.Task, error) {
	rows, err := s.q.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, common.StoreError("список задач", err)
	}
	defer rows.Close()

	var out []store.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, common.StoreError("список задач", err)
		}
		out = append(out, t)
	}
	return out, common.StoreError("список задач", rows.Err())
}

func (s *Store) UpdateTask(ctx context.Context, t store.Task) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE tasks SET title = $2, description = $3, category = $4, due_date = $5, is_completed = $6,
			xp_reward = $7, is_daily_goal = $8, daily_target = $9, daily_progress = $10,
			last_completed_date = $11, streak_count = $12, goal_met_date = $13
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Category, t.DueDate, t.IsCompleted,
		t.XPReward, t.IsDailyGoal, t.DailyTarget, t.DailyProgress,
		t.LastCompletedDate, t.StreakCount, t.GoalMetDate,
	)
	return affectedOne(tag, err, "обновление задачи", common.ErrTaskNotFound)
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	// История удаляется каскадом (ON DELETE CASCADE)
	tag, err := s.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return affectedOne(tag, err, "удаление задачи", common.ErrTaskNotFound)
}

func (s *Store) AppendHistory(ctx context.Context, h store.TaskHistory) (store.TaskHistory, error) {
	err := s.q.QueryRow(ctx,
		`INSERT INTO task_history (task_id, user_id, completed_at) VALUES ($1, $2, $3) RETURNING id`,
		h.TaskID, h.UserID, h.CompletedAt,
	).Scan(&h.ID)
	if err != nil {
		return store.TaskHistory{}, common.StoreError("запись истории", err)
	}
	return h, nil
}

func (s *Store) ListHistoryByUser(ctx context.Context, userID int64) ([]store.TaskHistory, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, task_id, user_id, completed_at FROM task_history WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, common.StoreError("история", err)
	}
	defer rows.Close()

	var out []store.TaskHistory
	for rows.Next() {
		var h store.TaskHistory
		if err := rows.Scan(&h.ID, &h.TaskID, &h.UserID, &h.CompletedAt); err != nil {
			return nil, common.StoreError("история", err)
		}
		out = append(out, h)
	}
	return out, common.StoreError("история", rows.Err())
}

func (s *Store) ListRewards(ctx context.Context) ([]store.Reward, error) {
	rows, err := s.q.Query(ctx, `SELECT id, name, description, xp_cost FROM rewards ORDER BY id`)
	if err != nil {
		return nil, common.StoreError("каталог наград", err)
	}
	defer rows.Close()

	var out []store.Reward
	for rows.Next() {
		var r store.Reward
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.XPCost); err != nil {
			return nil, common.StoreError("каталог наград", err)
		}
		out = append(out, r)
	}
	return out, common.StoreError("каталог наград", rows.Err())
}

func (s *Store) InsertReward(ctx context.Context, r store.Reward) (store.Reward, error) {
	err := s.q.QueryRow(ctx,
		`INSERT INTO rewards (name, description, xp_cost) VALUES ($1, $2, $3) RETURNING id`,
		r.Name, r.Description, r.XPCost,
	).Scan(&r.ID)
	if err != nil {
		return store.Reward{}, common.StoreError("создание награды", err)
	}
	return r, nil
}

func (s *Store) ListUnlockedByUser(ctx context.Context, userID int64) ([]store.UnlockedReward, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, user_id, reward_id, unlocked_at FROM unlocked_rewards WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, common.StoreError("открытые награды", err)
	}
	defer rows.Close()

	var out []store.UnlockedReward
	for rows.Next() {
		var u store.UnlockedReward
		if err := rows.Scan(&u.ID, &u.UserID, &u.RewardID, &u.UnlockedAt); err != nil {
			return nil, common.StoreError("открытые награды", err)
		}
		out = append(out, u)
	}
	return out, common.StoreError("открытые награды", rows.Err())
}

func (s *Store) InsertUnlocked(ctx context.Context, u store.UnlockedReward) (store.UnlockedReward, error) {
	if u.UnlockedAt.IsZero() {
		u.UnlockedAt = time.Now()
	}
	err := s.q.QueryRow(ctx,
		`INSERT INTO unlocked_rewards (user_id, reward_id, unlocked_at) VALUES ($1, $2, $3) RETURNING id`,
		u.UserID, u.RewardID, u.UnlockedAt,
	).Scan(&u.ID)
	if err != nil {
		return store.UnlockedReward{}, common.StoreError("открытие награды", err)
	}
	return u, nil
}

func (s *Store) GetWheelState(ctx context.Context, userID int64) (store.WheelState, error) {
	w := store.NewWheelState(userID)
	err := s.q.QueryRow(ctx, `
		SELECT total_spins, total_xp_won, last_play_date, streak_days, best_spin, total_bonus_turns
		FROM wheel_states WHERE user_id = $1
	`, userID).Scan(&w.TotalSpins, &w.TotalXPWon, &w.LastPlayDate, &w.StreakDays, &w.BestSpin, &w.TotalBonusTurns)
	if errors.Is(err, pgx.ErrNoRows) {
		return w, nil
	}
	if err != nil {
		return store.WheelState{}, common.StoreError("состояние колеса", err)
	}

	rows, err := s.q.Query(ctx, `SELECT spin_date, used FROM wheel_daily_spins WHERE user_id = $1`, userID)
	if err != nil {
		return store.WheelState{}, common.StoreError("спины колеса", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date string
			used int
		)
		if err := rows.Scan(&date, &used); err != nil {
			return store.WheelState{}, common.StoreError("спины колеса", err)
		}
		w.DailySpins[date] = used
	}
	if err := rows.Err(); err != nil {
		return store.WheelState{}, common.StoreError("спины колеса", err)
	}
	return w, nil
}

func (s *Store) SaveWheelState(ctx context.Context, w store.WheelState) error {
	return s.InTx(ctx, func(txs store.Store) error {
		q := txs.(*Store).q

		_, err := q.Exec(ctx, `
			INSERT INTO wheel_states (user_id, total_spins, total_xp_won, last_play_date, streak_days, best_spin, total_bonus_turns)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id) DO UPDATE SET
				total_spins = EXCLUDED.total_spins,
				total_xp_won = EXCLUDED.total_xp_won,
				last_play_date = EXCLUDED.last_play_date,
				streak_days = EXCLUDED.streak_days,
				best_spin = EXCLUDED.best_spin,
				total_bonus_turns = EXCLUDED.total_bonus_turns,
				updated_at = NOW()
		`, w.UserID, w.TotalSpins, w.TotalXPWon, w.LastPlayDate, w.StreakDays, w.BestSpin, w.TotalBonusTurns)
		if err != nil {
			return common.StoreError("сохранение колеса", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM wheel_daily_spins WHERE user_id = $1`, w.UserID); err != nil {
			return common.StoreError("сохранение колеса", err)
		}
		for date, used := range w.DailySpins {
			if _, err := q.Exec(ctx,
				`INSERT INTO wheel_daily_spins (user_id, spin_date, used) VALUES ($1, $2, $3)`, w.UserID, date, used,
			); err != nil {
				return common.StoreError("сохранение колеса", err)
			}
		}
		return nil
	})
}

func (s *Store) PruneWheelSpins(ctx context.Context, before string) (int, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM wheel_daily_spins WHERE spin_date < $1`, before)
	if err != nil {
		return 0, common.StoreError("очистка спинов", err)
	}
	return int(tag.RowsAffected()), nil
}

// InTx выполняет fn в транзакции БД. Вложенный вызов переиспользует текущую.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return common.StoreError("начало транзакции", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return common.StoreError("фиксация транзакции", err)
	}
	return nil
}

// affectedOne проверяет, что запрос изменил строку, иначе возвращает notFound.
func affectedOne(tag pgconn.CommandTag, err error, op string, notFound error) error {
	if err != nil {
		return common.StoreError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
