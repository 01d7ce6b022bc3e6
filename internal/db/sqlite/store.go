// Package sqlite: хранилище движка поверх SQLite (modernc.org/sqlite, без cgo).
// Это драйвер по умолчанию: локальный файл базы, как в исходном приложении.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
)

const timeFormat = time.RFC3339Nano

// querier: общее подмножество *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store реализует store.Store поверх SQLite.
type Store struct {
	db *sql.DB
	q  querier
	// inTx: экземпляр привязан к открытой транзакции
	inTx bool
}

var _ store.Store = (*Store)(nil)

// Open открывает базу по пути path (":memory:" для базы в памяти) и применяет миграции.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("не задан путь к базе SQLite")
	}

	name := path
	if path != ":memory:" {
		name = filepath.Clean(path)
	}
	dsn := name + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
	}
	// Одно соединение: база в памяти живёт в рамках соединения,
	// а запись в SQLite всё равно однопоточная.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("база SQLite недоступна: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	log.WithField("path", name).Info("Хранилище SQLite открыто")
	return &Store{db: db, q: db}, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	if s == nil || s.db == nil || s.inTx {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetUser(ctx context.Context, id int64) (store.User, error) {
	var u store.User
	err := s.q.QueryRowContext(ctx,
		`SELECT id, username, xp FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.XP)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, common.ErrUserNotFound
	}
	if err != nil {
		return store.User{}, common.StoreError("получение пользователя", err)
	}
	return u, nil
}

func (s *Store) InsertUser(ctx context.Context, u store.User) (store.User, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO users (username, xp) VALUES (?, ?)`, u.Username, u.XP,
	)
	if err != nil {
		return store.User{}, common.StoreError("создание пользователя", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return store.User{}, common.StoreError("создание пользователя", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, username, xp FROM users ORDER BY id`)
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
	res, err := s.q.ExecContext(ctx,
		`UPDATE users SET username = ?, xp = ? WHERE id = ?`, u.Username, u.XP, u.ID,
	)
	return affectedOne(res, err, "обновление пользователя", common.ErrUserNotFound)
}

const taskColumns = `id, user_id, title, description, category, due_date, is_completed, xp_reward,
	is_daily_goal, daily_target, daily_progress, last_completed_date, streak_count, goal_met_date`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (store.Task, error) {
	var t store.Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Category, &t.DueDate, &t.IsCompleted, &t.XPReward,
		&t.IsDailyGoal, &t.DailyTarget, &t.DailyProgress, &t.LastCompletedDate, &t.StreakCount, &t.GoalMetDate,
	)
	return t, err
}

func (s *Store) GetTask(ctx context.Context, id int64) (store.Task, error) {
	t, err := scanTask(s.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Task{}, common.ErrTaskNotFound
	}
	if err != nil {
		return store.Task{}, common.StoreError("получение задачи", err)
	}
	return t, nil
}

func (s *Store) InsertTask(ctx context.Context, t store.Task) (store.Task, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, description, category, due_date, is_completed, xp_reward,
			is_daily_goal, daily_target, daily_progress, last_completed_date, streak_count, goal_met_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.UserID, t.Title, t.Description, t.Category, t.DueDate, t.IsCompleted, t.XPReward,
		t.IsDailyGoal, t.DailyTarget, t.DailyProgress, t.LastCompletedDate, t.StreakCount, t.GoalMetDate,
	)
	if err != nil {
		return store.Task{}, common.StoreError("создание задачи", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return store.Task{}, common.StoreError("создание задачи", err)
	}
	return t, nil
}

func (s *Store) ListTasksByUser(ctx context.Context, userID int64) ([]store.Task, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY id`, userID,
	)
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
	res, err := s.q.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, category = ?, due_date = ?, is_completed = ?,
			xp_reward = ?, is_daily_goal = ?, daily_target = ?, daily_progress = ?,
			last_completed_date = ?, streak_count = ?, goal_met_date = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Category, t.DueDate, t.IsCompleted,
		t.XPReward, t.IsDailyGoal, t.DailyTarget, t.DailyProgress,
		t.LastCompletedDate, t.StreakCount, t.GoalMetDate, t.ID,
	)
	return affectedOne(res, err, "обновление задачи", common.ErrTaskNotFound)
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	// История удаляется каскадом (ON DELETE CASCADE)
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return affectedOne(res, err, "удаление задачи", common.ErrTaskNotFound)
}

func (s *Store) AppendHistory(ctx context.Context, h store.TaskHistory) (store.TaskHistory, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO task_history (task_id, user_id, completed_at) VALUES (?, ?, ?)`,
		h.TaskID, h.UserID, h.CompletedAt,
	)
	if err != nil {
		return store.TaskHistory{}, common.StoreError("запись истории", err)
	}
	h.ID, err = res.LastInsertId()
	if err != nil {
		return store.TaskHistory{}, common.StoreError("запись истории", err)
	}
	return h, nil
}

func (s *Store) ListHistoryByUser(ctx context.Context, userID int64) ([]store.TaskHistory, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, task_id, user_id, completed_at FROM task_history WHERE user_id = ? ORDER BY id`, userID,
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
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, description, xp_cost FROM rewards ORDER BY id`)
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
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO rewards (name, description, xp_cost) VALUES (?, ?, ?)`, r.Name, r.Description, r.XPCost,
	)
	if err != nil {
		return store.Reward{}, common.StoreError("создание награды", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return store.Reward{}, common.StoreError("создание награды", err)
	}
	return r, nil
}

func (s *Store) ListUnlockedByUser(ctx context.Context, userID int64) ([]store.UnlockedReward, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, reward_id, unlocked_at FROM unlocked_rewards WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, common.StoreError("открытые награды", err)
	}
	defer rows.Close()

	var out []store.UnlockedReward
	for rows.Next() {
		var (
			u  store.UnlockedReward
			at string
		)
		if err := rows.Scan(&u.ID, &u.UserID, &u.RewardID, &at); err != nil {
			return nil, common.StoreError("открытые награды", err)
		}
		u.UnlockedAt, err = time.Parse(timeFormat, at)
		if err != nil {
			return nil, common.StoreError("открытые награды", err)
		}
		out = append(out, u)
	}
	return out, common.StoreError("открытые награды", rows.Err())
}

func (s *Store) InsertUnlocked(ctx context.Context, u store.UnlockedReward) (store.UnlockedReward, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO unlocked_rewards (user_id, reward_id, unlocked_at) VALUES (?, ?, ?)`,
		u.UserID, u.RewardID, u.UnlockedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return store.UnlockedReward{}, common.StoreError("открытие награды", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return store.UnlockedReward{}, common.StoreError("открытие награды", err)
	}
	return u, nil
}

func (s *Store) GetWheelState(ctx context.Context, userID int64) (store.WheelState, error) {
	w := store.NewWheelState(userID)
	err := s.q.QueryRowContext(ctx, `
		SELECT total_spins, total_xp_won, last_play_date, streak_days, best_spin, total_bonus_turns
		FROM wheel_states WHERE user_id = ?
	`, userID).Scan(&w.TotalSpins, &w.TotalXPWon, &w.LastPlayDate, &w.StreakDays, &w.BestSpin, &w.TotalBonusTurns)
	if errors.Is(err, sql.ErrNoRows) {
		return w, nil
	}
	if err != nil {
		return store.WheelState{}, common.StoreError("состояние колеса", err)
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT spin_date, used FROM wheel_daily_spins WHERE user_id = ?`, userID,
	)
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

		_, err := q.ExecContext(ctx, `
			INSERT INTO wheel_states (user_id, total_spins, total_xp_won, last_play_date, streak_days, best_spin, total_bonus_turns)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				total_spins = excluded.total_spins,
				total_xp_won = excluded.total_xp_won,
				last_play_date = excluded.last_play_date,
				streak_days = excluded.streak_days,
				best_spin = excluded.best_spin,
				total_bonus_turns = excluded.total_bonus_turns
		`, w.UserID, w.TotalSpins, w.TotalXPWon, w.LastPlayDate, w.StreakDays, w.BestSpin, w.TotalBonusTurns)
		if err != nil {
			return common.StoreError("сохранение колеса", err)
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM wheel_daily_spins WHERE user_id = ?`, w.UserID); err != nil {
			return common.StoreError("сохранение колеса", err)
		}
		for date, used := range w.DailySpins {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO wheel_daily_spins (user_id, spin_date, used) VALUES (?, ?, ?)`, w.UserID, date, used,
			); err != nil {
				return common.StoreError("сохранение колеса", err)
			}
		}
		return nil
	})
}

func (s *Store) PruneWheelSpins(ctx context.Context, before string) (int, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM wheel_daily_spins WHERE spin_date < ?`, before)
	if err != nil {
		return 0, common.StoreError("очистка спинов", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.StoreError("очистка спинов", err)
	}
	return int(n), nil
}

// InTx выполняет fn в транзакции SQLite. Вложенный вызов переиспользует текущую.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.StoreError("начало транзакции", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.StoreError("фиксация транзакции", err)
	}
	return nil
}

// affectedOne проверяет, что запрос изменил строку, иначе возвращает notFound.
func affectedOne(res sql.Result, err error, op string, notFound error) error {
	if err != nil {
		return common.StoreError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.StoreError(op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
