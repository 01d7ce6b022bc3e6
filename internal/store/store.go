// Package store описывает сущности движка и контракт хранилища.
// Реализации: memory (в процессе), db/sqlite и db/postgres.
// Отсутствующая запись всегда возвращается как common.ErrNotFound.
package store

import (
	"context"
	"time"
)

// User: запись пользователя. XP меняется только через экономику.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	XP       int    `db:"xp"`
}

// Task: обычная задача или дневная цель.
type Task struct {
	ID                int64  `db:"id"`
	UserID            int64  `db:"user_id"`
	Title             string `db:"title"`
	Description       string `db:"description"`
	Category          string `db:"category"` // Пусто = "Ostalo" в отчётах
	DueDate           string `db:"due_date"`
	IsCompleted       bool   `db:"is_completed"`
	XPReward          int    `db:"xp_reward"`
	IsDailyGoal       bool   `db:"is_daily_goal"`
	DailyTarget       int    `db:"daily_target"`
	DailyProgress     int    `db:"daily_progress"`
	LastCompletedDate string `db:"last_completed_date"` // 2006-01-02, последнее продвижение
	StreakCount       int    `db:"streak_count"`
	GoalMetDate       string `db:"goal_met_date"` // 2006-01-02, последнее достижение цели
}

// GoalMet сообщает, выполнена ли дневная цель на сегодня.
func (t *Task) GoalMet() bool {
	return t.IsDailyGoal && t.DailyProgress >= t.DailyTarget
}

// TaskHistory описывает строку журнала начислений, одна на каждое завершение с наградой.
type TaskHistory struct {
	ID          int64  `db:"id"`
	TaskID      int64  `db:"task_id"`
	UserID      int64  `db:"user_id"`
	CompletedAt string `db:"completed_at"` // "2006-01-02 15:04:05"
}

// Reward: позиция каталога магазина.
type Reward struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	XPCost      int    `db:"xp_cost"`
}

// UnlockedReward: купленная пользователем награда. Покупки окончательны.
type UnlockedReward struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	RewardID   int64     `db:"reward_id"`
	UnlockedAt time.Time `db:"unlocked_at"`
}

// WheelState: счётчики колеса пользователя.
// DailySpins хранит использованные спины по дате 2006-01-02.
type WheelState struct {
	UserID          int64
	DailySpins      map[string]int
	TotalSpins      int
	TotalXPWon      int
	LastPlayDate    string
	StreakDays      int
	BestSpin        string // Пусто = ещё не играл
	TotalBonusTurns int
}

// NewWheelState возвращает пустое состояние колеса.
func NewWheelState(userID int64) WheelState {
	return WheelState{UserID: userID, DailySpins: make(map[string]int)}
}

// Clone возвращает копию состояния с отдельной картой DailySpins.
func (w WheelState) Clone() WheelState {
	out := w
	out.DailySpins = make(map[string]int, len(w.DailySpins))
	for d, n := range w.DailySpins {
		out.DailySpins[d] = n
	}
	return out
}

// Store: контракт хранилища движка.
type Store interface {
	GetUser(ctx context.Context, id int64) (User, error)
	InsertUser(ctx context.Context, u User) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u User) error

	GetTask(ctx context.Context, id int64) (Task, error)
	InsertTask(ctx context.Context, t Task) (Task, error)
	ListTasksByUser(ctx context.Context, userID int64) ([]Task, error)
	UpdateTask(ctx context.Context, t Task) error
	// DeleteTask удаляет задачу вместе с её историей.
	DeleteTask(ctx context.Context, id int64) error

	AppendHistory(ctx context.Context, h TaskHistory) (TaskHistory, error)
	// ListHistoryByUser возвращает историю в порядке добавления.
	ListHistoryByUser(ctx context.Context, userID int64) ([]TaskHistory, error)

	ListRewards(ctx context.Context) ([]Reward, error)
	InsertReward(ctx context.Context, r Reward) (Reward, error)
	ListUnlockedByUser(ctx context.Context, userID int64) ([]UnlockedReward, error)
	InsertUnlocked(ctx context.Context, u UnlockedReward) (UnlockedReward, error)

	// GetWheelState возвращает пустое состояние, если пользователь ещё не играл.
	GetWheelState(ctx context.Context, userID int64) (WheelState, error)
	SaveWheelState(ctx context.Context, w WheelState) error
	// PruneWheelSpins удаляет дневные счётчики с датой строго раньше before.
	PruneWheelSpins(ctx context.Context, before string) (int, error)

	// InTx выполняет fn атомарно: при ошибке изменения fn не сохраняются.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
}

// FindTask ищет задачу по ID в срезе.
func FindTask(tasks []Task, id int64) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
