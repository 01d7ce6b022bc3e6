// Package tasks управляет задачами и дневными целями пользователя.
// models.go описывает входные данные и результаты операций.
package tasks

import (
	"serotonyl.ru/mainquest/internal/features/economy"
	"serotonyl.ru/mainquest/internal/store"
)

// TaskInput: поля задачи, которые задаёт пользователь при создании и правке.
type TaskInput struct {
	Title       string
	Description string
	Category    string
	DueDate     string // 2006-01-02, у дневных целей всегда пусто
	IsDailyGoal bool
	DailyTarget int // Для обычных задач игнорируется (= 1)
}

// ToggleResult: результат переключения обычной задачи.
type ToggleResult struct {
	Task   store.Task
	Change economy.Change
}

// Outcome: исход продвижения дневной цели.
type Outcome int

const (
	// OutcomeProgressed: +1 к прогрессу, цель ещё не достигнута
	OutcomeProgressed Outcome = iota
	// OutcomeGoalCompleted: цель достигнута, XP начислен
	OutcomeGoalCompleted
	// OutcomeAlreadyComplete: цель уже выполнена сегодня, ничего не изменилось
	OutcomeAlreadyComplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProgressed:
		return "progressed"
	case OutcomeGoalCompleted:
		return "goal_completed"
	case OutcomeAlreadyComplete:
		return "already_complete"
	}
	return "unknown"
}

// AdvanceResult: результат продвижения дневной цели.
type AdvanceResult struct {
	Task    store.Task
	Outcome Outcome
	// Change заполнен только для OutcomeGoalCompleted
	Change *economy.Change
}

// GoalSummary: сводка по дневным целям пользователя.
type GoalSummary struct {
	Completed int // Выполнено сегодня
	Total     int
	MaxStreak int
}
