// Package tasks (streak.go) содержит правила дневного сброса и серий.
package tasks

import "serotonyl.ru/mainquest/internal/store"

// ResetIfNewDay обнуляет прогресс дневной цели, если последнее продвижение
// было не сегодня. Серия и даты не меняются.
// Возвращает true, если задача изменилась.
func ResetIfNewDay(t *store.Task, today string) bool {
	if !t.IsDailyGoal {
		return false
	}
	if t.LastCompletedDate != today && t.DailyProgress > 0 {
		t.DailyProgress = 0
		return true
	}
	return false
}

// NextStreak вычисляет серию в момент достижения цели.
// t: состояние задачи ДО продвижения.
//
// Опорная дата: день предыдущего достижения (GoalMetDate). У старых записей
// её нет, тогда при ненулевой серии опорой служит LastCompletedDate.
//
// Правила:
//   - опора вчера → серия + 1
//   - опора сегодня → серия без изменений
//   - иначе → 1
func NextStreak(t store.Task, today, yesterday string) int {
	ref := t.GoalMetDate
	if ref == "" && t.StreakCount > 0 {
		ref = t.LastCompletedDate
	}

	switch ref {
	case yesterday:
		return t.StreakCount + 1
	case today:
		if t.StreakCount == 0 {
			return 1
		}
		return t.StreakCount
	default:
		return 1
	}
}
