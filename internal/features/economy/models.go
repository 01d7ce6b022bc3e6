// Package economy управляет балансом XP пользователя.
// models.go описывает результат изменения баланса.
package economy

// Источники изменения XP: для логов и вызывающего кода.
const (
	SourceTaskDone     = "task_done"     // Обычная задача отмечена выполненной
	SourceTaskUndone   = "task_undone"   // Отметка снята, XP возвращается
	SourceGoalComplete = "goal_complete" // Дневная цель достигнута
	SourceWheel        = "wheel"         // Выигрыш на колесе
	SourceShop         = "shop"          // Покупка в магазине
)

// LevelUp: событие повышения уровня.
type LevelUp struct {
	OldLevel    int
	NewLevel    int
	RewardTitle string // Косметическая награда нового уровня
}

// Change: результат одной операции с балансом.
type Change struct {
	UserID  int64
	Source  string
	Delta   int // Фактическое изменение (с учётом ограничения снизу нулём)
	OldXP   int
	NewXP   int
	LevelUp *LevelUp // nil, если уровень не вырос
}
