// Package common (pluralize.go) содержит вспомогательные функции
// для склонения хорватских числительных и форматирования XP.
package common

import (
	"fmt"
	"math"
)

// PluralizeDays возвращает правильную форму слова «dan» для числа n.
//
// Правила:
//   - 1, 21, 31 (но НЕ 11) → "dan"
//   - остальные → "dana"
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	if absN%10 == 1 && absN%100 != 11 {
		return "dan"
	}
	return "dana"
}

// PluralizeTasks возвращает форму слова «zadatak».
//
// Правила:
//   - 1, 21 (но НЕ 11) → "zadatak"
//   - 2-4, 22-24 (но НЕ 12-14) → "zadatka"
//   - остальные → "zadataka"
func PluralizeTasks(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "zadatak"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "zadatka"
	}
	return "zadataka"
}

// FormatXPDelta создаёт строку вида "+100 XP" или "-50 XP".
func FormatXPDelta(amount int) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d XP", amount)
	}
	return fmt.Sprintf("%d XP", amount)
}
