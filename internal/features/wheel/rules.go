// Package wheel (rules.go) содержит чистые правила колеса.
package wheel

import (
	"strconv"
	"strings"
	"unicode"

	"serotonyl.ru/mainquest/internal/store"
)

// baselineBest: с чем сравнивается первый спин при поиске лучшего.
const baselineBest = "5 XP"

// XpFor возвращает XP, который приносит исход.
//
// Примеры:
//
//	XpFor("20 XP")      → 20
//	XpFor("Lucky Day!") → LuckyDayXP
//	XpFor("Bonus Turn") → 0
func (o Options) XpFor(label string) int {
	switch {
	case strings.Contains(label, "XP"):
		return digits(label)
	case label == LabelLuckyDay:
		return o.LuckyDayXP
	default:
		return 0
	}
}

// spinValue: ценность исхода для выбора лучшего спина.
func spinValue(label string) int {
	switch {
	case strings.Contains(label, "XP"):
		return digits(label)
	case label == LabelLuckyDay:
		return 50
	case label == LabelBonusTurn:
		return 25
	default:
		return 0
	}
}

// digits собирает все цифры строки в число. Нет цифр: 0.
func digits(s string) int {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// Remaining возвращает число оставшихся на сегодня спинов.
func (o Options) Remaining(w store.WheelState, today string) int {
	return max(0, o.DailySpins-w.DailySpins[today])
}

// Record применяет исход спина к состоянию колеса.
// Бонусный ход не расходует дневной лимит и не входит в totalSpins.
func Record(w *store.WheelState, label string, xpWon int, today, yesterday string) {
	if w.DailySpins == nil {
		w.DailySpins = make(map[string]int)
	}

	if label == LabelBonusTurn {
		w.TotalBonusTurns++
	} else {
		w.DailySpins[today]++
		w.TotalSpins++
	}
	w.TotalXPWon += xpWon

	best := w.BestSpin
	if best == "" {
		best = baselineBest
	}
	if spinValue(label) > spinValue(best) {
		w.BestSpin = label
	}

	switch w.LastPlayDate {
	case "":
		w.StreakDays = 1
	case today:
	case yesterday:
		w.StreakDays++
	default:
		w.StreakDays = 1
	}
	w.LastPlayDate = today
}

// Achievements возвращает все достигнутые пороги.
func Achievements(w store.WheelState, xp int) []string {
	var out []string

	if w.TotalSpins >= 100 {
		out = append(out, "🎡 Spin Master - 100 spins!")
	}
	if w.TotalSpins >= 50 {
		out = append(out, "🎲 Wheel Warrior - 50 spins!")
	}
	if w.TotalSpins >= 10 {
		out = append(out, "🎯 Beginner Spinner - 10 spins!")
	}

	if xp >= 1000 {
		out = append(out, "⭐ XP Legend - 1000+ XP!")
	}
	if xp >= 500 {
		out = append(out, "💎 XP Expert - 500+ XP!")
	}
	if xp >= 100 {
		out = append(out, "🏆 XP Novice - 100+ XP!")
	}

	if w.StreakDays >= 7 {
		out = append(out, "🔥 Week Warrior - 7 day streak!")
	}
	if w.StreakDays >= 3 {
		out = append(out, "📅 Daily Player - 3 day streak!")
	}

	return out
}
