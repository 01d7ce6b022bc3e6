// Package ui: стили и иконки для вывода в терминал.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	IconQuest   = "🗺️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconUndo    = "↩️"
	IconTrophy  = "🏆"
	IconTarget  = "🎯"
	IconFire    = "🔥"
	IconShop    = "🛒"
	IconWheel   = "🎡"
	IconReport  = "📊"
	IconError   = "🧨"
	IconTrash   = "🗑️"
)

var (
	cPrimary = lipgloss.Color("63")  // синий
	cAccent  = lipgloss.Color("205") // пурпурный
	cGood    = lipgloss.Color("42")  // зелёный
	cWarn    = lipgloss.Color("214") // оранжевый
	cBad     = lipgloss.Color("196") // красный
	cMuted   = lipgloss.Color("244") // серый
	cGold    = lipgloss.Color("220") // золотой
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

// Heading: заголовок с иконкой.
func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

// LabelValue форматирует строку вида "Метка: значение".
func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// ProgressBar рисует полосу прогресса ширины width для доли p из [0, 1].
//
// Пример:
//
//	ProgressBar(0.5, 10) → "█████░░░░░"
func ProgressBar(p float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(p*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

// Check: отметка выполнения.
func Check(done bool) string {
	if done {
		return Good.Render("[x]")
	}
	return Muted.Render("[ ]")
}
