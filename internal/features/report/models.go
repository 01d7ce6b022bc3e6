// Package report собирает статистику пользователя за период и выгружает её
// в текстовый отчёт, CSV и короткий сводный отчёт.
// models.go описывает структуру отчёта.
package report

import (
	"strings"
	"time"

	"serotonyl.ru/mainquest/internal/common"
)

// Period: период отчёта. Значения совпадают с подписями в отчёте.
type Period string

const (
	PeriodAll       Period = "Sveukupno"
	PeriodToday     Period = "Danas"
	PeriodThisWeek  Period = "Ovaj tjedan"
	PeriodThisMonth Period = "Ovaj mjesec"
	PeriodLast7     Period = "Zadnjih 7 dana"
	PeriodLast30    Period = "Zadnjih 30 dana"
)

// Periods: все периоды в порядке показа.
var Periods = []Period{PeriodAll, PeriodToday, PeriodThisWeek, PeriodThisMonth, PeriodLast7, PeriodLast30}

// periodAliases: короткие имена для командной строки.
var periodAliases = map[string]Period{
	"all":   PeriodAll,
	"today": PeriodToday,
	"week":  PeriodThisWeek,
	"month": PeriodThisMonth,
	"7d":    PeriodLast7,
	"30d":   PeriodLast30,
}

// ParsePeriod принимает подпись периода или короткое имя (all, today, week, month, 7d, 30d).
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if p, ok := periodAliases[strings.ToLower(s)]; ok {
		return p, nil
	}
	for _, p := range Periods {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", common.ErrUnknownPeriod
}

// Options: настройки построения отчёта.
type Options struct {
	FirstWeekday  time.Weekday
	ActivityLimit int
}

// DefaultOptions: неделя с понедельника, 50 последних активностей.
var DefaultOptions = Options{FirstWeekday: time.Monday, ActivityLimit: 50}

// Report: полный отчёт.
type Report struct {
	ReportDate      string // 02.01.2006
	Period          Period
	User            UserInfo
	Tasks           TaskSummary
	Categories      []CategoryStats
	Progress        ProgressAnalysis
	Streaks         StreakAnalysis
	Recommendations []string
	Activities      []Activity
}

// UserInfo: сведения о пользователе.
type UserInfo struct {
	Username   string
	Level      int
	XP         int
	XPToNext   int
	JoinedNote string
}

// TaskSummary: сводка по задачам.
type TaskSummary struct {
	TotalTasks          int
	CompletedTasks      int
	CompletionRate      float64 // Проценты
	TotalDailyGoals     int
	CompletedDailyGoals int
	DailyGoalRate       float64 // Проценты
	XPEarned            int     // По истории за период
	AverageXP           float64 // На одну строку истории
}

// CategoryStats: статистика одной категории.
type CategoryStats struct {
	Name           string
	TotalTasks     int
	CompletedTasks int
	CompletionRate float64
	XP             int
	AverageXP      float64
}

// ProgressAnalysis: динамика выполнения.
type ProgressAnalysis struct {
	Today         int
	ThisWeek      int
	ThisMonth     int
	WeeklyAverage float64 // ThisWeek / 7
	MonthlyAvg    float64 // ThisMonth / 30
	BestDay       string  // 02.01.2006 или "Nema podataka"
	BestDayCount  int
}

// CategoryStreak: лучшая серия в категории.
type CategoryStreak struct {
	Category string
	Streak   int
}

// StreakAnalysis: серии дневных целей.
type StreakAnalysis struct {
	Current    int
	Longest    int
	Categories []CategoryStreak
	Trend      string
}

// Activity: одна запись истории с данными задачи.
type Activity struct {
	Date     string // 02.01.2006
	Time     string // 15:04 или "N/A"
	TaskName string
	Category string
	XP       int
	TaskType string // "Dnevni cilj" или "Navika"
}
