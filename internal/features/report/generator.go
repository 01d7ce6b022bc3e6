// Package report (generator.go) сворачивает задачи и историю в отчёт.
// Генерация чистая: только входные данные и момент now.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/level"
	"serotonyl.ru/mainquest/internal/store"
)

const (
	uncategorized = "Ostalo"
	noData        = "Nema podataka"
)

// Generate строит отчёт за период.
// Даты сравниваются как строки 2006-01-02, now задаёт «сегодня».
func Generate(user store.User, tasks []store.Task, history []store.TaskHistory, period Period, now time.Time, opts Options) (Report, error) {
	if opts.ActivityLimit <= 0 {
		opts.ActivityLimit = DefaultOptions.ActivityLimit
	}

	filtered, err := filterByPeriod(history, period, now, opts.FirstWeekday)
	if err != nil {
		return Report{}, err
	}

	byID := make(map[int64]store.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	return Report{
		ReportDate:      now.Format(common.DisplayDateLayout),
		Period:          period,
		User:            userInfo(user),
		Tasks:           taskSummary(tasks, filtered, byID),
		Categories:      categoryStats(tasks, filtered, byID),
		Progress:        progressAnalysis(filtered, now, opts.FirstWeekday),
		Streaks:         streakAnalysis(tasks),
		Recommendations: recommendations(tasks, filtered, byID, now),
		Activities:      activities(filtered, byID, opts.ActivityLimit),
	}, nil
}

// filterByPeriod оставляет строки истории, попавшие в период.
func filterByPeriod(history []store.TaskHistory, period Period, now time.Time, firstWeekday time.Weekday) ([]store.TaskHistory, error) {
	var keep func(completedAt string) bool

	switch period {
	case PeriodAll:
		return history, nil
	case PeriodToday:
		today := common.FormatDate(now)
		keep = func(at string) bool { return strings.HasPrefix(at, today) }
	case PeriodThisWeek:
		keep = since(common.StartOfWeek(now, firstWeekday))
	case PeriodThisMonth:
		keep = since(common.StartOfMonth(now))
	case PeriodLast7:
		keep = since(common.DaysAgo(now, 7))
	case PeriodLast30:
		keep = since(common.DaysAgo(now, 30))
	default:
		return nil, fmt.Errorf("период %q: %w", period, common.ErrUnknownPeriod)
	}

	var out []store.TaskHistory
	for _, h := range history {
		if keep(h.CompletedAt) {
			out = append(out, h)
		}
	}
	return out, nil
}

func since(start string) func(string) bool {
	return func(at string) bool { return at >= start }
}

func userInfo(u store.User) UserInfo {
	info := level.Describe(u.XP)
	return UserInfo{
		Username:   u.Username,
		Level:      info.Level,
		XP:         u.XP,
		XPToNext:   info.XPToNext,
		JoinedNote: "Registriran korisnik",
	}
}

func taskSummary(tasks []store.Task, history []store.TaskHistory, byID map[int64]store.Task) TaskSummary {
	var s TaskSummary
	s.TotalTasks = len(tasks)
	for _, t := range tasks {
		if t.IsCompleted {
			s.CompletedTasks++
		}
		if t.IsDailyGoal {
			s.TotalDailyGoals++
			if t.DailyProgress >= t.DailyTarget {
				s.CompletedDailyGoals++
			}
		}
	}
	s.CompletionRate = percent(s.CompletedTasks, s.TotalTasks)
	s.DailyGoalRate = percent(s.CompletedDailyGoals, s.TotalDailyGoals)

	s.XPEarned = historyXP(history, byID)
	if len(history) > 0 {
		s.AverageXP = float64(s.XPEarned) / float64(len(history))
	}
	return s
}

// categoryStats группирует задачи по категории в порядке первого появления
// и сортирует по числу выполненных (устойчиво).
func categoryStats(tasks []store.Task, history []store.TaskHistory, byID map[int64]store.Task) []CategoryStats {
	order, groups := groupByCategory(tasks)

	historyByCat := make(map[string][]store.TaskHistory)
	for _, h := range history {
		if t, ok := byID[h.TaskID]; ok {
			cat := categoryOf(t)
			historyByCat[cat] = append(historyByCat[cat], h)
		}
	}

	out := make([]CategoryStats, 0, len(order))
	for _, name := range order {
		group := groups[name]
		cs := CategoryStats{Name: name, TotalTasks: len(group)}
		for _, t := range group {
			if t.IsCompleted {
				cs.CompletedTasks++
			}
		}
		cs.CompletionRate = percent(cs.CompletedTasks, cs.TotalTasks)

		rows := historyByCat[name]
		cs.XP = historyXP(rows, byID)
		if len(rows) > 0 {
			cs.AverageXP = float64(cs.XP) / float64(len(rows))
		}
		out = append(out, cs)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedTasks > out[j].CompletedTasks })
	return out
}

func progressAnalysis(history []store.TaskHistory, now time.Time, firstWeekday time.Weekday) ProgressAnalysis {
	today := common.FormatDate(now)
	weekStart := common.StartOfWeek(now, firstWeekday)
	monthStart := common.StartOfMonth(now)

	var p ProgressAnalysis
	var days []string
	perDay := make(map[string]int)
	for _, h := range history {
		at := h.CompletedAt
		if strings.HasPrefix(at, today) {
			p.Today++
		}
		if at >= weekStart {
			p.ThisWeek++
		}
		if at >= monthStart {
			p.ThisMonth++
		}

		day := datePart(at)
		if _, seen := perDay[day]; !seen {
			days = append(days, day)
		}
		perDay[day]++
	}
	p.WeeklyAverage = float64(p.ThisWeek) / 7
	p.MonthlyAvg = float64(p.ThisMonth) / 30

	p.BestDay = noData
	best := ""
	for _, d := range days {
		if perDay[d] > p.BestDayCount {
			best, p.BestDayCount = d, perDay[d]
		}
	}
	if p.BestDayCount > 0 {
		p.BestDay = common.ToDisplayDate(best)
	}
	return p
}

func streakAnalysis(tasks []store.Task) StreakAnalysis {
	var goals []store.Task
	for _, t := range tasks {
		if t.IsDailyGoal {
			goals = append(goals, t)
		}
	}

	var s StreakAnalysis
	for _, g := range goals {
		s.Current = max(s.Current, g.StreakCount)
	}
	s.Longest = s.Current

	order, groups := groupByCategory(goals)
	for _, name := range order {
		best := 0
		for _, g := range groups[name] {
			best = max(best, g.StreakCount)
		}
		s.Categories = append(s.Categories, CategoryStreak{Category: name, Streak: best})
	}

	current, longest := float64(s.Current), float64(s.Longest)
	switch {
	case s.Current == 0:
		s.Trend = "Potrebno poboljšanje"
	case current >= longest*0.8:
		s.Trend = "Odličan trend!"
	case current >= longest*0.5:
		s.Trend = "Dobar trend"
	default:
		s.Trend = "Umjeren trend"
	}
	return s
}

func recommendations(tasks []store.Task, history []store.TaskHistory, byID map[int64]store.Task, now time.Time) []string {
	if len(history) == 0 {
		return []string{"🎯 Počnite s prvim zadatkom da vidite svoj napredak!"}
	}

	var out []string

	// Первая категория без единого выполненного задания
	order, groups := groupByCategory(tasks)
	for _, name := range order {
		done := 0
		for _, t := range groups[name] {
			if t.IsCompleted {
				done++
			}
		}
		if done == 0 {
			out = append(out, fmt.Sprintf("📚 Pokušajte dodati zadatke u kategoriju '%s'", name))
			break
		}
	}

	recent := 0
	for _, h := range history {
		at, err := time.ParseInLocation(common.TimestampLayout, h.CompletedAt, now.Location())
		if err != nil {
			continue
		}
		if int64(now.Sub(at)/(24*time.Hour)) <= 3 {
			recent++
		}
	}
	if recent < 3 {
		out = append(out, "⚡ Pokušajte biti aktivniji - cilj je barem jedan zadatak dnevno!")
	}

	known, xp := 0, 0
	for _, h := range history {
		if t, ok := byID[h.TaskID]; ok {
			known++
			xp += t.XPReward
		}
	}
	if known == 0 || float64(xp)/float64(known) < 50 {
		out = append(out, "🚀 Dodajte zahtjevnije zadatke za više XP bodova!")
	}

	if len(history) >= 10 {
		out = append(out, fmt.Sprintf("🏆 Odličan rad! Završili ste %d zadataka!", len(history)))
	}

	if len(out) == 0 {
		out = append(out, "✨ Nastavi odličan rad! Vaš napredak je impresivan!")
	}
	return out
}

// activities возвращает последние limit записей истории, новые первыми.
// Строки без задачи пропускаются.
func activities(history []store.TaskHistory, byID map[int64]store.Task, limit int) []Activity {
	sorted := append([]store.TaskHistory(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CompletedAt > sorted[j].CompletedAt })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]Activity, 0, len(sorted))
	for _, h := range sorted {
		t, ok := byID[h.TaskID]
		if !ok {
			continue
		}
		a := Activity{
			Date:     datePart(h.CompletedAt),
			Time:     "N/A",
			TaskName: t.Title,
			Category: categoryOf(t),
			XP:       t.XPReward,
			TaskType: "Navika",
		}
		if at, err := time.Parse(common.TimestampLayout, h.CompletedAt); err == nil {
			a.Date = at.Format(common.DisplayDateLayout)
			a.Time = at.Format(common.DisplayTimeLayout)
		}
		if t.IsDailyGoal {
			a.TaskType = "Dnevni cilj"
		}
		out = append(out, a)
	}
	return out
}

func groupByCategory(tasks []store.Task) ([]string, map[string][]store.Task) {
	var order []string
	groups := make(map[string][]store.Task)
	for _, t := range tasks {
		cat := categoryOf(t)
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], t)
	}
	return order, groups
}

func categoryOf(t store.Task) string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return uncategorized
}

func historyXP(history []store.TaskHistory, byID map[int64]store.Task) int {
	xp := 0
	for _, h := range history {
		if t, ok := byID[h.TaskID]; ok {
			xp += t.XPReward
		}
	}
	return xp
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// datePart возвращает дату 2006-01-02 из метки времени истории.
func datePart(at string) string {
	if len(at) < len(common.DateLayout) {
		return at
	}
	return at[:len(common.DateLayout)]
}
