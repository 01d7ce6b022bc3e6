package report

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
)

// anchor: пятница 21.06.2024, 18:00.
var anchor = time.Date(2024, 6, 21, 18, 0, 0, 0, time.UTC)

func sample() (store.User, []store.Task, []store.TaskHistory) {
	user := store.User{ID: 1, Username: "ana", XP: 260}
	tasks := []store.Task{
		{ID: 1, UserID: 1, Title: "Završni rad", Category: "Učenje", IsCompleted: true, XPReward: 60, DailyTarget: 1},
		{ID: 2, UserID: 1, Title: "Trčanje", Category: "Fitness", IsDailyGoal: true, DailyTarget: 1, DailyProgress: 1, XPReward: 38, StreakCount: 4},
		{ID: 3, UserID: 1, Title: "Usisati", XPReward: 30, DailyTarget: 1},
		{ID: 4, UserID: 1, Title: "Skripta", Category: "Učenje", IsCompleted: true, XPReward: 60, DailyTarget: 1},
	}
	history := []store.TaskHistory{
		{ID: 1, TaskID: 1, UserID: 1, CompletedAt: "2024-06-01 09:00:00"},
		{ID: 2, TaskID: 2, UserID: 1, CompletedAt: "2024-06-20 07:15:00"},
		{ID: 3, TaskID: 4, UserID: 1, CompletedAt: "2024-06-21 08:00:00"},
		{ID: 4, TaskID: 2, UserID: 1, CompletedAt: "2024-06-21 07:30:00"},
	}
	return user, tasks, history
}

func TestFilterByPeriod(t *testing.T) {
	history := []store.TaskHistory{
		{ID: 1, CompletedAt: "2024-06-20 10:00:00"},
		{ID: 2, CompletedAt: "2024-06-01 10:00:00"},
	}
	got, err := filterByPeriod(history, PeriodLast7, anchor, time.Monday)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("last 7 days = %+v", got)
	}

	_, _, sampleHistory := sample()
	tests := []struct {
		period  Period
		weekday time.Weekday
		want    int
	}{
		{PeriodAll, time.Monday, 4},
		{PeriodToday, time.Monday, 2},
		{PeriodThisWeek, time.Monday, 3},
		{PeriodThisWeek, time.Friday, 2},
		{PeriodThisMonth, time.Monday, 4},
		{PeriodLast30, time.Monday, 4},
	}
	for _, tt := range tests {
		got, err := filterByPeriod(sampleHistory, tt.period, anchor, tt.weekday)
		if err != nil {
			t.Fatalf("%s: %v", tt.period, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s (week from %s) = %d rows, want %d", tt.period, tt.weekday, len(got), tt.want)
		}
	}

	if _, err := filterByPeriod(history, "Prošle godine", anchor, time.Monday); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("unknown period err = %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]Period{
		"7d":              PeriodLast7,
		"Week":            PeriodThisWeek,
		"Zadnjih 30 dana": PeriodLast30,
		"danas":           PeriodToday,
		"all":             PeriodAll,
	}
	for in, want := range tests {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePeriod("year"); !errors.Is(err, common.ErrUnknownPeriod) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerate(t *testing.T) {
	user, tasks, history := sample()
	r, err := Generate(user, tasks, history, PeriodAll, anchor, DefaultOptions)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if r.ReportDate != "21.06.2024" || r.Period != PeriodAll {
		t.Fatalf("header = %q %q", r.ReportDate, r.Period)
	}
	if r.User != (UserInfo{Username: "ana", Level: 3, XP: 260, XPToNext: 240, JoinedNote: "Registriran korisnik"}) {
		t.Fatalf("user = %+v", r.User)
	}

	ts := r.Tasks
	if ts.TotalTasks != 4 || ts.CompletedTasks != 2 || ts.CompletionRate != 50 {
		t.Fatalf("task summary = %+v", ts)
	}
	if ts.TotalDailyGoals != 1 || ts.CompletedDailyGoals != 1 || ts.DailyGoalRate != 100 {
		t.Fatalf("daily summary = %+v", ts)
	}
	if ts.XPEarned != 196 || ts.AverageXP != 49 {
		t.Fatalf("xp summary = %+v", ts)
	}

	names := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		names[i] = c.Name
	}
	if !reflect.DeepEqual(names, []string{"Učenje", "Fitness", "Ostalo"}) {
		t.Fatalf("categories = %v", names)
	}
	if c := r.Categories[0]; c.TotalTasks != 2 || c.CompletedTasks != 2 || c.XP != 120 || c.AverageXP != 60 {
		t.Fatalf("Učenje = %+v", c)
	}

	p := r.Progress
	if p.Today != 2 || p.ThisWeek != 3 || p.ThisMonth != 4 || p.BestDay != "21.06.2024" || p.BestDayCount != 2 {
		t.Fatalf("progress = %+v", p)
	}

	s := r.Streaks
	if s.Current != 4 || s.Longest != 4 || s.Trend != "Odličan trend!" {
		t.Fatalf("streaks = %+v", s)
	}
	if !reflect.DeepEqual(s.Categories, []CategoryStreak{{Category: "Fitness", Streak: 4}}) {
		t.Fatalf("streak categories = %+v", s.Categories)
	}

	wantRecs := []string{
		"📚 Pokušajte dodati zadatke u kategoriju 'Fitness'",
		"🚀 Dodajte zahtjevnije zadatke za više XP bodova!",
	}
	if !reflect.DeepEqual(r.Recommendations, wantRecs) {
		t.Fatalf("recommendations = %v", r.Recommendations)
	}

	if len(r.Activities) != 4 {
		t.Fatalf("activities = %d", len(r.Activities))
	}
	first := r.Activities[0]
	if first != (Activity{Date: "21.06.2024", Time: "08:00", TaskName: "Skripta", Category: "Učenje", XP: 60, TaskType: "Navika"}) {
		t.Fatalf("first activity = %+v", first)
	}
	if r.Activities[1].TaskType != "Dnevni cilj" {
		t.Fatalf("second activity = %+v", r.Activities[1])
	}
}

func TestGenerateEmptyHistory(t *testing.T) {
	user, tasks, _ := sample()
	r, err := Generate(user, tasks, nil, PeriodToday, anchor, DefaultOptions)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(r.Recommendations) != 1 || r.Recommendations[0] != "🎯 Počnite s prvim zadatkom da vidite svoj napredak!" {
		t.Fatalf("recommendations = %v", r.Recommendations)
	}
	if r.Progress.BestDay != "Nema podataka" || r.Progress.BestDayCount != 0 {
		t.Fatalf("progress = %+v", r.Progress)
	}
	if len(r.Activities) != 0 {
		t.Fatalf("activities = %+v", r.Activities)
	}
}

func TestRecommendationsPraise(t *testing.T) {
	tasks := []store.Task{{ID: 1, Title: "Projekt", Category: "Posao", IsCompleted: true, XPReward: 70, DailyTarget: 1}}
	var history []store.TaskHistory
	for i := 0; i < 10; i++ {
		history = append(history, store.TaskHistory{ID: int64(i + 1), TaskID: 1, CompletedAt: "2024-06-20 12:00:00"})
	}
	got := recommendations(tasks, history, map[int64]store.Task{1: tasks[0]}, anchor)
	want := []string{"🏆 Odličan rad! Završili ste 10 zadataka!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("recommendations = %v", got)
	}

	// Ничего не сработало: остаётся общее сообщение
	got = recommendations(tasks, history[:3], map[int64]store.Task{1: tasks[0]}, anchor)
	if len(got) != 1 || got[0] != "✨ Nastavi odličan rad! Vaš napredak je impresivan!" {
		t.Fatalf("fallback = %v", got)
	}
}

func TestStreakTrend(t *testing.T) {
	tests := []struct {
		streaks []int
		want    string
	}{
		{nil, "Potrebno poboljšanje"},
		{[]int{0, 0}, "Potrebno poboljšanje"},
		{[]int{3, 1}, "Odličan trend!"},
	}
	for _, tt := range tests {
		var tasks []store.Task
		for i, s := range tt.streaks {
			tasks = append(tasks, store.Task{ID: int64(i + 1), IsDailyGoal: true, DailyTarget: 1, StreakCount: s})
		}
		if got := streakAnalysis(tasks).Trend; got != tt.want {
			t.Errorf("trend(%v) = %q, want %q", tt.streaks, got, tt.want)
		}
	}
}

func TestActivitiesLimit(t *testing.T) {
	byID := map[int64]store.Task{1: {ID: 1, Title: "A", XPReward: 10}}
	history := []store.TaskHistory{
		{TaskID: 1, CompletedAt: "2024-06-19 10:00:00"},
		{TaskID: 99, CompletedAt: "2024-06-21 10:00:00"},
		{TaskID: 1, CompletedAt: "2024-06-20 10:00:00"},
		{TaskID: 1, CompletedAt: "2024-06-18"},
	}
	got := activities(history, byID, 3)
	if len(got) != 2 {
		t.Fatalf("activities = %+v", got)
	}
	if got[0].Date != "20.06.2024" || got[1].Date != "19.06.2024" {
		t.Fatalf("order = %+v", got)
	}

	all := activities(history, byID, 50)
	last := all[len(all)-1]
	if last.Date != "2024-06-18" || last.Time != "N/A" || last.Category != "Ostalo" {
		t.Fatalf("unparsable row = %+v", last)
	}
}
