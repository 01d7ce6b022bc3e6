// Package report (export.go) выгружает отчёт в текст, CSV и короткий сводный отчёт.
// Дробные числа печатаются по-хорватски (десятичная запятая).
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"serotonyl.ru/mainquest/internal/common"
)

// Format: формат выгрузки.
type Format string

const (
	FormatText    Format = "text"
	FormatCSV     Format = "csv"
	FormatSummary Format = "summary"
)

// ParseFormat разбирает имя формата.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatSummary:
		return f, nil
	}
	return "", common.ErrUnknownFormat
}

// CSVHeader: первая строка CSV.
const CSVHeader = "Datum,Vrijeme,Naziv_zadatka,Kategorija,XP,Tip_zadatka"

const (
	heavyRule = "═══════════════════════════════════════════════════════"
	lightRule = "─────────────────────────────────────────────────────"
	shortRule = "═══════════════════════════════"
)

// Write выгружает отчёт в заданном формате.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatText:
		return WriteText(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatSummary:
		return WriteSummary(w, r)
	}
	return common.ErrUnknownFormat
}

// FileName возвращает имя файла выгрузки.
//
// Примеры:
//
//	FileName(FormatText, t)    → MainQuest_Izvještaj_2024-06-21_10-30-00.txt
//	FileName(FormatCSV, t)     → MainQuest_Aktivnosti_2024-06-21_10-30-00.csv
//	FileName(FormatSummary, t) → MainQuest_Sažetak_2024-06-21_10-30-00.txt
func FileName(f Format, now time.Time) string {
	ts := now.Format(common.FileStampLayout)
	switch f {
	case FormatCSV:
		return "MainQuest_Aktivnosti_" + ts + ".csv"
	case FormatSummary:
		return "MainQuest_Sažetak_" + ts + ".txt"
	default:
		return "MainQuest_Izvještaj_" + ts + ".txt"
	}
}

// Save записывает отчёт в файл в каталоге dir и возвращает путь к нему.
// Существующий файл с тем же именем перезаписывается.
func Save(dir string, f Format, r Report, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(f, now))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	if err := Write(file, f, r); err != nil {
		file.Close()
		return "", fmt.Errorf("ошибка записи отчёта: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("ошибка закрытия файла %s: %w", path, err)
	}
	return path, nil
}

// lines копит строки отчёта и запоминает первую ошибку записи.
type lines struct {
	w   *bufio.Writer
	p   *message.Printer
	err error
}

func newLines(w io.Writer) *lines {
	return &lines{w: bufio.NewWriter(w), p: message.NewPrinter(language.Croatian)}
}

func (l *lines) add(format string, args ...any) {
	if l.err != nil {
		return
	}
	if _, err := fmt.Fprintf(l.w, format, args...); err != nil {
		l.err = err
		return
	}
	l.err = l.w.WriteByte('\n')
}

func (l *lines) blank() { l.add("") }

// dec форматирует число с одним знаком после запятой.
func (l *lines) dec(v float64) string {
	return l.p.Sprintf("%.1f", v)
}

func (l *lines) flush() error {
	if l.err != nil {
		return l.err
	}
	return l.w.Flush()
}

// WriteText пишет полный текстовый отчёт.
func WriteText(w io.Writer, r Report) error {
	l := newLines(w)

	l.add(heavyRule)
	l.add("                 📊 MAIN QUEST IZVJEŠTAJ")
	l.add(heavyRule)
	l.blank()
	l.add("📅 Datum generiranja: %s", r.ReportDate)
	l.add("⏰ Period: %s", r.Period)
	l.blank()

	l.add("👤 KORISNIČKE INFORMACIJE")
	l.add(lightRule)
	l.add("Korisničko ime: %s", r.User.Username)
	l.add("Trenutni level: %d", r.User.Level)
	l.add("Ukupno XP: %d", r.User.XP)
	l.add("XP do sljedećeg levela: %d", r.User.XPToNext)
	l.add("Datum pridruživanja: %s", r.User.JoinedNote)
	l.blank()

	t := r.Tasks
	l.add("📋 SAŽETAK ZADATAKA")
	l.add(lightRule)
	l.add("Ukupno zadataka: %d", t.TotalTasks)
	l.add("Završenih zadataka: %d", t.CompletedTasks)
	l.add("Stopa završetka: %s%%", l.dec(t.CompletionRate))
	l.add("Ukupno dnevnih ciljeva: %d", t.TotalDailyGoals)
	l.add("Završenih dnevnih ciljeva: %d", t.CompletedDailyGoals)
	l.add("Stopa dnevnih ciljeva: %s%%", l.dec(t.DailyGoalRate))
	l.add("Ukupno XP zarada: %d", t.XPEarned)
	l.add("Prosjek XP po zadatku: %s", l.dec(t.AverageXP))
	l.blank()

	l.add("📊 ANALIZA PO KATEGORIJAMA")
	l.add(lightRule)
	for _, c := range r.Categories {
		l.add("%s:", c.Name)
		l.add("  • Ukupno: %d | Završeno: %d", c.TotalTasks, c.CompletedTasks)
		l.add("  • Stopa: %s%% | XP: %d", l.dec(c.CompletionRate), c.XP)
		l.add("  • Prosjek XP: %s", l.dec(c.AverageXP))
		l.blank()
	}

	p := r.Progress
	l.add("📈 ANALIZA NAPRETKA")
	l.add(lightRule)
	l.add("Danas završeno: %d", p.Today)
	l.add("Ovaj tjedan završeno: %d", p.ThisWeek)
	l.add("Ovaj mjesec završeno: %d", p.ThisMonth)
	l.add("Tjedni prosjek: %s", l.dec(p.WeeklyAverage))
	l.add("Mjesečni prosjek: %s", l.dec(p.MonthlyAvg))
	l.add("Najbolji dan: %s (%d zadataka)", p.BestDay, p.BestDayCount)
	l.blank()

	s := r.Streaks
	l.add("🔥 ANALIZA STREAKOVA")
	l.add(lightRule)
	l.add("Trenutni streak: %d dana", s.Current)
	l.add("Najduži streak: %d dana", s.Longest)
	l.add("Trend: %s", s.Trend)
	l.add("Streakovi po kategorijama:")
	for _, c := range s.Categories {
		l.add("  • %s: %d dana", c.Category, c.Streak)
	}
	l.blank()

	l.add("💡 PREPORUKE")
	l.add(lightRule)
	for _, rec := range r.Recommendations {
		l.add("• %s", rec)
	}
	l.blank()

	l.add("📝 DETALJNE AKTIVNOSTI (zadnjih %d)", len(r.Activities))
	l.add(lightRule)
	for _, a := range r.Activities {
		l.add("%s %s | %s", a.Date, a.Time, a.TaskName)
		l.add("  Kategorija: %s | Tip: %s", a.Category, a.TaskType)
		l.add("  XP: +%d", a.XP)
		l.blank()
	}

	l.add(heavyRule)
	l.add("Generirano iz Main Quest aplikacije")
	l.add(heavyRule)

	return l.flush()
}

// WriteCSV пишет список активностей. Строковые поля в кавычках, XP: число.
func WriteCSV(w io.Writer, r Report) error {
	l := newLines(w)
	l.add("%s", CSVHeader)
	for _, a := range r.Activities {
		l.add("%s,%s,%s,%s,%d,%s",
			quote(a.Date), quote(a.Time), quote(a.TaskName), quote(a.Category), a.XP, quote(a.TaskType))
	}
	return l.flush()
}

// quote заключает поле в кавычки, удваивая кавычки внутри.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteSummary пишет короткий сводный отчёт.
func WriteSummary(w io.Writer, r Report) error {
	l := newLines(w)

	l.add("📊 MAIN QUEST - KRATKI SAŽETAK")
	l.add(shortRule)
	l.add("Korisnik: %s", r.User.Username)
	l.add("Period: %s", r.Period)
	l.add("Datum: %s", r.ReportDate)
	l.blank()

	l.add("🎯 KLJUČNE STATISTIKE:")
	l.add("• Level: %d (%d XP)", r.User.Level, r.User.XP)
	l.add("• Završeno zadataka: %d/%d", r.Tasks.CompletedTasks, r.Tasks.TotalTasks)
	l.add("• Stopa uspjeha: %s%%", l.dec(r.Tasks.CompletionRate))
	l.add("• Ukupno XP: %d", r.Tasks.XPEarned)
	l.add("• Trenutni streak: %d dana", r.Streaks.Current)
	l.blank()

	l.add("📈 NAPREDAK:")
	l.add("• Danas: %d", r.Progress.Today)
	l.add("• Ovaj tjedan: %d", r.Progress.ThisWeek)
	l.add("• Ovaj mjesec: %d", r.Progress.ThisMonth)
	l.blank()

	l.add("🏆 TOP KATEGORIJA:")
	if len(r.Categories) > 0 {
		top := r.Categories[0]
		l.add("• %s: %d zadataka", top.Name, top.CompletedTasks)
	}
	l.blank()

	l.add("💡 GLAVNA PREPORUKA:")
	main := "Nastavi odličan rad!"
	if len(r.Recommendations) > 0 {
		main = r.Recommendations[0]
	}
	l.add("• %s", main)

	return l.flush()
}
