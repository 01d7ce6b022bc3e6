package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"serotonyl.ru/mainquest/internal/common"
)

func twoActivities() Report {
	return Report{
		ReportDate: "21.06.2024",
		Period:     PeriodAll,
		Activities: []Activity{
			{Date: "21.06.2024", Time: "08:00", TaskName: `Pročitati "Zločin i kazna"`, Category: "Čitanje", XP: 50, TaskType: "Navika"},
			{Date: "20.06.2024", Time: "07:15", TaskName: "Trčanje, 5 km", Category: "Fitness", XP: 38, TaskType: "Dnevni cilj"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, twoActivities()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != CSVHeader {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[2] != `"20.06.2024","07:15","Trčanje, 5 km","Fitness",38,"Dnevni cilj"` {
		t.Fatalf("row = %q", lines[2])
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if records[1][2] != `Pročitati "Zločin i kazna"` || records[1][4] != "50" {
		t.Fatalf("round trip = %q", records[1])
	}
	if records[2][2] != "Trčanje, 5 km" || records[2][4] != "38" {
		t.Fatalf("round trip = %q", records[2])
	}
}

func TestWriteText(t *testing.T) {
	user, tasks, history := sample()
	r, err := Generate(user, tasks, history, PeriodAll, anchor, DefaultOptions)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"📊 MAIN QUEST IZVJEŠTAJ",
		"📅 Datum generiranja: 21.06.2024",
		"⏰ Period: Sveukupno",
		"Korisničko ime: ana",
		"Ukupno zadataka: 4",
		"Ukupno XP zarada: 196",
		"Učenje:",
		"Najbolji dan: 21.06.2024 (2 zadataka)",
		"  • Fitness: 4 dana",
		"📝 DETALJNE AKTIVNOSTI (zadnjih 4)",
		"  XP: +60",
		"Generirano iz Main Quest aplikacije",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report lacks %q", want)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	user, tasks, history := sample()
	r, err := Generate(user, tasks, history, PeriodLast7, anchor, DefaultOptions)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"📊 MAIN QUEST - KRATKI SAŽETAK",
		"Period: Zadnjih 7 dana",
		"• Level: 3 (260 XP)",
		"• Završeno zadataka: 2/4",
		"• Učenje: 2 zadataka",
		"💡 GLAVNA PREPORUKA:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %q", want)
		}
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)
	tests := map[Format]string{
		FormatText:    "MainQuest_Izvještaj_2024-06-21_10-30-00.txt",
		FormatCSV:     "MainQuest_Aktivnosti_2024-06-21_10-30-00.csv",
		FormatSummary: "MainQuest_Sažetak_2024-06-21_10-30-00.txt",
	}
	for f, want := range tests {
		if got := FileName(f, ts); got != want {
			t.Errorf("FileName(%s) = %q, want %q", f, got, want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	ts := time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)

	path, err := Save(dir, FormatCSV, twoActivities(), ts)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "MainQuest_Aktivnosti_2024-06-21_10-30-00.csv" {
		t.Fatalf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), CSVHeader+"\n") {
		t.Fatalf("content = %q", data)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" CSV "); err != nil || f != FormatCSV {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
	if err := Write(&bytes.Buffer{}, "pdf", Report{}); !errors.Is(err, common.ErrUnknownFormat) {
		t.Fatalf("write err = %v", err)
	}
}
