package root

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/report"
)

// run выполняет команду на общей SQLite-базе теста.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "mainquest.db"))
	t.Setenv("REPORT_EXPORT_DIR", dir)
	t.Setenv("APP_LOG_LEVEL", "error")
	t.Setenv("MAINQUEST_USER", "")
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestTaskFlow(t *testing.T) {
	setupEnv(t)

	mustRun(t, "user", "add", "ana")
	if out := mustRun(t, "-u", "ana", "task", "add", "Izvještaj", "-c", "Posao"); !strings.Contains(out, "60 XP") {
		t.Fatalf("task add = %q", out)
	}
	if out := mustRun(t, "-u", "ana", "task", "toggle", "1"); !strings.Contains(out, "+60 XP") {
		t.Fatalf("toggle = %q", out)
	}
	if out := mustRun(t, "-u", "ana", "task", "edit", "1", "--title", "Godišnji izvještaj"); !strings.Contains(out, "Godišnji izvještaj") {
		t.Fatalf("edit = %q", out)
	}

	if out := mustRun(t, "-u", "ana", "task", "list"); !strings.Contains(out, "Zadaci (1 zadatak)") {
		t.Fatalf("task list = %q", out)
	}

	_, err := run(t, "-u", "ana", "shop", "buy", "1")
	if !errors.Is(err, common.ErrInsufficientXP) {
		t.Fatalf("buy err = %v", err)
	}
	if errorText(err) != "Nemate dovoljno XP bodova" {
		t.Fatalf("error text = %q", errorText(err))
	}

	out := mustRun(t, "-u", "ana", "report", "--format", "csv", "--period", "today")
	if !strings.HasPrefix(out, report.CSVHeader+"\n") || !strings.Contains(out, "Godišnji izvještaj") {
		t.Fatalf("report = %q", out)
	}
}

func TestGoalAndWheel(t *testing.T) {
	setupEnv(t)
	t.Setenv("MAINQUEST_USER", "marko")

	mustRun(t, "user", "add", "marko")
	mustRun(t, "task", "add", "Voda", "--daily", "--target", "2", "-c", "zdravlje")
	if out := mustRun(t, "goal", "advance", "1"); !strings.Contains(out, "1/2") {
		t.Fatalf("advance = %q", out)
	}
	if out := mustRun(t, "goal", "advance", "1"); !strings.Contains(out, "Cilj ispunjen") || !strings.Contains(out, "🔥 1 dan") {
		t.Fatalf("complete = %q", out)
	}
	if out := mustRun(t, "goal", "summary"); !strings.Contains(out, "1/1") {
		t.Fatalf("summary = %q", out)
	}

	if out := mustRun(t, "wheel", "spin"); !strings.Contains(out, "Preostalo danas") {
		t.Fatalf("spin = %q", out)
	}
	if out := mustRun(t, "wheel", "stats"); !strings.Contains(out, "Ukupno okretaja") {
		t.Fatalf("stats = %q", out)
	}
}

func TestUserRequired(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "task", "list"); err == nil || !strings.Contains(err.Error(), "--user") {
		t.Fatalf("err = %v", err)
	}
	if _, err := run(t, "-u", "nitko", "task", "list"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unknown user err = %v", err)
	}
	if _, err := run(t, "-u", "nitko", "task", "toggle", "abc"); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("bad id err = %v", err)
	}
}

func TestReportSave(t *testing.T) {
	setupEnv(t)
	mustRun(t, "user", "add", "ana")
	out := mustRun(t, "-u", "ana", "report", "--format", "summary", "--save")
	if !strings.Contains(out, "MainQuest_Sažetak_") {
		t.Fatalf("save = %q", out)
	}
}
