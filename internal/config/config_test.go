package config

import (
	"os"
	"testing"
	"time"
)

// unsetEnv убирает переменную на время теста и возвращает её после.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unsetenv %s: %v", k, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "STORE_DRIVER", "SQLITE_PATH", "APP_TIMEZONE", "TASKS_CREATE_POLICY",
		"WHEEL_DAILY_SPINS", "WHEEL_LUCKY_DAY_XP", "REPORT_ACTIVITY_LIMIT", "REPORT_FIRST_WEEKDAY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != DriverSQLite {
		t.Fatalf("driver = %q, want %q", cfg.StoreDriver, DriverSQLite)
	}
	if cfg.WheelDailySpins != 5 || cfg.WheelLuckyDayXP != 50 {
		t.Fatalf("wheel defaults = %d/%d", cfg.WheelDailySpins, cfg.WheelLuckyDayXP)
	}
	if cfg.ReportActivityLimit != 50 {
		t.Fatalf("activity limit = %d", cfg.ReportActivityLimit)
	}
	day, err := cfg.FirstWeekday()
	if err != nil || day != time.Monday {
		t.Fatalf("first weekday = %v, %v", day, err)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	unsetEnv(t, "APP_TIMEZONE", "TASKS_CREATE_POLICY")
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreDriver:            DriverMemory,
			AppTimezone:            "UTC",
			TasksCreatePolicy:      PolicyEditor,
			RunnerMaxInflight:      1,
			WheelDailySpins:        5,
			WheelLuckyDayXP:        50,
			WheelSpinRetentionDays: 30,
			ReportFirstWeekday:     "Monday",
			ReportActivityLimit:    50,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"bad policy", func(c *Config) { c.TasksCreatePolicy = "random" }, true},
		{"zero spins", func(c *Config) { c.WheelDailySpins = 0 }, true},
		{"bad weekday", func(c *Config) { c.ReportFirstWeekday = "Funday" }, true},
		{"bad timezone", func(c *Config) { c.AppTimezone = "Mars/Olympus" }, true},
		{"sqlite without path", func(c *Config) { c.StoreDriver = DriverSQLite }, true},
		{"postgres pool bounds", func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.DBMaxConns = 1
			c.DBMinConns = 2
		}, true},
		{"sunday lowercase", func(c *Config) { c.ReportFirstWeekday = " sunday " }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5432, DBName: "n", DBSSLMode: "disable"}
	want := "postgres://u:p@h:5432/n?sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}
