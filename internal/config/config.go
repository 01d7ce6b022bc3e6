// Package config загружает конфигурацию движка из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"serotonyl.ru/mainquest/internal/common"
)

// Драйверы хранилища.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Политики начисления XP при создании задачи.
const (
	PolicyEditor  = "editor"
	PolicyCatalog = "catalog"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Storage ---
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"mainquest.db"`

	// --- Database (postgres) ---
	// В Docker дефолт "postgres" (имя сервиса в docker-compose), для локалки DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"mainquest"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"mainquest"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Zagreb"`

	// --- Runner ---
	// Сколько фоновых действий выполняем параллельно.
	RunnerMaxInflight int `envconfig:"RUNNER_MAX_INFLIGHT" default:"16"`

	// --- Tasks ---
	TasksCreatePolicy string `envconfig:"TASKS_CREATE_POLICY" default:"editor"`

	// --- Wheel ---
	WheelDailySpins        int `envconfig:"WHEEL_DAILY_SPINS" default:"5"`
	WheelLuckyDayXP        int `envconfig:"WHEEL_LUCKY_DAY_XP" default:"50"`
	WheelSpinRetentionDays int `envconfig:"WHEEL_SPIN_RETENTION_DAYS" default:"30"`

	// --- Reports ---
	ReportFirstWeekday  string `envconfig:"REPORT_FIRST_WEEKDAY" default:"Monday"`
	ReportActivityLimit int    `envconfig:"REPORT_ACTIVITY_LIMIT" default:"50"`
	ReportExportDir     string `envconfig:"REPORT_EXPORT_DIR" default:"."`

	// --- Jobs ---
	JobsNightlyCron string `envconfig:"JOBS_NIGHTLY_CRON" default:"0 0 * * *"`

	// --- Feature Flags ---
	SeedRewards bool `envconfig:"SEED_REWARDS" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс из APP_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := common.LoadLocation(c.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return loc, nil
}

// FirstWeekday разбирает REPORT_FIRST_WEEKDAY.
func (c *Config) FirstWeekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(c.ReportFirstWeekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("REPORT_FIRST_WEEKDAY %q: неизвестный день недели", c.ReportFirstWeekday)
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q: ожидается memory, sqlite или postgres", c.StoreDriver)
	}
	if c.StoreDriver == DriverSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("SQLITE_PATH не задан")
	}
	switch c.TasksCreatePolicy {
	case PolicyEditor, PolicyCatalog:
	default:
		return fmt.Errorf("TASKS_CREATE_POLICY %q: ожидается editor или catalog", c.TasksCreatePolicy)
	}
	if c.RunnerMaxInflight <= 0 {
		return fmt.Errorf("RUNNER_MAX_INFLIGHT должен быть > 0")
	}
	if c.WheelDailySpins <= 0 {
		return fmt.Errorf("WHEEL_DAILY_SPINS должен быть > 0")
	}
	if c.WheelLuckyDayXP < 0 {
		return fmt.Errorf("WHEEL_LUCKY_DAY_XP не может быть отрицательным")
	}
	if c.WheelSpinRetentionDays <= 0 {
		return fmt.Errorf("WHEEL_SPIN_RETENTION_DAYS должен быть > 0")
	}
	if c.ReportActivityLimit <= 0 {
		return fmt.Errorf("REPORT_ACTIVITY_LIMIT должен быть > 0")
	}
	if _, err := c.FirstWeekday(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
