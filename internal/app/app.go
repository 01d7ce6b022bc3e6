// Package app инициализирует все компоненты движка.
// app.go собирает движок: открывает хранилище, создаёт сервисы, раннер
// и планировщик и собирает всё в один объект App.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/config"
	"serotonyl.ru/mainquest/internal/db/postgres"
	"serotonyl.ru/mainquest/internal/db/sqlite"
	"serotonyl.ru/mainquest/internal/features/report"
	"serotonyl.ru/mainquest/internal/features/shop"
	"serotonyl.ru/mainquest/internal/features/tasks"
	"serotonyl.ru/mainquest/internal/features/users"
	"serotonyl.ru/mainquest/internal/features/wheel"
	"serotonyl.ru/mainquest/internal/jobs"
	"serotonyl.ru/mainquest/internal/runner"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/store/memory"
)

// App содержит все компоненты движка.
type App struct {
	Config    *config.Config
	Store     store.Store
	Clock     common.Clock
	Users     *users.Service
	Tasks     *tasks.Service
	Shop      *shop.Service
	Wheel     *wheel.Service
	Reports   *report.Service
	Runner    *runner.Runner
	Scheduler *jobs.Scheduler
}

// SetupLogging настраивает формат логов и уровень из конфига.
// Неизвестный уровень оставляет Info.
func SetupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stderr)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// New открывает хранилище по STORE_DRIVER и собирает движок.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// === 1. Хранилище ===
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия хранилища: %w", err)
	}
	log.WithField("driver", cfg.StoreDriver).Info("Хранилище открыто")

	a, err := NewWithStore(ctx, st, common.SystemClock{Loc: loc}, cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore собирает движок поверх готового хранилища и часов.
// Порядок инициализации важен: компоненты зависят друг от друга.
func NewWithStore(ctx context.Context, st store.Store, clock common.Clock, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	weekday, err := cfg.FirstWeekday()
	if err != nil {
		return nil, err
	}
	policy, ok := tasks.PolicyByName(cfg.TasksCreatePolicy)
	if !ok {
		return nil, fmt.Errorf("%w: политика %q", common.ErrInvalidInput, cfg.TasksCreatePolicy)
	}

	// === 2. Общие компоненты ===
	locks := common.NewUserLocks()
	run := runner.New(cfg.RunnerMaxInflight)

	// === 3. Сервисы ===
	userService := users.NewService(st)
	taskService := tasks.NewService(st, locks, clock, policy)
	shopService := shop.NewService(st, locks, clock)
	wheelService := wheel.NewService(st, locks, clock, wheel.Options{
		DailySpins: cfg.WheelDailySpins,
		LuckyDayXP: cfg.WheelLuckyDayXP,
	}, nil)
	reportService := report.NewService(st, clock, report.Options{
		FirstWeekday:  weekday,
		ActivityLimit: cfg.ReportActivityLimit,
	})

	// === 4. Каталог наград ===
	if cfg.SeedRewards {
		if _, err := shopService.SeedCatalog(ctx); err != nil {
			return nil, fmt.Errorf("ошибка заполнения каталога: %w", err)
		}
	}

	// === 5. Планировщик задач ===
	scheduler := jobs.NewScheduler(st, taskService, run, clock, jobs.Options{
		Spec:          cfg.JobsNightlyCron,
		Location:      loc,
		RetentionDays: cfg.WheelSpinRetentionDays,
	})

	return &App{
		Config:    cfg,
		Store:     st,
		Clock:     clock,
		Users:     userService,
		Tasks:     taskService,
		Shop:      shopService,
		Wheel:     wheelService,
		Reports:   reportService,
		Runner:    run,
		Scheduler: scheduler,
	}, nil
}

// Close дожидается фоновых действий и закрывает хранилище.
func (a *App) Close() error {
	a.Runner.Wait()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия хранилища: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.New(), nil

	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		return postgres.NewStore(pool), nil
	}
	return nil, errors.New("неизвестный драйвер хранилища: " + cfg.StoreDriver)
}
