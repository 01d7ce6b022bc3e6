// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает ночное обслуживание: очистку старых счётчиков
// колеса и сброс прогресса дневных целей всех пользователей.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/runner"
	"serotonyl.ru/mainquest/internal/store"
)

// GoalRoller сбрасывает вчерашний прогресс дневных целей пользователя.
type GoalRoller interface {
	RolloverDailyGoals(ctx context.Context, userID int64) (int, error)
}

// Options: расписание и параметры обслуживания.
type Options struct {
	Spec          string         // cron-выражение, например "0 0 * * *"
	Location      *time.Location // Часовой пояс расписания
	RetentionDays int            // Сколько дней хранить дневные счётчики колеса
}

// NightlyReport: итог одного прогона.
type NightlyReport struct {
	PrunedSpins int
	Users       int
	GoalsReset  int
	Failed      int
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron   *cron.Cron
	st     store.Store
	goals  GoalRoller
	runner *runner.Runner
	clock  common.Clock
	opts   Options
}

// NewScheduler создаёт планировщик в часовом поясе из opts.
func NewScheduler(st store.Store, goals GoalRoller, run *runner.Runner, clock common.Clock, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(opts.Location)),
		st:     st,
		goals:  goals,
		runner: run,
		clock:  clock,
		opts:   opts,
	}
}

// Start регистрирует ночную задачу и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.opts.Spec, func() {
		log.Info("[CRON] Ночное обслуживание")
		if _, err := s.RunNightly(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка ночного обслуживания")
		}
	})
	if err != nil {
		return fmt.Errorf("некорректное расписание %q: %w", s.opts.Spec, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"spec":     s.opts.Spec,
		"location": s.opts.Location.String(),
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущего прогона.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// RunNightly выполняет обслуживание один раз.
//
// Алгоритм:
//  1. Удаляем дневные счётчики колеса старше RetentionDays
//  2. Для каждого пользователя параллельно сбрасываем дневные цели
//
// Ошибка одного пользователя не останавливает остальных.
func (s *Scheduler) RunNightly(ctx context.Context) (NightlyReport, error) {
	var rep NightlyReport

	before := common.DaysAgo(s.clock.Now(), s.opts.RetentionDays)
	pruned, err := s.st.PruneWheelSpins(ctx, before)
	if err != nil {
		return rep, fmt.Errorf("ошибка очистки счётчиков колеса: %w", err)
	}
	rep.PrunedSpins = pruned

	users, err := s.st.ListUsers(ctx)
	if err != nil {
		return rep, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	rep.Users = len(users)

	results := make([]<-chan runner.Result[int], 0, len(users))
	for _, u := range users {
		userID := u.ID
		results = append(results, runner.Go(ctx, s.runner, "rollover", func(ctx context.Context) (int, error) {
			return s.goals.RolloverDailyGoals(ctx, userID)
		}))
	}
	for i, ch := range results {
		res := <-ch
		if !res.OK() {
			rep.Failed++
			log.WithError(res.Err).WithField("user_id", users[i].ID).Error("[CRON] Ошибка сброса дневных целей")
			continue
		}
		rep.GoalsReset += res.Value
	}

	log.WithFields(log.Fields{
		"pruned_spins": rep.PrunedSpins,
		"users":        rep.Users,
		"goals_reset":  rep.GoalsReset,
		"failed":       rep.Failed,
	}).Info("[CRON] Ночное обслуживание завершено")

	return rep, nil
}
