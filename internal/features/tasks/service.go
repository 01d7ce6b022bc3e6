// Package tasks (service.go) содержит бизнес-логику задач:
// создание и правку, переключение обычных задач и продвижение дневных целей.
package tasks

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/economy"
	"serotonyl.ru/mainquest/internal/store"
)

// Service управляет задачами пользователей.
// Все изменяющие операции выполняются под блокировкой пользователя.
type Service struct {
	st     store.Store
	locks  *common.UserLocks
	clock  common.Clock
	create Policy // Таблица, которой фиксируется награда новой задачи
}

// NewService создаёт сервис задач.
func NewService(st store.Store, locks *common.UserLocks, clock common.Clock, create Policy) *Service {
	return &Service{st: st, locks: locks, clock: clock, create: create}
}

// CreateTask создаёт задачу или дневную цель.
// Награда вычисляется один раз по таблице создания и больше не меняется.
func (s *Service) CreateTask(ctx context.Context, userID int64, in TaskInput) (store.Task, error) {
	if err := validate(in); err != nil {
		return store.Task{}, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.st.GetUser(ctx, userID); err != nil {
		return store.Task{}, common.StoreError("ошибка получения пользователя", err)
	}

	t := store.Task{UserID: userID}
	applyInput(&t, in)
	t.XPReward = s.create.Reward(t.Category, t.IsDailyGoal, t.DailyTarget)

	created, err := s.st.InsertTask(ctx, t)
	if err != nil {
		return store.Task{}, common.StoreError("ошибка создания задачи", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"task_id": created.ID,
		"daily":   created.IsDailyGoal,
		"xp":      created.XPReward,
	}).Info("Задача создана")

	return created, nil
}

// UpdateTask правит задачу. Награда сохраняется, прогресс дневной цели тоже.
// У дневной цели срок всегда сбрасывается.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID int64, in TaskInput) (store.Task, error) {
	if err := validate(in); err != nil {
		return store.Task{}, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	t, err := s.ownedTask(ctx, s.st, userID, taskID)
	if err != nil {
		return store.Task{}, err
	}

	applyInput(&t, in)
	if t.IsDailyGoal {
		t.IsCompleted = false
		t.DailyProgress = min(t.DailyProgress, t.DailyTarget)
	} else {
		t.DailyProgress = 0
	}

	if err := s.st.UpdateTask(ctx, t); err != nil {
		return store.Task{}, common.StoreError("ошибка обновления задачи", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"task_id": taskID,
	}).Debug("Задача обновлена")

	return t, nil
}

// DeleteTask удаляет задачу вместе с историей. XP не меняется.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID int64) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.ownedTask(ctx, s.st, userID, taskID); err != nil {
		return err
	}
	if err := s.st.DeleteTask(ctx, taskID); err != nil {
		return common.StoreError("ошибка удаления задачи", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"task_id": taskID,
	}).Info("Задача удалена")

	return nil
}

// ListTasks возвращает обычные задачи пользователя.
// Перед выдачей задачам без награды проставляется XP по CatalogPolicy.
func (s *Service) ListTasks(ctx context.Context, userID int64) ([]store.Task, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	all, err := s.loadWithBackfill(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []store.Task
	for _, t := range all {
		if !t.IsDailyGoal {
			out = append(out, t)
		}
	}
	return out, nil
}

// BackfillRewards проставляет XP по CatalogPolicy всем задачам с нулевой наградой.
// Возвращает число обновлённых задач.
func (s *Service) BackfillRewards(ctx context.Context, userID int64) (int, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.st.GetUser(ctx, userID); err != nil {
		return 0, common.StoreError("ошибка получения пользователя", err)
	}
	all, err := s.st.ListTasksByUser(ctx, userID)
	if err != nil {
		return 0, common.StoreError("ошибка получения задач", err)
	}
	return backfill(ctx, s.st, all)
}

// ToggleCompletion переключает обычную задачу между «открыта» и «выполнена».
//
// Начисляется сохранённая награда; нулевые награды заполняет только BackfillRewards.
// Открыта → выполнена: +xpReward и строка истории.
// Выполнена → открыта: −xpReward (не ниже нуля), история не откатывается.
func (s *Service) ToggleCompletion(ctx context.Context, userID, taskID int64) (ToggleResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var res ToggleResult
	err := s.st.InTx(ctx, func(tx store.Store) error {
		t, err := s.ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		if t.IsDailyGoal {
			return common.ErrIsDailyGoal
		}
		ledger := economy.NewLedger(tx)
		if !t.IsCompleted {
			t.IsCompleted = true
			res.Change, err = ledger.Award(ctx, userID, t.XPReward, economy.SourceTaskDone)
			if err != nil {
				return err
			}
			if _, err := tx.AppendHistory(ctx, store.TaskHistory{
				TaskID:      t.ID,
				UserID:      userID,
				CompletedAt: common.FormatTimestamp(s.clock.Now()),
			}); err != nil {
				return common.StoreError("ошибка записи истории", err)
			}
		} else {
			t.IsCompleted = false
			res.Change, err = ledger.Revoke(ctx, userID, t.XPReward, economy.SourceTaskUndone)
			if err != nil {
				return err
			}
		}

		if err := tx.UpdateTask(ctx, t); err != nil {
			return common.StoreError("ошибка обновления задачи", err)
		}
		res.Task = t
		return nil
	})
	if err != nil {
		return ToggleResult{}, fmt.Errorf("ошибка переключения задачи %d: %w", taskID, err)
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"task_id":   taskID,
		"completed": res.Task.IsCompleted,
		"delta":     res.Change.Delta,
	}).Info("Задача переключена")

	return res, nil
}

// ListDailyGoals возвращает дневные цели пользователя.
// Перед выдачей прогресс целей, не продвинутых сегодня, обнуляется.
func (s *Service) ListDailyGoals(ctx context.Context, userID int64) ([]store.Task, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	all, err := s.loadWithBackfill(ctx, userID)
	if err != nil {
		return nil, err
	}

	goals, _, err := s.rollover(ctx, all)
	return goals, err
}

// RolloverDailyGoals обнуляет прогресс вчерашних дневных целей пользователя.
// Вызывается ночной задачей. Возвращает число сброшенных целей.
func (s *Service) RolloverDailyGoals(ctx context.Context, userID int64) (int, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	all, err := s.st.ListTasksByUser(ctx, userID)
	if err != nil {
		return 0, common.StoreError("ошибка получения задач", err)
	}
	_, n, err := s.rollover(ctx, all)
	return n, err
}

// Advance продвигает дневную цель на 1.
//
// Если прогресс уже достиг цели, ничего не меняется (OutcomeAlreadyComplete).
// Дневной сброс здесь не выполняется: его делают ListDailyGoals и ночная задача.
// При достижении цели начисляется XP, пишется строка истории и
// пересчитывается серия (OutcomeGoalCompleted).
func (s *Service) Advance(ctx context.Context, userID, taskID int64) (AdvanceResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.clock.Now()
	today, yesterday := common.FormatDate(now), common.Yesterday(now)

	var res AdvanceResult
	err := s.st.InTx(ctx, func(tx store.Store) error {
		t, err := s.ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		if !t.IsDailyGoal {
			return common.ErrNotDailyGoal
		}

		if t.DailyProgress >= t.DailyTarget {
			res = AdvanceResult{Task: t, Outcome: OutcomeAlreadyComplete}
			return nil
		}

		prev := t
		t.DailyProgress++
		t.LastCompletedDate = today
		res.Outcome = OutcomeProgressed

		if t.DailyProgress >= t.DailyTarget {
			t.StreakCount = NextStreak(prev, today, yesterday)
			t.GoalMetDate = today

			change, err := economy.NewLedger(tx).Award(ctx, userID, t.XPReward, economy.SourceGoalComplete)
			if err != nil {
				return err
			}
			if _, err := tx.AppendHistory(ctx, store.TaskHistory{
				TaskID:      t.ID,
				UserID:      userID,
				CompletedAt: common.FormatTimestamp(now),
			}); err != nil {
				return common.StoreError("ошибка записи истории", err)
			}
			res.Outcome = OutcomeGoalCompleted
			res.Change = &change
		}

		if err := tx.UpdateTask(ctx, t); err != nil {
			return common.StoreError("ошибка обновления цели", err)
		}
		res.Task = t
		return nil
	})
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("ошибка продвижения цели %d: %w", taskID, err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"task_id":  taskID,
		"outcome":  res.Outcome.String(),
		"progress": fmt.Sprintf("%d/%d", res.Task.DailyProgress, res.Task.DailyTarget),
		"streak":   res.Task.StreakCount,
	}).Info("Дневная цель продвинута")

	return res, nil
}

// GoalSummary считает, сколько дневных целей выполнено сегодня, и лучшую серию.
func (s *Service) GoalSummary(ctx context.Context, userID int64) (GoalSummary, error) {
	goals, err := s.ListDailyGoals(ctx, userID)
	if err != nil {
		return GoalSummary{}, err
	}

	sum := GoalSummary{Total: len(goals)}
	for _, g := range goals {
		if g.GoalMet() {
			sum.Completed++
		}
		sum.MaxStreak = max(sum.MaxStreak, g.StreakCount)
	}
	return sum, nil
}

// ownedTask возвращает задачу, если она принадлежит пользователю.
// Чужая задача неотличима от несуществующей.
func (s *Service) ownedTask(ctx context.Context, st store.Store, userID, taskID int64) (store.Task, error) {
	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		return store.Task{}, common.StoreError("ошибка получения задачи", err)
	}
	if t.UserID != userID {
		return store.Task{}, common.ErrTaskNotFound
	}
	return t, nil
}

// loadWithBackfill загружает все задачи пользователя, проставив недостающие награды.
func (s *Service) loadWithBackfill(ctx context.Context, userID int64) ([]store.Task, error) {
	if _, err := s.st.GetUser(ctx, userID); err != nil {
		return nil, common.StoreError("ошибка получения пользователя", err)
	}
	all, err := s.st.ListTasksByUser(ctx, userID)
	if err != nil {
		return nil, common.StoreError("ошибка получения задач", err)
	}
	if _, err := backfill(ctx, s.st, all); err != nil {
		return nil, err
	}
	return all, nil
}

// rollover применяет ResetIfNewDay ко всем дневным целям и сохраняет изменённые.
func (s *Service) rollover(ctx context.Context, all []store.Task) ([]store.Task, int, error) {
	today := common.Today(s.clock)

	var goals []store.Task
	reset := 0
	for _, t := range all {
		if !t.IsDailyGoal {
			continue
		}
		if ResetIfNewDay(&t, today) {
			if err := s.st.UpdateTask(ctx, t); err != nil {
				return nil, reset, common.StoreError("ошибка сброса цели", err)
			}
			reset++
		}
		goals = append(goals, t)
	}

	if reset > 0 {
		log.WithField("reset", reset).Debug("Дневные цели сброшены")
	}
	return goals, reset, nil
}

// backfill проставляет награду задачам с xpReward = 0. Срез меняется на месте.
func backfill(ctx context.Context, st store.Store, all []store.Task) (int, error) {
	n := 0
	for i := range all {
		t := &all[i]
		if t.XPReward != 0 {
			continue
		}
		t.XPReward = CatalogPolicy.Reward(t.Category, t.IsDailyGoal, t.DailyTarget)
		if t.XPReward == 0 {
			continue
		}
		if err := st.UpdateTask(ctx, *t); err != nil {
			return n, common.StoreError("ошибка обновления награды", err)
		}
		n++
	}
	if n > 0 {
		log.WithField("tasks", n).Info("Награды задач заполнены")
	}
	return n, nil
}

func validate(in TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return common.ErrEmptyTitle
	}
	if in.IsDailyGoal && in.DailyTarget <= 0 {
		return common.ErrInvalidTarget
	}
	return nil
}

// applyInput переносит пользовательские поля в задачу.
func applyInput(t *store.Task, in TaskInput) {
	t.Title = strings.TrimSpace(in.Title)
	t.Description = strings.TrimSpace(in.Description)
	t.Category = strings.TrimSpace(in.Category)
	t.IsDailyGoal = in.IsDailyGoal
	if in.IsDailyGoal {
		t.DueDate = ""
		t.DailyTarget = in.DailyTarget
	} else {
		t.DueDate = strings.TrimSpace(in.DueDate)
		t.DailyTarget = 1
	}
}
