// Package wheel (service.go) координирует спин колеса от начала до конца.
package wheel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/economy"
	"serotonyl.ru/mainquest/internal/store"
)

// Rand: источник случайных чисел. *rand.Rand из math/rand/v2 подходит.
type Rand interface {
	IntN(n int) int
}

// globalRand использует общий генератор math/rand/v2.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Service управляет колесом удачи.
type Service struct {
	st    store.Store
	locks *common.UserLocks
	clock common.Clock
	opts  Options

	rngMu sync.Mutex
	rng   Rand
}

// NewService создаёт сервис колеса. Если rng nil: используется общий генератор.
func NewService(st store.Store, locks *common.UserLocks, clock common.Clock, opts Options, rng Rand) *Service {
	if rng == nil {
		rng = globalRand{}
	}
	return &Service{st: st, locks: locks, clock: clock, opts: opts, rng: rng}
}

// Options возвращает настройки колеса.
func (s *Service) Options() Options { return s.opts }

// RemainingSpins возвращает число оставшихся на сегодня спинов.
func (s *Service) RemainingSpins(ctx context.Context, userID int64) (int, error) {
	w, err := s.state(ctx, s.st, userID)
	if err != nil {
		return 0, err
	}
	return s.opts.Remaining(w, common.Today(s.clock)), nil
}

// CanSpin сообщает, можно ли сегодня крутить колесо.
func (s *Service) CanSpin(ctx context.Context, userID int64) (bool, error) {
	n, err := s.RemainingSpins(ctx, userID)
	return n > 0, err
}

// RecordSpin записывает исход спина без начисления XP.
func (s *Service) RecordSpin(ctx context.Context, userID int64, label string, xpWon int) (store.WheelState, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var out store.WheelState
	err := s.st.InTx(ctx, func(tx store.Store) error {
		w, err := s.state(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		Record(&w, label, xpWon, common.FormatDate(now), common.Yesterday(now))
		if err := tx.SaveWheelState(ctx, w); err != nil {
			return common.StoreError("ошибка сохранения колеса", err)
		}
		out = w
		return nil
	})
	if err != nil {
		return store.WheelState{}, fmt.Errorf("ошибка записи спина: %w", err)
	}
	return out, nil
}

// Spin выполняет полный цикл спина.
//
// Алгоритм:
//  1. Проверяем, что дневной лимит не исчерпан
//  2. Выбираем сектор равновероятно
//  3. Начисляем XP через экономику
//  4. Записываем исход в состояние колеса
func (s *Service) Spin(ctx context.Context, userID int64) (SpinResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.clock.Now()
	today, yesterday := common.FormatDate(now), common.Yesterday(now)

	var res SpinResult
	err := s.st.InTx(ctx, func(tx store.Store) error {
		w, err := s.state(ctx, tx, userID)
		if err != nil {
			return err
		}
		if s.opts.Remaining(w, today) == 0 {
			return common.ErrSpinsExhausted
		}

		label := s.pick()
		xp := s.opts.XpFor(label)
		if xp > 0 {
			change, err := economy.NewLedger(tx).Award(ctx, userID, xp, economy.SourceWheel)
			if err != nil {
				return err
			}
			res.Change = &change
		}

		Record(&w, label, xp, today, yesterday)
		if err := tx.SaveWheelState(ctx, w); err != nil {
			return common.StoreError("ошибка сохранения колеса", err)
		}

		res.Label = label
		res.XP = xp
		res.Remaining = s.opts.Remaining(w, today)
		return nil
	})
	if err != nil {
		return SpinResult{}, fmt.Errorf("ошибка спина: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"result":    res.Label,
		"xp":        res.XP,
		"remaining": res.Remaining,
	}).Info("Спин колеса")

	return res, nil
}

// Stats возвращает статистику колеса пользователя.
func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	w, err := s.state(ctx, s.st, userID)
	if err != nil {
		return Stats{}, err
	}
	best := w.BestSpin
	if best == "" {
		best = "None"
	}
	return Stats{
		TotalSpins:      w.TotalSpins,
		TotalXPWon:      w.TotalXPWon,
		LastPlayDate:    w.LastPlayDate,
		StreakDays:      w.StreakDays,
		BestSpin:        best,
		TotalBonusTurns: w.TotalBonusTurns,
		RemainingSpins:  s.opts.Remaining(w, common.Today(s.clock)),
	}, nil
}

// CheckAchievements возвращает все достигнутые достижения пользователя.
func (s *Service) CheckAchievements(ctx context.Context, userID int64) ([]string, error) {
	u, err := s.st.GetUser(ctx, userID)
	if err != nil {
		return nil, common.StoreError("ошибка получения пользователя", err)
	}
	w, err := s.st.GetWheelState(ctx, userID)
	if err != nil {
		return nil, common.StoreError("ошибка чтения колеса", err)
	}
	return Achievements(w, u.XP), nil
}

// state читает состояние колеса, предварительно проверив пользователя.
func (s *Service) state(ctx context.Context, st store.Store, userID int64) (store.WheelState, error) {
	if _, err := st.GetUser(ctx, userID); err != nil {
		return store.WheelState{}, common.StoreError("ошибка получения пользователя", err)
	}
	w, err := st.GetWheelState(ctx, userID)
	if err != nil {
		return store.WheelState{}, common.StoreError("ошибка чтения колеса", err)
	}
	return w, nil
}

func (s *Service) pick() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return Outcomes[s.rng.IntN(len(Outcomes))]
}
