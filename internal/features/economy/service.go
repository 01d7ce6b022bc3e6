// Package economy (service.go) содержит операции с балансом XP.
// XP пользователя меняется только здесь: начисление, снятие и трата.
package economy

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/level"
	"serotonyl.ru/mainquest/internal/store"
)

// Ledger применяет изменения XP через переданное хранилище.
// Внутри транзакции создаётся на tx, иначе на основном хранилище.
type Ledger struct {
	st store.Store
}

// NewLedger создаёт леджер поверх хранилища или транзакции.
func NewLedger(st store.Store) *Ledger {
	return &Ledger{st: st}
}

// Balance возвращает текущий XP пользователя.
func (l *Ledger) Balance(ctx context.Context, userID int64) (int, error) {
	u, err := l.st.GetUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return u.XP, nil
}

// Award начисляет amount XP и сообщает о повышении уровня.
func (l *Ledger) Award(ctx context.Context, userID int64, amount int, source string) (Change, error) {
	if amount < 0 {
		return Change{}, fmt.Errorf("начисление %d XP: %w", amount, common.ErrInvalidInput)
	}
	return l.apply(ctx, userID, source, func(xp int) (int, error) {
		return xp + amount, nil
	})
}

// Revoke снимает amount XP. Баланс не опускается ниже нуля.
func (l *Ledger) Revoke(ctx context.Context, userID int64, amount int, source string) (Change, error) {
	if amount < 0 {
		return Change{}, fmt.Errorf("снятие %d XP: %w", amount, common.ErrInvalidInput)
	}
	return l.apply(ctx, userID, source, func(xp int) (int, error) {
		return max(0, xp-amount), nil
	})
}

// Spend тратит amount XP. Если XP не хватает: ErrInsufficientXP, баланс не меняется.
func (l *Ledger) Spend(ctx context.Context, userID int64, amount int, source string) (Change, error) {
	if amount < 0 {
		return Change{}, fmt.Errorf("трата %d XP: %w", amount, common.ErrInvalidInput)
	}
	return l.apply(ctx, userID, source, func(xp int) (int, error) {
		if xp < amount {
			return xp, fmt.Errorf("%w: potrebno %d, dostupno %d", common.ErrInsufficientXP, amount, xp)
		}
		return xp - amount, nil
	})
}

// apply читает пользователя, вычисляет новый XP и сохраняет его.
func (l *Ledger) apply(ctx context.Context, userID int64, source string, next func(int) (int, error)) (Change, error) {
	u, err := l.st.GetUser(ctx, userID)
	if err != nil {
		return Change{}, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	newXP, err := next(u.XP)
	if err != nil {
		return Change{}, err
	}

	change := Change{
		UserID: userID,
		Source: source,
		Delta:  newXP - u.XP,
		OldXP:  u.XP,
		NewXP:  newXP,
	}
	if change.Delta == 0 {
		return change, nil
	}

	u.XP = newXP
	if err := l.st.UpdateUser(ctx, u); err != nil {
		return Change{}, fmt.Errorf("ошибка обновления XP: %w", err)
	}

	oldLevel, newLevel := level.Calculate(change.OldXP), level.Calculate(newXP)
	if newLevel > oldLevel {
		change.LevelUp = &LevelUp{
			OldLevel:    oldLevel,
			NewLevel:    newLevel,
			RewardTitle: level.RewardTitle(newLevel),
		}
		log.WithFields(log.Fields{
			"user_id": userID,
			"level":   newLevel,
			"reward":  change.LevelUp.RewardTitle,
			"source":  source,
		}).Info("Новый уровень")
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"delta":   change.Delta,
		"xp":      newXP,
		"source":  source,
	}).Debug("Баланс XP изменён")

	return change, nil
}
