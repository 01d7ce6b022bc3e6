// Package shop (service.go) содержит операции магазина: каталог и покупку.
package shop

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/economy"
	"serotonyl.ru/mainquest/internal/store"
)

// Service управляет магазином наград.
type Service struct {
	st    store.Store
	locks *common.UserLocks
	clock common.Clock
}

// NewService создаёт сервис магазина.
func NewService(st store.Store, locks *common.UserLocks, clock common.Clock) *Service {
	return &Service{st: st, locks: locks, clock: clock}
}

// SeedCatalog записывает DefaultCatalog, если таблица наград пуста.
// Возвращает число добавленных наград.
func (s *Service) SeedCatalog(ctx context.Context) (int, error) {
	n := 0
	err := s.st.InTx(ctx, func(tx store.Store) error {
		existing, err := tx.ListRewards(ctx)
		if err != nil {
			return common.StoreError("ошибка чтения каталога", err)
		}
		if len(existing) > 0 {
			return nil
		}
		for _, r := range DefaultCatalog {
			if _, err := tx.InsertReward(ctx, r); err != nil {
				return common.StoreError("ошибка добавления награды", err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		log.WithField("rewards", n).Info("Каталог наград заполнен")
	}
	return n, nil
}

// ListAvailable возвращает награды, которые пользователь ещё не купил.
func (s *Service) ListAvailable(ctx context.Context, userID int64) ([]store.Reward, error) {
	if _, err := s.st.GetUser(ctx, userID); err != nil {
		return nil, common.StoreError("ошибка получения пользователя", err)
	}
	catalog, err := s.st.ListRewards(ctx)
	if err != nil {
		return nil, common.StoreError("ошибка чтения каталога", err)
	}
	owned, err := s.ownedIDs(ctx, s.st, userID)
	if err != nil {
		return nil, err
	}

	var out []store.Reward
	for _, r := range catalog {
		if !owned[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListUnlocked возвращает купленные пользователем награды в порядке покупки.
func (s *Service) ListUnlocked(ctx context.Context, userID int64) ([]OwnedReward, error) {
	if _, err := s.st.GetUser(ctx, userID); err != nil {
		return nil, common.StoreError("ошибка получения пользователя", err)
	}
	catalog, err := s.st.ListRewards(ctx)
	if err != nil {
		return nil, common.StoreError("ошибка чтения каталога", err)
	}
	byID := make(map[int64]store.Reward, len(catalog))
	for _, r := range catalog {
		byID[r.ID] = r
	}

	unlocked, err := s.st.ListUnlockedByUser(ctx, userID)
	if err != nil {
		return nil, common.StoreError("ошибка чтения покупок", err)
	}

	out := make([]OwnedReward, 0, len(unlocked))
	for _, u := range unlocked {
		r, ok := byID[u.RewardID]
		if !ok {
			continue
		}
		out = append(out, OwnedReward{Reward: r, UnlockedAt: u.UnlockedAt})
	}
	return out, nil
}

// Purchase покупает награду за XP.
//
// Списание XP и запись покупки выполняются в одной транзакции:
// при любой ошибке ни баланс, ни список покупок не меняются.
func (s *Service) Purchase(ctx context.Context, userID, rewardID int64) (Receipt, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var rc Receipt
	err := s.st.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return common.StoreError("ошибка получения пользователя", err)
		}
		reward, err := findReward(ctx, tx, rewardID)
		if err != nil {
			return err
		}
		owned, err := s.ownedIDs(ctx, tx, userID)
		if err != nil {
			return err
		}
		if owned[rewardID] {
			return common.ErrRewardOwned
		}

		change, err := economy.NewLedger(tx).Spend(ctx, userID, reward.XPCost, economy.SourceShop)
		if err != nil {
			return err
		}
		unlocked, err := tx.InsertUnlocked(ctx, store.UnlockedReward{
			UserID:     userID,
			RewardID:   rewardID,
			UnlockedAt: s.clock.Now(),
		})
		if err != nil {
			return common.StoreError("ошибка записи покупки", err)
		}

		rc = Receipt{Reward: reward, Unlocked: unlocked, Change: change}
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("ошибка покупки награды %d: %w", rewardID, err)
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"reward_id": rewardID,
		"cost":      rc.Reward.XPCost,
		"xp":        rc.Change.NewXP,
	}).Info("Награда куплена")

	return rc, nil
}

func (s *Service) ownedIDs(ctx context.Context, st store.Store, userID int64) (map[int64]bool, error) {
	unlocked, err := st.ListUnlockedByUser(ctx, userID)
	if err != nil {
		return nil, common.StoreError("ошибка чтения покупок", err)
	}
	out := make(map[int64]bool, len(unlocked))
	for _, u := range unlocked {
		out[u.RewardID] = true
	}
	return out, nil
}

func findReward(ctx context.Context, st store.Store, rewardID int64) (store.Reward, error) {
	catalog, err := st.ListRewards(ctx)
	if err != nil {
		return store.Reward{}, common.StoreError("ошибка чтения каталога", err)
	}
	for _, r := range catalog {
		if r.ID == rewardID {
			return r, nil
		}
	}
	return store.Reward{}, common.ErrRewardNotFound
}
