package shop

import (
	"context"
	"errors"
	"testing"
	"time"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/store/memory"
)

func newShop(t *testing.T, xp int) (*Service, *memory.Store, store.User) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	clock := common.NewManualClock(time.Date(2024, 6, 21, 9, 0, 0, 0, time.UTC))
	svc := NewService(st, common.NewUserLocks(), clock)

	if n, err := svc.SeedCatalog(ctx); err != nil || n != len(DefaultCatalog) {
		t.Fatalf("seed = %d, %v", n, err)
	}
	u, err := st.InsertUser(ctx, store.User{Username: "ana", XP: xp})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return svc, st, u
}

// rewardCosting возвращает ID награды каталога с заданной ценой.
func rewardCosting(t *testing.T, st store.Store, cost int) int64 {
	t.Helper()
	all, err := st.ListRewards(context.Background())
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	for _, r := range all {
		if r.XPCost == cost {
			return r.ID
		}
	}
	t.Fatalf("no reward costing %d", cost)
	return 0
}

func TestSeedCatalogOnce(t *testing.T) {
	svc, st, _ := newShop(t, 0)
	n, err := svc.SeedCatalog(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second seed = %d, %v", n, err)
	}
	all, _ := st.ListRewards(context.Background())
	if len(all) != 10 {
		t.Fatalf("catalog size = %d", len(all))
	}
}

func TestPurchaseExactCost(t *testing.T) {
	ctx := context.Background()
	svc, st, u := newShop(t, 150)
	id := rewardCosting(t, st, 150)

	rc, err := svc.Purchase(ctx, u.ID, id)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if rc.Change.NewXP != 0 || rc.Reward.Name != "🌟 Premium Theme" {
		t.Fatalf("receipt = %+v", rc)
	}
	if !rc.Unlocked.UnlockedAt.Equal(time.Date(2024, 6, 21, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unlocked at = %v", rc.Unlocked.UnlockedAt)
	}

	avail, err := svc.ListAvailable(ctx, u.ID)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(avail) != 9 {
		t.Fatalf("available = %d", len(avail))
	}
	owned, err := svc.ListUnlocked(ctx, u.ID)
	if err != nil || len(owned) != 1 || owned[0].Reward.ID != id {
		t.Fatalf("owned = %+v, %v", owned, err)
	}
}

func TestPurchaseInsufficientXP(t *testing.T) {
	ctx := context.Background()
	svc, st, u := newShop(t, 149)
	id := rewardCosting(t, st, 150)

	if _, err := svc.Purchase(ctx, u.ID, id); !errors.Is(err, common.ErrInsufficientXP) {
		t.Fatalf("err = %v", err)
	}
	got, _ := st.GetUser(ctx, u.ID)
	if got.XP != 149 {
		t.Fatalf("xp = %d", got.XP)
	}
	if owned, _ := st.ListUnlockedByUser(ctx, u.ID); len(owned) != 0 {
		t.Fatalf("owned = %+v", owned)
	}
}

func TestPurchaseErrors(t *testing.T) {
	ctx := context.Background()
	svc, st, u := newShop(t, 1000)
	id := rewardCosting(t, st, 100)

	if _, err := svc.Purchase(ctx, u.ID, id); err != nil {
		t.Fatalf("first purchase: %v", err)
	}

	tests := []struct {
		name     string
		userID   int64
		rewardID int64
		want     error
	}{
		{"already owned", u.ID, id, common.ErrInvalidInput},
		{"unknown reward", u.ID, 999, common.ErrNotFound},
		{"unknown user", 999, id, common.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Purchase(ctx, tt.userID, tt.rewardID); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	got, _ := st.GetUser(ctx, u.ID)
	if got.XP != 900 {
		t.Fatalf("xp = %d", got.XP)
	}
}
