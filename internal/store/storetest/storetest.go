// Package storetest: общий набор проверок контракта store.Store.
// Каждая реализация хранилища прогоняет его в своих тестах.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
)

// Factory создаёт чистое хранилище для одного подтеста.
type Factory func(t *testing.T) store.Store

// Run прогоняет все проверки контракта.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"users", testUsers},
		{"tasks", testTasks},
		{"delete task cascades history", testDeleteCascade},
		{"history order", testHistoryOrder},
		{"rewards and unlocked", testRewards},
		{"wheel state", testWheelState},
		{"prune wheel spins", testPruneWheelSpins},
		{"tx commit", testTxCommit},
		{"tx rollback", testTxRollback},
		{"cancelled context", testCancelledContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustUser(t *testing.T, s store.Store, name string) store.User {
	t.Helper()
	u, err := s.InsertUser(context.Background(), store.User{Username: name})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return u
}

func mustTask(t *testing.T, s store.Store, task store.Task) store.Task {
	t.Helper()
	out, err := s.InsertTask(context.Background(), task)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	return out
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetUser(ctx, 999); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("missing user err = %v, want not found", err)
	}

	a := mustUser(t, s, "ana")
	b := mustUser(t, s, "borna")
	if a.ID == 0 || a.ID == b.ID {
		t.Fatalf("ids not assigned: %d %d", a.ID, b.ID)
	}

	a.XP = 120
	if err := s.UpdateUser(ctx, a); err != nil {
		t.Fatalf("update user: %v", err)
	}
	got, err := s.GetUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.XP != 120 || got.Username != "ana" {
		t.Fatalf("got %+v", got)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || users[0].ID != a.ID {
		t.Fatalf("list users = %+v", users)
	}

	if err := s.UpdateUser(ctx, store.User{ID: 999}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("update missing user err = %v", err)
	}
}

func testTasks(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")
	other := mustUser(t, s, "iva")

	task := mustTask(t, s, store.Task{
		UserID:      u.ID,
		Title:       "Trčanje",
		Category:    "Fitness",
		IsDailyGoal: true,
		DailyTarget: 3,
		XPReward:    38,
	})
	mustTask(t, s, store.Task{UserID: other.ID, Title: "Tuđi", DailyTarget: 1})

	task.DailyProgress = 2
	task.LastCompletedDate = "2024-06-20"
	task.GoalMetDate = "2024-06-19"
	task.StreakCount = 4
	if err := s.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got != task {
		t.Fatalf("round trip:\n got %+v\nwant %+v", got, task)
	}

	list, err := s.ListTasksByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("list tasks = %+v", list)
	}

	if _, err := s.GetTask(ctx, 999); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("missing task err = %v", err)
	}
	if err := s.UpdateTask(ctx, store.Task{ID: 999, UserID: u.ID}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("update missing task err = %v", err)
	}
}

func testDeleteCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")
	keep := mustTask(t, s, store.Task{UserID: u.ID, Title: "Ostaje", DailyTarget: 1})
	drop := mustTask(t, s, store.Task{UserID: u.ID, Title: "Briše se", DailyTarget: 1})

	for _, id := range []int64{keep.ID, drop.ID, drop.ID} {
		if _, err := s.AppendHistory(ctx, store.TaskHistory{TaskID: id, UserID: u.ID, CompletedAt: "2024-06-20 10:00:00"}); err != nil {
			t.Fatalf("append history: %v", err)
		}
	}

	if err := s.DeleteTask(ctx, drop.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := s.DeleteTask(ctx, drop.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	history, err := s.ListHistoryByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 || history[0].TaskID != keep.ID {
		t.Fatalf("history after cascade = %+v", history)
	}
}

func testHistoryOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")
	task := mustTask(t, s, store.Task{UserID: u.ID, Title: "Čitanje", DailyTarget: 1})

	stamps := []string{"2024-06-21 09:00:00", "2024-06-01 09:00:00", "2024-06-15 09:00:00"}
	for _, ts := range stamps {
		if _, err := s.AppendHistory(ctx, store.TaskHistory{TaskID: task.ID, UserID: u.ID, CompletedAt: ts}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err := s.ListHistoryByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != len(stamps) {
		t.Fatalf("history len = %d", len(history))
	}
	for i, h := range history {
		if h.CompletedAt != stamps[i] {
			t.Fatalf("history[%d] = %s, want %s", i, h.CompletedAt, stamps[i])
		}
	}
}

func testRewards(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")

	r1, err := s.InsertReward(ctx, store.Reward{Name: "Zlatni Avatar", Description: "Sjajni avatar", XPCost: 100})
	if err != nil {
		t.Fatalf("insert reward: %v", err)
	}
	if _, err := s.InsertReward(ctx, store.Reward{Name: "Premium Theme", XPCost: 150}); err != nil {
		t.Fatalf("insert reward: %v", err)
	}

	rewards, err := s.ListRewards(ctx)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 2 || rewards[0] != r1 {
		t.Fatalf("rewards = %+v", rewards)
	}

	at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	if _, err := s.InsertUnlocked(ctx, store.UnlockedReward{UserID: u.ID, RewardID: r1.ID, UnlockedAt: at}); err != nil {
		t.Fatalf("insert unlocked: %v", err)
	}
	unlocked, err := s.ListUnlockedByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].RewardID != r1.ID || !unlocked[0].UnlockedAt.Equal(at) {
		t.Fatalf("unlocked = %+v", unlocked)
	}
}

func testWheelState(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")

	w, err := s.GetWheelState(ctx, u.ID)
	if err != nil {
		t.Fatalf("get empty wheel: %v", err)
	}
	if w.UserID != u.ID || w.TotalSpins != 0 || len(w.DailySpins) != 0 {
		t.Fatalf("empty wheel = %+v", w)
	}

	w.DailySpins["2024-06-21"] = 3
	w.DailySpins["2024-06-20"] = 5
	w.TotalSpins = 8
	w.TotalXPWon = 90
	w.LastPlayDate = "2024-06-21"
	w.StreakDays = 2
	w.BestSpin = "25 XP"
	w.TotalBonusTurns = 1
	if err := s.SaveWheelState(ctx, w); err != nil {
		t.Fatalf("save wheel: %v", err)
	}

	// Сохранение перезаписывает, а не дополняет
	delete(w.DailySpins, "2024-06-20")
	if err := s.SaveWheelState(ctx, w); err != nil {
		t.Fatalf("save wheel again: %v", err)
	}

	got, err := s.GetWheelState(ctx, u.ID)
	if err != nil {
		t.Fatalf("get wheel: %v", err)
	}
	if got.TotalSpins != 8 || got.TotalXPWon != 90 || got.BestSpin != "25 XP" ||
		got.StreakDays != 2 || got.LastPlayDate != "2024-06-21" || got.TotalBonusTurns != 1 {
		t.Fatalf("wheel = %+v", got)
	}
	if len(got.DailySpins) != 1 || got.DailySpins["2024-06-21"] != 3 {
		t.Fatalf("daily spins = %+v", got.DailySpins)
	}
}

func testPruneWheelSpins(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")

	w := store.NewWheelState(u.ID)
	w.DailySpins["2024-05-01"] = 5
	w.DailySpins["2024-05-20"] = 2
	w.DailySpins["2024-06-21"] = 1
	if err := s.SaveWheelState(ctx, w); err != nil {
		t.Fatalf("save wheel: %v", err)
	}

	removed, err := s.PruneWheelSpins(ctx, "2024-05-20")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	got, err := s.GetWheelState(ctx, u.ID)
	if err != nil {
		t.Fatalf("get wheel: %v", err)
	}
	if _, ok := got.DailySpins["2024-05-01"]; ok || len(got.DailySpins) != 2 {
		t.Fatalf("daily spins after prune = %+v", got.DailySpins)
	}
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")

	err := s.InTx(ctx, func(tx store.Store) error {
		user, err := tx.GetUser(ctx, u.ID)
		if err != nil {
			return err
		}
		user.XP = 50
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.XP != 50 {
		t.Fatalf("xp after commit = %d", got.XP)
	}
}

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana")
	reward, err := s.InsertReward(ctx, store.Reward{Name: "VIP Title", XPCost: 400})
	if err != nil {
		t.Fatalf("insert reward: %v", err)
	}

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx store.Store) error {
		user, err := tx.GetUser(ctx, u.ID)
		if err != nil {
			return err
		}
		user.XP = 999
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		if _, err := tx.InsertUnlocked(ctx, store.UnlockedReward{UserID: u.ID, RewardID: reward.ID, UnlockedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("tx err = %v, want boom", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.XP != 0 {
		t.Fatalf("xp after rollback = %d", got.XP)
	}
	unlocked, err := s.ListUnlockedByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("unlocked after rollback = %+v", unlocked)
	}
}

func testCancelledContext(t *testing.T, s store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ListUsers(ctx); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
