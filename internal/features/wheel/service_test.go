package wheel

import (
	"context"
	"errors"
	"testing"
	"time"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/store/memory"
)

// seqRand выдаёт заранее заданные индексы секторов по кругу.
type seqRand struct {
	seq []int
	i   int
}

func (r *seqRand) IntN(n int) int {
	v := r.seq[r.i%len(r.seq)] % n
	r.i++
	return v
}

func indexOf(label string) int {
	for i, l := range Outcomes {
		if l == label {
			return i
		}
	}
	return -1
}

func newWheel(t *testing.T, labels ...string) (*Service, *memory.Store, *common.ManualClock, store.User) {
	t.Helper()
	st := memory.New()
	clock := common.NewManualClock(time.Date(2024, 6, 21, 20, 0, 0, 0, time.UTC))
	u, err := st.InsertUser(context.Background(), store.User{Username: "ana", XP: 90})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	seq := make([]int, len(labels))
	for i, l := range labels {
		seq[i] = indexOf(l)
	}
	svc := NewService(st, common.NewUserLocks(), clock, DefaultOptions, &seqRand{seq: seq})
	return svc, st, clock, u
}

func TestSpinAwardsXP(t *testing.T) {
	ctx := context.Background()
	svc, st, _, u := newWheel(t, "20 XP")

	res, err := svc.Spin(ctx, u.ID)
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.Label != "20 XP" || res.XP != 20 || res.Remaining != 4 {
		t.Fatalf("res = %+v", res)
	}
	if res.Change == nil || res.Change.LevelUp == nil || res.Change.LevelUp.NewLevel != 2 {
		t.Fatalf("change = %+v", res.Change)
	}
	got, _ := st.GetUser(ctx, u.ID)
	if got.XP != 110 {
		t.Fatalf("xp = %d", got.XP)
	}
}

func TestSpinExhaustsDay(t *testing.T) {
	ctx := context.Background()
	svc, st, clock, u := newWheel(t, LabelNothing, LabelBonusTurn, "5 XP")

	for spins := 0; ; spins++ {
		if spins > 20 {
			t.Fatal("cap never reached")
		}
		_, err := svc.Spin(ctx, u.ID)
		if errors.Is(err, common.ErrSpinsExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("spin: %v", err)
		}
	}

	stats, err := svc.Stats(ctx, u.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// 5 обычных спинов и 2 бесплатных бонусных хода
	if stats.TotalSpins != 5 || stats.TotalBonusTurns != 2 || stats.RemainingSpins != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if !errors.Is(common.ErrSpinsExhausted, common.ErrInvalidInput) {
		t.Fatal("exhausted spins must be InvalidInput")
	}

	before, _ := st.GetUser(ctx, u.ID)
	if _, err := svc.Spin(ctx, u.ID); err == nil {
		t.Fatal("spin after cap succeeded")
	}
	after, _ := st.GetUser(ctx, u.ID)
	if after.XP != before.XP {
		t.Fatalf("xp changed after failed spin: %d → %d", before.XP, after.XP)
	}

	clock.AddDays(1)
	if ok, err := svc.CanSpin(ctx, u.ID); err != nil || !ok {
		t.Fatalf("can spin next day = %v, %v", ok, err)
	}
}

func TestStatsEmpty(t *testing.T) {
	svc, _, _, u := newWheel(t, LabelNothing)
	stats, err := svc.Stats(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.BestSpin != "None" || stats.RemainingSpins != 5 || stats.TotalSpins != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRecordSpinAndAchievements(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, u := newWheel(t, LabelNothing)

	for day := 0; day < 3; day++ {
		if _, err := svc.RecordSpin(ctx, u.ID, "10 XP", 10); err != nil {
			t.Fatalf("record: %v", err)
		}
		clock.AddDays(1)
	}

	got, err := svc.CheckAchievements(ctx, u.ID)
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if len(got) != 1 || got[0] != "📅 Daily Player - 3 day streak!" {
		t.Fatalf("achievements = %v", got)
	}

	if _, err := svc.CheckAchievements(ctx, 404); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}
