package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"serotonyl.ru/mainquest/internal/common"
)

func TestGoReturnsValue(t *testing.T) {
	r := New(2)
	res := <-Go(context.Background(), r, "answer", func(context.Context) (int, error) {
		return 42, nil
	})
	if !res.OK() || res.Value != 42 || res.Reason() != "" {
		t.Fatalf("res = %+v", res)
	}
}

func TestGoError(t *testing.T) {
	r := New(1)
	res := <-Go(context.Background(), r, "buy", func(context.Context) (string, error) {
		return "", common.ErrInsufficientXP
	})
	if res.OK() || !errors.Is(res.Err, common.ErrInsufficientXP) {
		t.Fatalf("res = %+v", res)
	}
	if res.Reason() != "Nemate dovoljno XP bodova" {
		t.Fatalf("reason = %q", res.Reason())
	}
}

func TestGoRecoversPanic(t *testing.T) {
	r := New(1)
	res := <-Go(context.Background(), r, "boom", func(context.Context) (int, error) {
		var m map[string]int
		m["x"] = 1
		return 0, nil
	})
	if !errors.Is(res.Err, ErrPanic) {
		t.Fatalf("err = %v", res.Err)
	}
	if res.Reason() != "Neočekivana greška" {
		t.Fatalf("reason = %q", res.Reason())
	}

	// Место освобождено после паники
	again := <-Go(context.Background(), r, "after", func(context.Context) (bool, error) { return true, nil })
	if !again.OK() {
		t.Fatalf("after panic = %+v", again)
	}
}

func TestInflightBound(t *testing.T) {
	const limit = 3
	r := New(limit)

	var (
		current, peak, starts atomic.Int32
		release               = make(chan struct{})
		started               sync.WaitGroup
	)
	started.Add(limit)

	var chans []<-chan Result[int]
	for i := 0; i < 10; i++ {
		chans = append(chans, Go(context.Background(), r, "work", func(context.Context) (int, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			if starts.Add(1) <= limit {
				started.Done()
			}
			<-release
			current.Add(-1)
			return int(n), nil
		}))
	}

	started.Wait()
	if got := r.InFlight(); got != limit {
		t.Fatalf("inflight = %d, want %d", got, limit)
	}
	close(release)

	for _, ch := range chans {
		if res := <-ch; !res.OK() {
			t.Fatalf("res = %+v", res)
		}
	}
	r.Wait()
	if peak.Load() > limit {
		t.Fatalf("peak = %d, limit %d", peak.Load(), limit)
	}
}

func TestGoCancelledBeforeStart(t *testing.T) {
	r := New(1)
	block, holding := make(chan struct{}), make(chan struct{})
	first := Go(context.Background(), r, "hold", func(context.Context) (int, error) {
		close(holding)
		<-block
		return 1, nil
	})
	<-holding

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	res := <-Go(ctx, r, "late", func(context.Context) (int, error) {
		ran.Store(true)
		return 2, nil
	})
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("err = %v", res.Err)
	}

	close(block)
	<-first
	if ran.Load() {
		t.Fatal("cancelled action ran")
	}
}
