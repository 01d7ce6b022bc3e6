// Package runner выполняет действия движка в фоне и возвращает результат через канал.
// Число одновременно выполняемых действий ограничено, паника внутри действия
// перехватывается и превращается в ошибку.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
)

// ErrPanic: действие завершилось паникой.
var ErrPanic = errors.New("действие завершилось паникой")

// Result: итог фонового действия.
type Result[T any] struct {
	Value T
	Err   error
}

// OK сообщает, что действие завершилось без ошибки.
func (r Result[T]) OK() bool { return r.Err == nil }

// Reason возвращает причину ошибки для пользователя. Пусто, если ошибки нет.
func (r Result[T]) Reason() string { return common.Reason(r.Err) }

// Runner ограничивает параллелизм фоновых действий.
type Runner struct {
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New создаёт раннер, выполняющий не больше maxInflight действий одновременно.
func New(maxInflight int) *Runner {
	if maxInflight <= 0 {
		maxInflight = 1
	}
	return &Runner{inflight: make(chan struct{}, maxInflight)}
}

// InFlight возвращает число выполняющихся сейчас действий.
func (r *Runner) InFlight() int { return len(r.inflight) }

// Wait ждёт завершения всех запущенных действий.
func (r *Runner) Wait() { r.wg.Wait() }

// Go запускает fn в фоне. Канал получит ровно один результат и закроется.
// Если ctx отменён раньше, чем освободилось место, fn не запускается.
func Go[T any](ctx context.Context, r *Runner, name string, fn func(ctx context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer close(out)

		// лимит параллелизма
		select {
		case r.inflight <- struct{}{}:
		case <-ctx.Done():
			out <- Result[T]{Err: fmt.Errorf("%s: %w", name, ctx.Err())}
			return
		}
		defer func() { <-r.inflight }()

		out <- run(ctx, name, fn)
	}()

	return out
}

func run[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) (res Result[T]) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.WithFields(log.Fields{
				"component": "panic_recovery",
				"action":    name,
				"panic":     fmt.Sprintf("%v", p),
				"stack":     string(debug.Stack()),
			}).Error("ПАНИКА в действии, восстановлено")
			res = Result[T]{Err: fmt.Errorf("%s: %w: %v", name, ErrPanic, p)}
		}
	}()

	v, err := fn(ctx)
	entry := log.WithFields(log.Fields{
		"action":   name,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("Действие завершилось ошибкой")
	} else {
		entry.Debug("Действие выполнено")
	}
	return Result[T]{Value: v, Err: err}
}
