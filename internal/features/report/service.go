// Package report (service.go) загружает данные пользователя и строит отчёт.
package report

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
)

// Service строит отчёты. Только читает хранилище.
type Service struct {
	st    store.Store
	clock common.Clock
	opts  Options
}

// NewService создаёт сервис отчётов.
func NewService(st store.Store, clock common.Clock, opts Options) *Service {
	return &Service{st: st, clock: clock, opts: opts}
}

// Build строит отчёт пользователя за период на текущий момент.
func (s *Service) Build(ctx context.Context, userID int64, period Period) (Report, error) {
	u, err := s.st.GetUser(ctx, userID)
	if err != nil {
		return Report{}, common.StoreError("ошибка получения пользователя", err)
	}
	tasks, err := s.st.ListTasksByUser(ctx, userID)
	if err != nil {
		return Report{}, common.StoreError("ошибка получения задач", err)
	}
	history, err := s.st.ListHistoryByUser(ctx, userID)
	if err != nil {
		return Report{}, common.StoreError("ошибка получения истории", err)
	}

	r, err := Generate(u, tasks, history, period, s.clock.Now(), s.opts)
	if err != nil {
		return Report{}, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"period":     string(period),
		"activities": len(r.Activities),
	}).Debug("Отчёт построен")

	return r, nil
}

// Export строит отчёт и сохраняет его в каталог dir. Возвращает путь к файлу.
func (s *Service) Export(ctx context.Context, userID int64, period Period, f Format, dir string) (string, error) {
	r, err := s.Build(ctx, userID, period)
	if err != nil {
		return "", err
	}
	path, err := Save(dir, f, r, s.clock.Now())
	if err != nil {
		return "", fmt.Errorf("ошибка выгрузки отчёта: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"format":  string(f),
		"path":    path,
	}).Info("Отчёт сохранён")

	return path, nil
}
