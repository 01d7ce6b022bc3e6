// Package users управляет записями пользователей.
// Движку нужно только одно: чтобы запись пользователя существовала.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/level"
	"serotonyl.ru/mainquest/internal/store"
)

// Profile: пользователь вместе с его уровнем.
type Profile struct {
	User  store.User
	Level level.Info
}

// Service управляет пользователями.
type Service struct {
	st store.Store
}

// NewService создаёт сервис пользователей.
func NewService(st store.Store) *Service {
	return &Service{st: st}
}

// Register создаёт пользователя с нулевым XP.
// Если пользователь с таким именем уже есть (без учёта регистра), возвращает его.
func (s *Service) Register(ctx context.Context, username string) (store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return store.User{}, common.ErrEmptyUsername
	}

	existing, err := s.GetByUsername(ctx, username)
	if err == nil {
		log.WithField("user_id", existing.ID).Info("Пользователь уже зарегистрирован")
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return store.User{}, err
	}

	u, err := s.st.InsertUser(ctx, store.User{Username: username})
	if err != nil {
		return store.User{}, common.StoreError("ошибка регистрации пользователя", err)
	}

	log.WithFields(log.Fields{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("Новый пользователь зарегистрирован")

	return u, nil
}

// Get возвращает пользователя по ID.
func (s *Service) Get(ctx context.Context, userID int64) (store.User, error) {
	u, err := s.st.GetUser(ctx, userID)
	if err != nil {
		return store.User{}, common.StoreError(fmt.Sprintf("ошибка чтения пользователя (id=%d)", userID), err)
	}
	return u, nil
}

// GetByUsername ищет пользователя по имени без учёта регистра.
func (s *Service) GetByUsername(ctx context.Context, username string) (store.User, error) {
	all, err := s.List(ctx)
	if err != nil {
		return store.User{}, err
	}
	for _, u := range all {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return store.User{}, common.ErrUserNotFound
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]store.User, error) {
	all, err := s.st.ListUsers(ctx)
	if err != nil {
		return nil, common.StoreError("ошибка получения пользователей", err)
	}
	return all, nil
}

// Profile возвращает пользователя и сведения об уровне.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Level: level.Describe(u.XP)}, nil
}
