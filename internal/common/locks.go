// Package common (locks.go) сериализует изменения данных одного пользователя.
// Чтение-изменение-запись XP и счётчиков колеса выполняется под замком
// пользователя, поэтому параллельные действия не теряют обновления.
package common

import "sync"

// UserLocks: набор мьютексов по userID.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewUserLocks создаёт пустой набор замков.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*userLock)}
}

// Lock захватывает замок пользователя и возвращает функцию освобождения.
//
// Пример:
//
//	unlock := locks.Lock(userID)
//	defer unlock()
func (l *UserLocks) Lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()

	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// Len возвращает число пользователей, чьи замки сейчас удерживаются или ожидаются.
func (l *UserLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
