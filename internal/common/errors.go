// Package common (errors.go) определяет таксономию ошибок движка.
// Четыре базовые категории проверяются через errors.Is, конкретные ошибки
// оборачивают категорию и несут понятное пользователю сообщение.
package common

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Базовые категории ошибок
var (
	// ErrNotFound: пользователь, задача или награда не существует
	ErrNotFound = errors.New("nije pronađeno")
	// ErrInsufficientXP: у пользователя меньше XP, чем стоит награда
	ErrInsufficientXP = errors.New("nedovoljno XP bodova")
	// ErrInvalidInput: некорректные входные данные
	ErrInvalidInput = errors.New("neispravan unos")
	// ErrStoreFailure: хранилище вернуло ошибку
	ErrStoreFailure = errors.New("greška pohrane")
)

// kindError: конкретная ошибка, привязанная к категории.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Ошибки NotFound
var (
	ErrUserNotFound   = newError(ErrNotFound, "korisnik nije pronađen")
	ErrTaskNotFound   = newError(ErrNotFound, "zadatak nije pronađen")
	ErrRewardNotFound = newError(ErrNotFound, "nagrada nije pronađena")
)

// Ошибки InvalidInput
var (
	ErrEmptyTitle     = newError(ErrInvalidInput, "naslov zadatka ne smije biti prazan")
	ErrEmptyUsername  = newError(ErrInvalidInput, "korisničko ime ne smije biti prazno")
	ErrInvalidTarget  = newError(ErrInvalidInput, "dnevni cilj mora biti veći od 0")
	ErrNotDailyGoal   = newError(ErrInvalidInput, "zadatak nije dnevni cilj")
	ErrIsDailyGoal    = newError(ErrInvalidInput, "dnevni cilj se ne može označiti kao završen")
	ErrRewardOwned    = newError(ErrInvalidInput, "nagrada je već otključana")
	ErrSpinsExhausted = newError(ErrInvalidInput, "nema preostalih okretaja za danas")
	ErrUnknownPeriod  = newError(ErrInvalidInput, "nepoznat period izvještaja")
	ErrUnknownFormat  = newError(ErrInvalidInput, "nepoznat format izvoza")
)

// StoreError классифицирует ошибку хранилища.
// NotFound и ошибки, уже помеченные категорией, проходят как есть,
// остальное помечается как ErrStoreFailure.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

// Reason возвращает человекочитаемую причину ошибки для вывода пользователю.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return capitalize(ke.msg)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "Traženi zapis nije pronađen"
	case errors.Is(err, ErrInsufficientXP):
		return "Nemate dovoljno XP bodova"
	case errors.Is(err, ErrInvalidInput):
		return "Neispravan unos"
	case errors.Is(err, ErrStoreFailure):
		return "Greška pri spremanju podataka, pokušajte ponovno"
	default:
		return "Neočekivana greška"
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
