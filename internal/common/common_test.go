package common

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrUserNotFound, ErrNotFound},
		{ErrTaskNotFound, ErrNotFound},
		{ErrRewardNotFound, ErrNotFound},
		{ErrEmptyTitle, ErrInvalidInput},
		{ErrRewardOwned, ErrInvalidInput},
		{ErrSpinsExhausted, ErrInvalidInput},
		{fmt.Errorf("kupnja: %w", ErrUserNotFound), ErrNotFound},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.kind) {
			t.Fatalf("%v is not %v", tt.err, tt.kind)
		}
	}
}

func TestStoreError(t *testing.T) {
	if StoreError("op", nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if err := StoreError("get user", ErrUserNotFound); err != ErrUserNotFound {
		t.Fatalf("not found must pass through, got %v", err)
	}

	cause := errors.New("disk full")
	err := StoreError("insert task", cause)
	if !errors.Is(err, ErrStoreFailure) || !errors.Is(err, cause) {
		t.Fatalf("want store failure wrapping cause, got %v", err)
	}
	if again := StoreError("outer", err); again != err {
		t.Fatalf("double classification: %v", again)
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrRewardOwned, "Nagrada je već otključana"},
		{fmt.Errorf("wrap: %w", ErrSpinsExhausted), "Nema preostalih okretaja za danas"},
		{fmt.Errorf("kupnja: %w", ErrInsufficientXP), "Nemate dovoljno XP bodova"},
		{StoreError("x", errors.New("boom")), "Greška pri spremanju podataka, pokušajte ponovno"},
		{errors.New("other"), "Neočekivana greška"},
	}
	for _, tt := range tests {
		if got := Reason(tt.err); got != tt.want {
			t.Fatalf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	// Пятница
	now := time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)

	if got := Yesterday(now); got != "2024-06-20" {
		t.Fatalf("Yesterday = %s", got)
	}
	if got := DaysAgo(now, 7); got != "2024-06-14" {
		t.Fatalf("DaysAgo(7) = %s", got)
	}
	if got := StartOfWeek(now, time.Monday); got != "2024-06-17" {
		t.Fatalf("StartOfWeek(Monday) = %s", got)
	}
	if got := StartOfWeek(now, time.Sunday); got != "2024-06-16" {
		t.Fatalf("StartOfWeek(Sunday) = %s", got)
	}
	if got := StartOfWeek(now, time.Friday); got != "2024-06-21" {
		t.Fatalf("StartOfWeek(Friday) = %s", got)
	}
	if got := StartOfMonth(now); got != "2024-06-01" {
		t.Fatalf("StartOfMonth = %s", got)
	}
	if got := ToDisplayDate("2024-06-21"); got != "21.06.2024" {
		t.Fatalf("ToDisplayDate = %s", got)
	}
	if got := ToDisplayDate("garbage"); got != "garbage" {
		t.Fatalf("ToDisplayDate(garbage) = %s", got)
	}
	if got := FormatTimestamp(now); got != "2024-06-21 10:30:00" {
		t.Fatalf("FormatTimestamp = %s", got)
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	c.AddDays(1)
	if got := Today(c); got != "2025-01-01" {
		t.Fatalf("Today = %s", got)
	}
}

func TestPluralize(t *testing.T) {
	days := map[int]string{1: "dan", 2: "dana", 5: "dana", 11: "dana", 21: "dan"}
	for n, want := range days {
		if got := PluralizeDays(n); got != want {
			t.Fatalf("PluralizeDays(%d) = %s, want %s", n, got, want)
		}
	}
	tasks := map[int]string{1: "zadatak", 3: "zadatka", 5: "zadataka", 12: "zadataka", 22: "zadatka"}
	for n, want := range tasks {
		if got := PluralizeTasks(n); got != want {
			t.Fatalf("PluralizeTasks(%d) = %s, want %s", n, got, want)
		}
	}
	if got := FormatXPDelta(-10); got != "-10 XP" {
		t.Fatalf("FormatXPDelta(-10) = %s", got)
	}
}

func TestUserLocksSerialize(t *testing.T) {
	locks := NewUserLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(7)
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if locks.Len() != 0 {
		t.Fatalf("locks left = %d", locks.Len())
	}
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("Europe/Zagreb")
	if err != nil || loc.String() != "Europe/Zagreb" {
		t.Fatalf("LoadLocation = %v, %v", loc, err)
	}
	if _, err := LoadLocation("Mars/Olympus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}
