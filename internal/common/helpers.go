// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: часы движка, календарные даты, форматирование времени.
package common

import (
	"fmt"
	"sync"
	"time"
	// Встроенная база часовых поясов: в минимальных образах её нет
	_ "time/tzdata"
)

// Форматы дат. Даты хранятся строками, ISO-формат сортируется лексически.
const (
	DateLayout        = "2006-01-02"
	TimestampLayout   = "2006-01-02 15:04:05"
	DisplayDateLayout = "02.01.2006"
	DisplayTimeLayout = "15:04"
	FileStampLayout   = "2006-01-02_15-04-05"
)

// Clock: источник текущего времени. Внедряется в сервисы,
// чтобы тесты могли управлять календарём.
type Clock interface {
	Now() time.Time
}

// SystemClock возвращает реальное время в заданном часовом поясе.
type SystemClock struct {
	Loc *time.Location
}

// Now возвращает текущее время в часовом поясе часов.
func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// ManualClock: часы, которые двигаются только вручную.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewManualClock создаёт ручные часы, выставленные на t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

// Now возвращает выставленное время.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set выставляет время.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// AddDays сдвигает часы на n календарных дней.
func (c *ManualClock) AddDays(n int) {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, n)
	c.mu.Unlock()
}

// LoadLocation загружает часовой пояс по имени IANA ("Europe/Zagreb").
// Пустое имя означает UTC.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: часовой пояс %q: %v", ErrInvalidInput, name, err)
	}
	return loc, nil
}

// FormatDate возвращает календарную дату в формате 2006-01-02.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp возвращает момент в формате истории "2006-01-02 15:04:05".
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Today возвращает сегодняшнюю дату по часам движка.
func Today(c Clock) string {
	return FormatDate(c.Now())
}

// DaysAgo возвращает дату на n дней раньше t.
func DaysAgo(t time.Time, n int) string {
	return FormatDate(t.AddDate(0, 0, -n))
}

// Yesterday возвращает вчерашнюю дату относительно t.
func Yesterday(t time.Time) string {
	return DaysAgo(t, 1)
}

// StartOfWeek возвращает дату начала недели, в которую попадает t.
func StartOfWeek(t time.Time, first time.Weekday) string {
	offset := (int(t.Weekday()) - int(first) + 7) % 7
	return DaysAgo(t, offset)
}

// StartOfMonth возвращает первое число месяца t.
func StartOfMonth(t time.Time) string {
	return FormatDate(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()))
}

// ToDisplayDate переводит 2006-01-02 в 02.01.2006.
// Непарсящаяся строка возвращается как есть.
func ToDisplayDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(DisplayDateLayout)
}
