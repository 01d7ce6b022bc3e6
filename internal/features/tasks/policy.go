// Package tasks (policy.go) содержит таблицы базового XP по категориям.
//
// Таблиц две, обе используются:
//   - CatalogPolicy, таблица загрузчика; ею заполняются задачи с xpReward = 0
//   - EditorPolicy, таблица экрана создания; ею фиксируется награда новой задачи
//
// Награда вычисляется один раз и хранится в задаче. Логика завершения
// никогда не пересчитывает ненулевую награду.
package tasks

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Policy: таблица XP и правило для дневных целей.
type Policy struct {
	Name    string
	table   map[string]int
	def     int
	dailyFn func(base, target int) int
}

// CatalogPolicy содержит расширенную таблицу. Дневная цель: int(base*0.7).
//
// Примеры:
//
//	CatalogPolicy.Reward("Posao", false, 1)  → 70
//	CatalogPolicy.Reward("Učenje", true, 3)  → 42
//	CatalogPolicy.Reward("", false, 1)       → 40
var CatalogPolicy = Policy{
	Name: "catalog",
	table: expand(map[int][]string{
		60: {"učenje", "learning", "education", "study", "studiranje"},
		50: {"čitanje", "reading", "books", "knjige", "trčanje", "running", "jogging",
			"volontiranje", "volunteering", "community"},
		55: {"fitness", "zdravlje", "health", "sport", "vježbanje",
			"osobni razvoj", "personal development", "self improvement"},
		45: {"teretana", "gym", "workout"},
		70: {"posao", "work", "career", "karijera", "business"},
		65: {"projekt", "project", "programming", "programiranje"},
		40: {"meditacija", "meditation", "mindfulness", "glazba", "music", "instrument",
			"obitelj", "family", "friends", "prijatelji"},
		35: {"planiranje", "planning", "organization", "hobiji", "hobbies", "creative", "kreativnost",
			"crtanje", "drawing", "art", "umjetnost", "kuhanje", "cooking", "food prep"},
		30: {"kućanski poslovi", "household", "cleaning", "čišćenje", "vrtlarstvo", "gardening",
			"home", "dom", "kuća"},
	}),
	def: 40,
	// Дневные цели дают меньше XP за раз, зато повторяются
	dailyFn: func(base, _ int) int { return int(float64(base) * 0.7) },
}

// EditorPolicy содержит короткую таблицу. Дневная цель: int(base*target*0.8).
var EditorPolicy = Policy{
	Name: "editor",
	table: expand(map[int][]string{
		50: {"učenje", "learning"},
		40: {"fitness", "zdravlje", "health"},
		60: {"posao", "work"},
		45: {"osobni razvoj", "personal development"},
		30: {"hobiji", "hobbies"},
		25: {"kućanski poslovi", "household"},
	}),
	def:     35,
	dailyFn: func(base, target int) int { return int(float64(base*target) * 0.8) },
}

// PolicyByName возвращает таблицу по имени из конфигурации.
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case CatalogPolicy.Name:
		return CatalogPolicy, true
	case EditorPolicy.Name:
		return EditorPolicy, true
	}
	return Policy{}, false
}

// Base возвращает базовый XP категории без учёта типа задачи.
func (p Policy) Base(category string) int {
	if xp, ok := p.table[NormalizeCategory(category)]; ok {
		return xp
	}
	return p.def
}

// Reward возвращает награду за задачу. Никогда не бывает отрицательной.
func (p Policy) Reward(category string, isDailyGoal bool, dailyTarget int) int {
	base := p.Base(category)
	if !isDailyGoal {
		return base
	}
	if dailyTarget < 1 {
		dailyTarget = 1
	}
	return max(0, p.dailyFn(base, dailyTarget))
}

// NormalizeCategory приводит категорию к ключу таблицы:
// обрезает пробелы, нормализует Unicode (NFC) и убирает регистр.
//
// Примеры:
//
//	NormalizeCategory("  Učenje ") → "učenje"
//	NormalizeCategory("POSAO")     → "posao"
func NormalizeCategory(category string) string {
	s := strings.TrimSpace(category)
	s = norm.NFC.String(s)
	// Caser хранит состояние, поэтому создаётся на каждый вызов
	return cases.Fold().String(s)
}

func expand(groups map[int][]string) map[string]int {
	out := make(map[string]int)
	for xp, keys := range groups {
		for _, k := range keys {
			out[NormalizeCategory(k)] = xp
		}
	}
	return out
}
