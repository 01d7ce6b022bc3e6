// Package wheel реализует колесо удачи: дневной лимит спинов,
// бонусный XP, серию игровых дней и достижения.
// models.go описывает исходы колеса и структуры результатов.
package wheel

import "serotonyl.ru/mainquest/internal/features/economy"

// Исходы колеса
const (
	LabelBonusTurn = "Bonus Turn"
	LabelNothing   = "Nothing"
	LabelLuckyDay  = "Lucky Day!"
)

// Outcomes: сектора колеса по порядку. Все равновероятны.
var Outcomes = []string{
	"10 XP",
	"5 XP",
	"20 XP",
	LabelBonusTurn,
	"15 XP",
	LabelNothing,
	"25 XP",
	LabelLuckyDay,
}

// Options: настройки экономики колеса.
type Options struct {
	DailySpins int // Спинов в день
	LuckyDayXP int // XP за «Lucky Day!»
}

// DefaultOptions: стандартные значения.
var DefaultOptions = Options{DailySpins: 5, LuckyDayXP: 50}

// SpinResult: результат одного спина.
type SpinResult struct {
	Label     string
	XP        int
	Remaining int // Сколько спинов осталось сегодня
	// Change заполнен, если XP был начислен
	Change *economy.Change
}

// Stats: снимок статистики колеса.
type Stats struct {
	TotalSpins      int
	TotalXPWon      int
	LastPlayDate    string
	StreakDays      int
	BestSpin        string // "None", если ещё не играл
	TotalBonusTurns int
	RemainingSpins  int
}
