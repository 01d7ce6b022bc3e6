// Package shop реализует магазин наград за XP.
// models.go описывает каталог и результаты покупок.
package shop

import (
	"time"

	"serotonyl.ru/mainquest/internal/features/economy"
	"serotonyl.ru/mainquest/internal/store"
)

// DefaultCatalog: стартовый каталог, записывается в пустую таблицу наград.
var DefaultCatalog = []store.Reward{
	{Name: "🎨 Zlatni Avatar", Description: "Ekskluzivni zlatni avatar frame", XPCost: 100},
	{Name: "🌟 Premium Theme", Description: "Lijepa tema s gradijentima", XPCost: 150},
	{Name: "🏆 Champion Badge", Description: "Pokazuje da si pravi prvak!", XPCost: 200},
	{Name: "💎 Diamond Status", Description: "Dijamantski status za elitne igrače", XPCost: 300},
	{Name: "🎯 Double XP Boost", Description: "Dupli XP za sljedeće 3 dana", XPCost: 250},
	{Name: "🎪 Bonus Wheel Spins", Description: "5 dodatnih okretaja kotača sreće", XPCost: 120},
	{Name: "👑 VIP Title", Description: "Ekskluzivni VIP naslov", XPCost: 400},
	{Name: "🌈 Rainbow Theme", Description: "Šarena tema s rainbow efektima", XPCost: 180},
	{Name: "⚡ Lightning Badge", Description: "Za brze i efikasne igrače", XPCost: 160},
	{Name: "🔥 Streak Master", Description: "Za održavanje dugih streakova", XPCost: 220},
}

// OwnedReward: купленная награда вместе с позицией каталога.
type OwnedReward struct {
	Reward     store.Reward
	UnlockedAt time.Time
}

// Receipt: результат успешной покупки.
type Receipt struct {
	Reward   store.Reward
	Unlocked store.UnlockedReward
	Change   economy.Change
}
