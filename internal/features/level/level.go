// Package level описывает кривую уровней, чистое отображение XP → уровень и прогресс.
//
// Пороги: <100 → 1, <250 → 2, <500 → 3, <1000 → 4, <2000 → 5, иначе 6 (максимум).
package level

// MaxLevel: последний уровень кривой.
const MaxLevel = 6

// thresholds[i]: XP, с которого начинается уровень i+2.
var thresholds = []int{100, 250, 500, 1000, 2000}

// rewardTitles: косметические награды, объявляемые при достижении уровня.
var rewardTitles = map[int]string{
	2: "Bonus avatar",
	3: "Zlatni skin",
	4: "Epic theme",
	5: "Legend status",
	6: "Master title",
}

// Info: полная сводка уровня для отображения.
type Info struct {
	Level      int
	XP         int
	NextLevel  int     // Порог следующего уровня, на максимуме = XP
	XPToNext   int     // Сколько не хватает, на максимуме 0
	Progress   float64 // 0..1 внутри текущего уровня
	IsMaxLevel bool
}

// Calculate возвращает уровень для XP. Отрицательный XP считается нулём.
func Calculate(xp int) int {
	for i, t := range thresholds {
		if xp < t {
			return i + 1
		}
	}
	return MaxLevel
}

// XPForNextLevel возвращает порог следующего уровня.
// На максимальном уровне возвращает текущий XP.
func XPForNextLevel(xp int) int {
	lvl := Calculate(xp)
	if lvl >= MaxLevel {
		return xp
	}
	return thresholds[lvl-1]
}

// previousThreshold: нижняя граница текущего уровня.
func previousThreshold(lvl int) int {
	if lvl <= 1 {
		return 0
	}
	return thresholds[lvl-2]
}

// Progress возвращает долю пройденного внутри уровня, ограниченную [0, 1].
func Progress(xp int) float64 {
	lvl := Calculate(xp)
	if lvl >= MaxLevel {
		return 1.0
	}
	prev := previousThreshold(lvl)
	next := thresholds[lvl-1]
	p := float64(xp-prev) / float64(next-prev)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Describe собирает Info для XP.
func Describe(xp int) Info {
	lvl := Calculate(xp)
	next := XPForNextLevel(xp)
	toNext := next - xp
	if toNext < 0 {
		toNext = 0
	}
	return Info{
		Level:      lvl,
		XP:         xp,
		NextLevel:  next,
		XPToNext:   toNext,
		Progress:   Progress(xp),
		IsMaxLevel: lvl >= MaxLevel,
	}
}

// RewardTitle возвращает награду за достижение уровня или "" для уровня 1.
func RewardTitle(lvl int) string {
	return rewardTitles[lvl]
}
