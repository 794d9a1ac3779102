package progression

import (
	"math"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY LIMIT POLICY
// Анти-гейминг: дневные лимиты минут по категориям. Поверх лимита начисляется
// только плоский минимум, чтобы не поощрять накрутку, но и не обнулять.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// OverCapFlatXP - плоский XP за активность в насыщенной категории.
	OverCapFlatXP = 10

	// StreakBonusMultiplier - бонус за активную серию выполненных планов.
	StreakBonusMultiplier = 1.2

	// MaxSessionMinutes - максимум минут в одной записи активности.
	MaxSessionMinutes = 60

	// MaxDailyActivities - максимум записей активности за день.
	MaxDailyActivities = 30

	// MaxDailyMinutes - суммарный лимит минут за день (24 часа).
	MaxDailyMinutes = 1440
)

// DailyCap возвращает дневной лимит минут для категории.
func DailyCap(category shared.Category) int {
	switch category {
	case shared.CategoryStudy:
		return 300
	case shared.CategoryReading:
		return 180
	case shared.CategoryExercise, shared.CategoryHobby, shared.CategoryVolunteer:
		return 60
	default:
		return 30
	}
}

// RemainingMinutes возвращает остаток дневного лимита категории.
func RemainingMinutes(category shared.Category, loggedToday int) int {
	remaining := DailyCap(category) - loggedToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ComputeXP вычисляет XP для предлагаемой активности с учётом уже
// залогированных сегодня минут в этой категории.
//
// Правила:
//   - категория уже на лимите: плоский OverCapFlatXP независимо от минут;
//   - активность целиком в пределах лимита: floor(BaseXP * вес * серия);
//   - активность пересекает лимит: взвешенный XP за минуты в пределах лимита
//     плюс плоский OverCapFlatXP за переполнение. Именно сплит-плюс-плоский,
//     без пропорционального размытия.
func ComputeXP(minutes int, category shared.Category, loggedToday int, hasActiveStreak bool) int {
	if minutes <= 0 {
		return 0
	}

	limit := DailyCap(category)

	// Категория насыщена до этой активности.
	if loggedToday >= limit {
		return OverCapFlatXP
	}

	remaining := limit - loggedToday

	// Целиком в пределах лимита.
	if minutes <= remaining {
		return weightedXP(minutes, category, hasActiveStreak)
	}

	// Пересечение лимита: сплит.
	return weightedXP(remaining, category, hasActiveStreak) + OverCapFlatXP
}

// weightedXP возвращает floor(BaseXP(minutes) * вес категории * бонус серии).
func weightedXP(minutes int, category shared.Category, hasActiveStreak bool) int {
	xp := float64(BaseXP(minutes)) * CategoryXPWeight(category)
	if hasActiveStreak {
		xp *= StreakBonusMultiplier
	}
	return int(math.Floor(xp))
}
