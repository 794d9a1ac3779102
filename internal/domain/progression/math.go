// Package progression содержит чистую математику прогрессии: кривую уровней,
// веса категорий и конвертацию XP в очки характеристик.
// Это ядро бизнес-логики - здесь нет внешних зависимостей и никакого I/O.
package progression

import (
	"math"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// BaseLevelXP - XP, необходимый для перехода с 1-го на 2-й уровень.
	BaseLevelXP = 100

	// GrowthFactor - множитель роста требуемого XP на каждый уровень.
	GrowthFactor = 1.1

	// MaxLevel - максимальный уровень; выше движок не продвигает.
	MaxLevel = 100

	// InitialStatValue - базовое значение каждой характеристики.
	InitialStatValue = 10

	// xpStep - XP начисляется только целыми блоками по 10 минут.
	xpStep = 10
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL CURVE
// Единственный источник истины для уровня: ни один путь кода не имеет права
// выставлять level, минуя LevelFromTotalXP.
// ══════════════════════════════════════════════════════════════════════════════

// LevelState - производное состояние уровня для данного totalXP.
type LevelState struct {
	// Level - текущий уровень (1..MaxLevel).
	Level int

	// Experience - прогресс внутри текущего уровня.
	Experience int

	// RequiredXP - сколько XP нужно для следующего уровня.
	RequiredXP int
}

// RequiredXP возвращает XP, необходимый для перехода с уровня level на level+1.
// Формула: floor(BaseLevelXP * GrowthFactor^(level-1)). Монотонно возрастает.
func RequiredXP(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return int(math.Floor(BaseLevelXP * math.Pow(GrowthFactor, float64(level-1))))
}

// LevelFromTotalXP вычисляет уровень по накопленному XP методом
// последовательного вычитания. Детерминирована и идемпотентна.
func LevelFromTotalXP(totalXP int) LevelState {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	remainder := totalXP

	for level < MaxLevel && remainder >= RequiredXP(level) {
		remainder -= RequiredXP(level)
		level++
	}

	// На максимальном уровне прогресс замораживается у порога.
	if level == MaxLevel {
		required := RequiredXP(MaxLevel)
		if remainder > required {
			remainder = required
		}
		return LevelState{Level: level, Experience: remainder, RequiredXP: required}
	}

	return LevelState{Level: level, Experience: remainder, RequiredXP: RequiredXP(level)}
}

// XPRangeForLevel возвращает окно накопленного XP [minTotal, maxTotal),
// принадлежащее уровню level. Используется для атрибуции категорий,
// прокачанных "внутри" уровня, при начислении бонусов за level-up.
func XPRangeForLevel(level int) (minTotal, maxTotal int) {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	for l := 1; l < level; l++ {
		minTotal += RequiredXP(l)
	}
	maxTotal = minTotal + RequiredXP(level)
	return minTotal, maxTotal
}

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY MAPPING & WEIGHTS
// ══════════════════════════════════════════════════════════════════════════════

// CategoryToStat возвращает характеристику, которую прокачивает категория.
// EXERCISE→strength, STUDY и READING→intelligence, HOBBY→dexterity,
// VOLUNTEER→charisma, OTHER→vitality.
func CategoryToStat(category shared.Category) shared.Stat {
	switch category {
	case shared.CategoryExercise:
		return shared.StatStrength
	case shared.CategoryStudy, shared.CategoryReading:
		return shared.StatIntelligence
	case shared.CategoryHobby:
		return shared.StatDexterity
	case shared.CategoryVolunteer:
		return shared.StatCharisma
	default:
		return shared.StatVitality
	}
}

// CategoryXPWeight возвращает множитель XP для категории.
// STUDY самый высокий, OTHER самый низкий.
func CategoryXPWeight(category shared.Category) float64 {
	switch category {
	case shared.CategoryStudy:
		return 1.5
	case shared.CategoryReading:
		return 1.3
	case shared.CategoryExercise:
		return 1.2
	case shared.CategoryVolunteer:
		return 1.1
	case shared.CategoryHobby:
		return 1.0
	default:
		return 0.8
	}
}

// BaseXP возвращает базовый XP за minutes минут: floor(minutes/10)*10.
// Минуты ниже следующего кратного десяти ничего не добавляют.
func BaseXP(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return (minutes / xpStep) * xpStep
}

// StatPoints конвертирует заработанный XP в очки характеристики: floor(xp/10).
func StatPoints(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp / xpStep
}

// StatPointsFor возвращает закрытую запись очков характеристик,
// начисляемых за xp в данной категории.
func StatPointsFor(category shared.Category, xp int) shared.StatPoints {
	return shared.StatPoints{}.WithStat(CategoryToStat(category), StatPoints(xp))
}
