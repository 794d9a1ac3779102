// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY CATEGORY
// ══════════════════════════════════════════════════════════════════════════════

// Category is the fixed enumeration of activity categories.
type Category string

const (
	CategoryStudy     Category = "STUDY"
	CategoryExercise  Category = "EXERCISE"
	CategoryReading   Category = "READING"
	CategoryHobby     Category = "HOBBY"
	CategoryVolunteer Category = "VOLUNTEER"
	CategoryOther     Category = "OTHER"
)

// AllCategories returns every valid category in a stable order.
func AllCategories() []Category {
	return []Category{
		CategoryStudy,
		CategoryExercise,
		CategoryReading,
		CategoryHobby,
		CategoryVolunteer,
		CategoryOther,
	}
}

// IsValid reports whether the category is part of the fixed enumeration.
func (c Category) IsValid() bool {
	switch c {
	case CategoryStudy, CategoryExercise, CategoryReading,
		CategoryHobby, CategoryVolunteer, CategoryOther:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the category.
func (c Category) String() string {
	return string(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHARACTER STATS
// ══════════════════════════════════════════════════════════════════════════════

// Stat names one of the five character attributes grown by activities.
type Stat string

const (
	StatStrength     Stat = "strength"
	StatIntelligence Stat = "intelligence"
	StatDexterity    Stat = "dexterity"
	StatCharisma     Stat = "charisma"
	StatVitality     Stat = "vitality"
)

// AllStats returns every stat in a stable order.
func AllStats() []Stat {
	return []Stat{StatStrength, StatIntelligence, StatDexterity, StatCharisma, StatVitality}
}

// StatPoints is the closed per-stat breakdown awarded by an activity.
// A fixed record instead of a dynamic map keeps lookups type-safe.
type StatPoints struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Dexterity    int `json:"dexterity"`
	Charisma     int `json:"charisma"`
	Vitality     int `json:"vitality"`
}

// Get returns the value for the named stat.
func (p StatPoints) Get(s Stat) int {
	switch s {
	case StatStrength:
		return p.Strength
	case StatIntelligence:
		return p.Intelligence
	case StatDexterity:
		return p.Dexterity
	case StatCharisma:
		return p.Charisma
	case StatVitality:
		return p.Vitality
	default:
		return 0
	}
}

// Add returns the element-wise sum of two breakdowns.
func (p StatPoints) Add(other StatPoints) StatPoints {
	return StatPoints{
		Strength:     p.Strength + other.Strength,
		Intelligence: p.Intelligence + other.Intelligence,
		Dexterity:    p.Dexterity + other.Dexterity,
		Charisma:     p.Charisma + other.Charisma,
		Vitality:     p.Vitality + other.Vitality,
	}
}

// WithStat returns a copy with the named stat incremented by delta.
func (p StatPoints) WithStat(s Stat, delta int) StatPoints {
	switch s {
	case StatStrength:
		p.Strength += delta
	case StatIntelligence:
		p.Intelligence += delta
	case StatDexterity:
		p.Dexterity += delta
	case StatCharisma:
		p.Charisma += delta
	case StatVitality:
		p.Vitality += delta
	}
	return p
}

// Total returns the sum across all five stats.
func (p StatPoints) Total() int {
	return p.Strength + p.Intelligence + p.Dexterity + p.Charisma + p.Vitality
}
