// Package student содержит доменную модель профиля ученика.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
//
// Инвариант: level/experience/xpForNextLevel всегда ровно то, что кривая
// уровней выдаёт из totalXP. Все агрегаты профиля выводимы заново из сырой
// истории активностей; расхождение - баг, который чинит maintenance-джоба.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrProfileNotFound - профиль не найден.
	ErrProfileNotFound = errors.New("student profile not found")

	// ErrProfileAlreadyExists - профиль уже существует.
	ErrProfileAlreadyExists = errors.New("student profile already exists")

	// ErrInvalidOwner - невалидный идентификатор владельца.
	ErrInvalidOwner = errors.New("invalid owner id")

	// ErrInvalidNickname - невалидное отображаемое имя.
	ErrInvalidNickname = errors.New("invalid nickname: must be 1-50 chars")

	// ErrNotOwner - вызывающий не владеет целевым профилем.
	ErrNotOwner = errors.New("caller does not own this profile")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile - накопительное, перевыводимое состояние прогрессии ученика.
// Мутируется исключительно оркестратором записи активности и начислением
// наград за достижения.
type Profile struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// OwnerID - непрозрачный идентификатор аутентифицированного пользователя.
	OwnerID string

	// Nickname - отображаемое имя.
	Nickname string

	// TotalXP - накопленный XP за всё время.
	TotalXP int

	// Level - текущий уровень, производный от TotalXP.
	Level int

	// Experience - прогресс внутри текущего уровня.
	Experience int

	// XPForNextLevel - сколько XP нужно для следующего уровня.
	XPForNextLevel int

	// Stats - пять характеристик персонажа.
	Stats shared.StatPoints

	// TotalMinutes - суммарные минуты всех активностей.
	TotalMinutes int

	// TotalDays - количество дней хотя бы с одной активностью.
	TotalDays int

	// CurrentStreak - текущая серия дней с полностью выполненным планом.
	CurrentStreak int

	// LongestStreak - лучшая серия за всё время.
	LongestStreak int

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewProfileParams содержит параметры для создания нового профиля.
type NewProfileParams struct {
	ID       string
	OwnerID  string
	Nickname string
}

// NewProfile создаёт новый профиль с валидацией и базовыми характеристиками.
func NewProfile(params NewProfileParams) (*Profile, error) {
	if params.ID == "" {
		return nil, errors.New("profile id is required")
	}

	if params.OwnerID == "" {
		return nil, ErrInvalidOwner
	}

	nickname := strings.TrimSpace(params.Nickname)
	if len(nickname) == 0 || len(nickname) > 50 {
		return nil, ErrInvalidNickname
	}

	now := time.Now().UTC()
	base := progression.InitialStatValue

	return &Profile{
		ID:             params.ID,
		OwnerID:        params.OwnerID,
		Nickname:       nickname,
		TotalXP:        0,
		Level:          1,
		Experience:     0,
		XPForNextLevel: progression.RequiredXP(1),
		Stats: shared.StatPoints{
			Strength:     base,
			Intelligence: base,
			Dexterity:    base,
			Charisma:     base,
			Vitality:     base,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// IsOwnedBy проверяет владение профилем.
func (p *Profile) IsOwnedBy(ownerID string) bool {
	return p.OwnerID == ownerID
}

// ApplyActivity инкрементирует агрегаты за одну записанную активность.
// firstOfDay - это первая активность календарного дня (определяется ДО вставки).
// Уровень здесь не трогается: его пересчитывает RefreshLevel.
func (p *Profile) ApplyActivity(xpEarned, minutes int, points shared.StatPoints, firstOfDay bool) {
	p.TotalXP += xpEarned
	p.TotalMinutes += minutes
	p.Stats = p.Stats.Add(points)
	if firstOfDay {
		p.TotalDays++
	}
	p.UpdatedAt = time.Now().UTC()
}

// GrantRewardXP начисляет XP награды за достижение.
func (p *Profile) GrantRewardXP(xp int) {
	if xp <= 0 {
		return
	}
	p.TotalXP += xp
	p.UpdatedAt = time.Now().UTC()
}

// RefreshLevel перевыводит level/experience/xpForNextLevel из TotalXP.
// Возвращает предыдущий и новый уровень. Единственный легальный способ
// изменить поле Level.
func (p *Profile) RefreshLevel() (previousLevel, newLevel int) {
	previousLevel = p.Level
	state := progression.LevelFromTotalXP(p.TotalXP)

	p.Level = state.Level
	p.Experience = state.Experience
	p.XPForNextLevel = state.RequiredXP
	p.UpdatedAt = time.Now().UTC()

	return previousLevel, state.Level
}

// GrantLevelUpBonus добавляет +1 к характеристике за категорию,
// прокачанную внутри пройденного уровня.
func (p *Profile) GrantLevelUpBonus(stat shared.Stat) {
	p.Stats = p.Stats.WithStat(stat, 1)
	p.UpdatedAt = time.Now().UTC()
}

// ContinueStreak продолжает серию: +1, если вчерашний план был выполнен,
// иначе сброс к 1. LongestStreak - бегущий максимум.
func (p *Profile) ContinueStreak(yesterdayCompleted bool) (previous int, broken bool) {
	previous = p.CurrentStreak

	if yesterdayCompleted {
		p.CurrentStreak++
	} else {
		broken = previous > 1
		p.CurrentStreak = 1
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.UpdatedAt = time.Now().UTC()

	return previous, broken
}

// HasActiveStreak возвращает true, если серия сейчас активна.
func (p *Profile) HasActiveStreak() bool {
	return p.CurrentStreak > 0
}

// MilestoneCrossed возвращает наименьший кратный десяти рубеж, пройденный
// между previousLevel и newLevel, и false, если рубежей не пройдено.
// За один прыжок сигнализируется ровно один рубеж - наименьший.
func MilestoneCrossed(previousLevel, newLevel int) (int, bool) {
	if newLevel <= previousLevel {
		return 0, false
	}
	first := (previousLevel/10 + 1) * 10
	if first <= newLevel {
		return first, true
	}
	return 0, false
}

// String возвращает строковое представление профиля для логирования.
func (p *Profile) String() string {
	return fmt.Sprintf(
		"Profile{ID: %s, Level: %d, TotalXP: %d, Streak: %d}",
		p.ID, p.Level, p.TotalXP, p.CurrentStreak,
	)
}

// Clone создаёт глубокую копию профиля.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
