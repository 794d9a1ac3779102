package achievement

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// STATIC CATALOG
// ══════════════════════════════════════════════════════════════════════════════
//
// The catalog is compiled, immutable data. Runtime activation state lives in
// the store; this table is the seed the store is synced from. Codes are
// stable forever: history rows reference them after rotation.

// baseDefinitions are always active for every student.
var baseDefinitions = []Definition{
	{
		Code:        "first_step",
		Title:       "첫 걸음",
		Description: "첫 활동을 기록하세요",
		Icon:        "footprints",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckTotalActivities,
		Target:      1,
		RewardXP:    50,
		Active:      true,
	},
	{
		Code:        "getting_started",
		Title:       "시동 걸기",
		Description: "활동 10개를 기록하세요",
		Icon:        "rocket",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckTotalActivities,
		Target:      10,
		RewardXP:    100,
		Active:      true,
	},
	{
		Code:        "habit_forming",
		Title:       "습관 만들기",
		Description: "3일 연속 활동을 기록하세요",
		Icon:        "calendar-check",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckConsecutiveDays,
		Target:      3,
		RewardXP:    100,
		Active:      true,
	},
	{
		Code:        "week_warrior",
		Title:       "일주일 전사",
		Description: "7일 연속 활동을 기록하세요",
		Icon:        "flame",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckConsecutiveDays,
		Target:      7,
		RewardXP:    250,
		Active:      true,
	},
	{
		Code:        "level_10",
		Title:       "두 자리 레벨",
		Description: "레벨 10에 도달하세요",
		Icon:        "trending-up",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckLevel,
		Target:      10,
		RewardXP:    300,
		Active:      true,
	},
	{
		Code:        "level_30",
		Title:       "베테랑",
		Description: "레벨 30에 도달하세요",
		Icon:        "award",
		Difficulty:  DifficultyHard,
		CheckType:   CheckLevel,
		Target:      30,
		RewardXP:    800,
		Active:      true,
	},
	{
		Code:        "time_collector",
		Title:       "시간 수집가",
		Description: "총 1,000분을 기록하세요",
		Icon:        "clock",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckTotalMinutes,
		Target:      1000,
		RewardXP:    300,
		Active:      true,
	},
	{
		Code:        "renaissance",
		Title:       "팔방미인",
		Description: "여섯 가지 카테고리를 모두 경험하세요",
		Icon:        "sparkles",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckUniqueCategories,
		Target:      6,
		RewardXP:    400,
		Active:      true,
	},
	{
		Code:        "perfect_week",
		Title:       "완벽한 일주일",
		Description: "계획을 전부 완료한 날을 7일 만드세요",
		Icon:        "check-circle",
		Difficulty:  DifficultyHard,
		CheckType:   CheckPerfectDays,
		Target:      7,
		RewardXP:    700,
		Active:      true,
	},
	{
		Code:        "hundred_days",
		Title:       "백일장",
		Description: "100일 연속 활동을 기록하세요",
		Icon:        "crown",
		Difficulty:  DifficultyLegendary,
		CheckType:   CheckConsecutiveDays,
		Target:      100,
		RewardXP:    3000,
		Active:      true,
	},
}

// themeDefinitions carry a ThemeMonth and are offered only in that month.
var themeDefinitions = []Definition{
	{
		Code:        "new_year_sprint",
		Title:       "새해 스프린트",
		Description: "1월에 공부 활동 20개를 기록하세요",
		Icon:        "party-popper",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckCategoryCount,
		CheckParam:  "STUDY",
		Target:      20,
		RewardXP:    400,
		Monthly:     true,
		ThemeMonth:  1,
	},
	{
		Code:        "spring_reader",
		Title:       "봄맞이 독서가",
		Description: "3월에 독서 600분을 기록하세요",
		Icon:        "book-open",
		Difficulty:  DifficultyHard,
		CheckType:   CheckCategoryMinutes,
		CheckParam:  "READING",
		Target:      600,
		RewardXP:    700,
		Monthly:     true,
		ThemeMonth:  3,
	},
	{
		Code:        "summer_mover",
		Title:       "여름 무브",
		Description: "7월에 운동 활동 15개를 기록하세요",
		Icon:        "dumbbell",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckCategoryCount,
		CheckParam:  "EXERCISE",
		Target:      15,
		RewardXP:    400,
		Monthly:     true,
		ThemeMonth:  7,
	},
	{
		Code:        "vacation_scholar",
		Title:       "방학 모범생",
		Description: "8월에 공부 900분을 기록하세요",
		Icon:        "graduation-cap",
		Difficulty:  DifficultyHard,
		CheckType:   CheckCategoryMinutes,
		CheckParam:  "STUDY",
		Target:      900,
		RewardXP:    800,
		Monthly:     true,
		ThemeMonth:  8,
	},
	{
		Code:        "harvest_helper",
		Title:       "가을 일손",
		Description: "10월에 봉사 활동 5개를 기록하세요",
		Icon:        "hand-heart",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckCategoryCount,
		CheckParam:  "VOLUNTEER",
		Target:      5,
		RewardXP:    250,
		Monthly:     true,
		ThemeMonth:  10,
	},
	{
		Code:        "year_end_finisher",
		Title:       "유종의 미",
		Description: "12월에 완벽한 하루를 10일 만드세요",
		Icon:        "medal",
		Difficulty:  DifficultyLegendary,
		CheckType:   CheckPerfectDays,
		Target:      10,
		RewardXP:    1500,
		Monthly:     true,
		ThemeMonth:  12,
	},
}

// poolDefinitions are the rotation pool, sampled by difficulty each month.
var poolDefinitions = []Definition{
	{
		Code:        "daily_double",
		Title:       "하루 두 번",
		Description: "이번 달에 활동 40개를 기록하세요",
		Icon:        "layers",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckTotalActivities,
		Target:      40,
		RewardXP:    150,
		Monthly:     true,
	},
	{
		Code:        "quick_thousand",
		Title:       "천 분 돌파",
		Description: "이번 달에 총 1,000분을 채우세요",
		Icon:        "timer",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckTotalMinutes,
		Target:      1000,
		RewardXP:    150,
		Monthly:     true,
	},
	{
		Code:        "fresh_streak",
		Title:       "새 불씨",
		Description: "5일 연속 활동을 기록하세요",
		Icon:        "flame",
		Difficulty:  DifficultyEasy,
		CheckType:   CheckConsecutiveDays,
		Target:      5,
		RewardXP:    150,
		Monthly:     true,
	},
	{
		Code:        "pomodoro_fan",
		Title:       "뽀모도로 입문",
		Description: "25-30분짜리 집중 세션을 10회 기록하세요",
		Icon:        "tomato",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckPomodoroSessions,
		Target:      10,
		RewardXP:    350,
		Monthly:     true,
	},
	{
		Code:        "early_bird",
		Title:       "얼리버드",
		Description: "오전 5-7시 사이에 활동을 5회 기록하세요",
		Icon:        "sunrise",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckEarlyBird,
		Target:      5,
		RewardXP:    350,
		Monthly:     true,
	},
	{
		Code:        "night_owl",
		Title:       "올빼미",
		Description: "밤 10시-새벽 2시 사이에 활동을 5회 기록하세요",
		Icon:        "moon",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckNightOwl,
		Target:      5,
		RewardXP:    350,
		Monthly:     true,
	},
	{
		Code:        "balanced_diet",
		Title:       "골고루",
		Description: "네 가지 이상의 카테고리를 경험하세요",
		Icon:        "pie-chart",
		Difficulty:  DifficultyMedium,
		CheckType:   CheckUniqueCategories,
		Target:      4,
		RewardXP:    300,
		Monthly:     true,
	},
	{
		Code:        "study_marathon",
		Title:       "공부 마라톤",
		Description: "공부 1,200분을 기록하세요",
		Icon:        "book",
		Difficulty:  DifficultyHard,
		CheckType:   CheckCategoryMinutes,
		CheckParam:  "STUDY",
		Target:      1200,
		RewardXP:    800,
		Monthly:     true,
	},
	{
		Code:        "iron_body",
		Title:       "강철 체력",
		Description: "운동 600분을 기록하세요",
		Icon:        "dumbbell",
		Difficulty:  DifficultyHard,
		CheckType:   CheckCategoryMinutes,
		CheckParam:  "EXERCISE",
		Target:      600,
		RewardXP:    800,
		Monthly:     true,
	},
	{
		Code:        "pomodoro_master",
		Title:       "뽀모도로 마스터",
		Description: "25-30분짜리 집중 세션을 30회 기록하세요",
		Icon:        "trophy",
		Difficulty:  DifficultyHard,
		CheckType:   CheckPomodoroSessions,
		Target:      30,
		RewardXP:    900,
		Monthly:     true,
	},
	{
		Code:        "perfect_month",
		Title:       "완벽한 한 달",
		Description: "완벽한 하루를 20일 만드세요",
		Icon:        "gem",
		Difficulty:  DifficultyLegendary,
		CheckType:   CheckPerfectDays,
		Target:      20,
		RewardXP:    2500,
		Monthly:     true,
	},
	{
		Code:        "relentless",
		Title:       "쉼 없는 전진",
		Description: "30일 연속 활동을 기록하세요",
		Icon:        "zap",
		Difficulty:  DifficultyLegendary,
		CheckType:   CheckConsecutiveDays,
		Target:      30,
		RewardXP:    2500,
		Monthly:     true,
	},
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG ACCESS
// ══════════════════════════════════════════════════════════════════════════════

// Catalog is an immutable, code-indexed view over the compiled definitions.
type Catalog struct {
	byCode map[string]Definition
}

// NewCatalog compiles the static tables into a catalog.
func NewCatalog() *Catalog {
	c := &Catalog{byCode: make(map[string]Definition)}
	for _, set := range [][]Definition{baseDefinitions, themeDefinitions, poolDefinitions} {
		for _, def := range set {
			c.byCode[def.Code] = def
		}
	}
	return c
}

// Get returns a definition by code.
func (c *Catalog) Get(code string) (Definition, bool) {
	def, ok := c.byCode[code]
	return def, ok
}

// Base returns the always-active entries.
func (c *Catalog) Base() []Definition {
	return c.filter(func(d Definition) bool { return !d.Monthly })
}

// ThemedFor returns the theme entries tagged for a calendar month (1-12).
func (c *Catalog) ThemedFor(month int) []Definition {
	return c.filter(func(d Definition) bool { return d.Monthly && d.ThemeMonth == month })
}

// PoolByDifficulty returns rotation-pool entries of one difficulty.
func (c *Catalog) PoolByDifficulty(diff Difficulty) []Definition {
	return c.filter(func(d Definition) bool {
		return d.Monthly && d.ThemeMonth == 0 && d.Difficulty == diff
	})
}

// All returns every definition, sorted by code.
func (c *Catalog) All() []Definition {
	return c.filter(func(Definition) bool { return true })
}

func (c *Catalog) filter(keep func(Definition) bool) []Definition {
	var out []Definition
	for _, def := range c.byCode {
		if keep(def) {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
