// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: STUDENTS AND ACTIVITY LOG
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students and activities
-- Version: 001

-- Student profiles. Aggregate columns (total_xp, level, stats, streaks) are
-- derived from the activity log and repairable by replay.
CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY,
    owner_id TEXT NOT NULL UNIQUE,
    nickname VARCHAR(50) NOT NULL,
    total_xp INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    experience INTEGER NOT NULL DEFAULT 0,
    xp_for_next_level INTEGER NOT NULL DEFAULT 100,
    strength INTEGER NOT NULL DEFAULT 10,
    intelligence INTEGER NOT NULL DEFAULT 10,
    dexterity INTEGER NOT NULL DEFAULT 10,
    charisma INTEGER NOT NULL DEFAULT 10,
    vitality INTEGER NOT NULL DEFAULT 10,
    total_minutes INTEGER NOT NULL DEFAULT 0,
    total_days INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_total_xp CHECK (total_xp >= 0),
    CONSTRAINT valid_level CHECK (level >= 1 AND level <= 100),
    CONSTRAINT valid_streak CHECK (current_streak >= 0 AND longest_streak >= current_streak)
);

CREATE INDEX IF NOT EXISTS idx_students_owner_id ON students(owner_id);

-- Append-only activity log. XP and stat points are frozen at recording time;
-- later cap or weight changes never rewrite history.
CREATE TABLE IF NOT EXISTS activities (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    category VARCHAR(20) NOT NULL,
    minutes INTEGER NOT NULL,
    title VARCHAR(200) NOT NULL,
    description VARCHAR(500) NOT NULL DEFAULT '',
    xp_earned INTEGER NOT NULL DEFAULT 0,
    strength INTEGER NOT NULL DEFAULT 0,
    intelligence INTEGER NOT NULL DEFAULT 0,
    dexterity INTEGER NOT NULL DEFAULT 0,
    charisma INTEGER NOT NULL DEFAULT 0,
    vitality INTEGER NOT NULL DEFAULT 0,
    activity_date DATE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_category CHECK (category IN ('STUDY', 'EXERCISE', 'READING', 'HOBBY', 'VOLUNTEER', 'OTHER')),
    CONSTRAINT valid_minutes CHECK (minutes >= 1 AND minutes <= 60),
    CONSTRAINT valid_xp_earned CHECK (xp_earned >= 0)
);

CREATE INDEX IF NOT EXISTS idx_activities_student_date ON activities(student_id, activity_date);
CREATE INDEX IF NOT EXISTS idx_activities_student_created ON activities(student_id, created_at);
`

const migration001Down = `
DROP TABLE IF EXISTS activities;
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: DAILY PLANS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create daily plans
-- Version: 002

-- One plan per student per calendar date.
CREATE TABLE IF NOT EXISTS plans (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    plan_date DATE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(student_id, plan_date)
);

CREATE TABLE IF NOT EXISTS plan_items (
    id UUID PRIMARY KEY,
    plan_id UUID NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
    category VARCHAR(20) NOT NULL,
    target_minutes INTEGER NOT NULL,
    title VARCHAR(200) NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    actual_minutes INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0,

    CONSTRAINT valid_item_category CHECK (category IN ('STUDY', 'EXERCISE', 'READING', 'HOBBY', 'VOLUNTEER', 'OTHER'))
);

CREATE INDEX IF NOT EXISTS idx_plan_items_plan_id ON plan_items(plan_id);
CREATE INDEX IF NOT EXISTS idx_plans_student_date ON plans(student_id, plan_date);
`

const migration002Down = `
DROP TABLE IF EXISTS plan_items;
DROP TABLE IF EXISTS plans;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: BADGES AND ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create badges, achievement catalog, progress and history
-- Version: 003

-- Earned badges. The unique key enforces at-most-once awarding per tier.
CREATE TABLE IF NOT EXISTS badges (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    badge_type VARCHAR(20) NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT '',
    tier VARCHAR(10) NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_tier CHECK (tier IN ('bronze', 'silver', 'gold')),
    UNIQUE(student_id, badge_type, category, tier)
);

CREATE INDEX IF NOT EXISTS idx_badges_student_id ON badges(student_id);

-- Achievement catalog. Base entries stay active forever; monthly entries are
-- toggled by the rotation job, stamped with the month they were offered.
CREATE TABLE IF NOT EXISTS achievement_definitions (
    code VARCHAR(50) PRIMARY KEY,
    title VARCHAR(100) NOT NULL,
    description VARCHAR(300) NOT NULL,
    icon VARCHAR(20) NOT NULL DEFAULT '',
    difficulty VARCHAR(10) NOT NULL,
    check_type VARCHAR(30) NOT NULL,
    check_param VARCHAR(20) NOT NULL DEFAULT '',
    target INTEGER NOT NULL,
    reward_xp INTEGER NOT NULL DEFAULT 0,
    monthly BOOLEAN NOT NULL DEFAULT FALSE,
    theme_month INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT FALSE,
    active_month VARCHAR(7) NOT NULL DEFAULT '',

    CONSTRAINT valid_difficulty CHECK (difficulty IN ('easy', 'medium', 'hard', 'legendary')),
    CONSTRAINT valid_target CHECK (target >= 1),
    CONSTRAINT valid_theme_month CHECK (theme_month >= 0 AND theme_month <= 12)
);

CREATE INDEX IF NOT EXISTS idx_achievement_definitions_active ON achievement_definitions(active) WHERE active;

-- Per-student progress against active catalog entries. claimed_reward is the
-- fencing token: reward XP is granted in the same transaction that sets it.
CREATE TABLE IF NOT EXISTS achievement_progress (
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    code VARCHAR(50) NOT NULL,
    current INTEGER NOT NULL DEFAULT 0,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE,
    claimed_reward BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (student_id, code)
);

-- Archive of completed achievements, written before each monthly wipe so
-- granted reward XP stays re-derivable.
CREATE TABLE IF NOT EXISTS achievement_history (
    id BIGSERIAL PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    code VARCHAR(50) NOT NULL,
    title VARCHAR(100) NOT NULL,
    month_key VARCHAR(7) NOT NULL,
    reward_xp INTEGER NOT NULL DEFAULT 0,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL,
    archived_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_achievement_history_student ON achievement_history(student_id, archived_at DESC);

-- Singleton rotation marker. A rotation for an already-marked month is a no-op.
CREATE TABLE IF NOT EXISTS rotation_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_rotated_month VARCHAR(7) NOT NULL DEFAULT '',
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration003Down = `
DROP TABLE IF EXISTS rotation_state;
DROP TABLE IF EXISTS achievement_history;
DROP TABLE IF EXISTS achievement_progress;
DROP TABLE IF EXISTS achievement_definitions;
DROP TABLE IF EXISTS badges;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_students_and_activities",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_plans",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_badges_and_achievements",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
