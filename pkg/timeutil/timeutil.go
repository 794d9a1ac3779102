// Package timeutil centralizes timezone handling. All user-facing calendar
// math (daily caps, streaks, activity dates, time-of-day achievement checks)
// runs in Korea Standard Time; storage stays UTC.
package timeutil

import "time"

// SeoulTZ is KST (UTC+9). Fixed zone: no DST, no tzdata dependency.
var SeoulTZ = time.FixedZone("Asia/Seoul", 9*60*60)

// Now returns the current time in KST.
func Now() time.Time {
	return time.Now().In(SeoulTZ)
}

// ToSeoul converts a time to KST.
func ToSeoul(t time.Time) time.Time {
	return t.In(SeoulTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a midnight KST time for the given calendar date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, SeoulTZ)
}

// StartOfDay returns midnight KST of the time's calendar date.
func StartOfDay(t time.Time) time.Time {
	kst := t.In(SeoulTZ)
	return time.Date(kst.Year(), kst.Month(), kst.Day(), 0, 0, 0, 0, SeoulTZ)
}

// Today returns midnight KST of the current date. This is the canonical
// activity-date bucket.
func Today() time.Time {
	return StartOfDay(Now())
}

// MonthKey formats a time as "YYYY-MM" in KST. Used as the rotation marker.
func MonthKey(t time.Time) string {
	return t.In(SeoulTZ).Format("2006-01")
}

// DateKey formats a time as "YYYY-MM-DD" in KST.
func DateKey(t time.Time) string {
	return t.In(SeoulTZ).Format("2006-01-02")
}

// IsSameDay reports whether two times fall on the same KST calendar date.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := t1.In(SeoulTZ), t2.In(SeoulTZ)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsConsecutiveDay reports whether t2 is exactly the KST day after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return DaysBetween(t1, t2) == 1
}

// DaysBetween returns whole KST calendar days from t1 to t2 (negative when
// t2 precedes t1).
func DaysBetween(t1, t2 time.Time) int {
	a := StartOfDay(t1)
	b := StartOfDay(t2)
	return int(b.Sub(a).Hours() / 24)
}

// HourOfDay returns the KST hour (0-23) of a timestamp. Drives the
// early-bird and night-owl achievement checks.
func HourOfDay(t time.Time) int {
	return t.In(SeoulTZ).Hour()
}

// IsEarlyBird reports whether a timestamp falls in the 05:00-06:59 window.
func IsEarlyBird(t time.Time) bool {
	h := HourOfDay(t)
	return h >= 5 && h < 7
}

// IsNightOwl reports whether a timestamp falls in the 22:00-01:59 window.
func IsNightOwl(t time.Time) bool {
	h := HourOfDay(t)
	return h >= 22 || h < 2
}

// FirstOfMonth returns midnight KST on the first day of the time's month.
func FirstOfMonth(t time.Time) time.Time {
	kst := t.In(SeoulTZ)
	return time.Date(kst.Year(), kst.Month(), 1, 0, 0, 0, 0, SeoulTZ)
}

// NextMonth returns midnight KST on the first day of the following month.
func NextMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, 0)
}
