package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expiry strings arrive in four shapes, tried in this order:
//
//	"2027"       year only
//	"032027"     legacy MMYYYY, all digits
//	"03/2027"    month/year
//	"03/15/2027" month/day/year
//
// Anything else fails to parse and is passed through display formatting
// unchanged.

const shortFormLength = 7 // len("MM/YYYY")

// Parse converts an expiry string into its canonical comparison date:
// year-only values canonicalize to Dec 31 of that year, month forms to the
// first day of the month, exact dates to themselves. The boolean reports
// whether the string matched a known shape.
func Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if year, ok := parseYearOnly(value); ok {
		return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), true
	}
	if month, year, ok := parseLegacy(value); ok {
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
	}

	segments := strings.Split(value, "/")
	switch len(segments) {
	case 2:
		month, year, ok := parseMonthYear(segments[0], segments[1])
		if !ok {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
	case 3:
		return parseExact(segments[0], segments[1], segments[2])
	default:
		return time.Time{}, false
	}
}

// EndOfGranularity rounds an expiry string to the end of its precision:
// year strings to Dec 31, month strings to the last day of the month,
// exact dates to themselves. Expired checks must use this rounding or
// flags go wrong near month and year boundaries.
func EndOfGranularity(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if year, ok := parseYearOnly(value); ok {
		return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), true
	}
	if month, year, ok := parseLegacy(value); ok {
		return lastDayOfMonth(year, month), true
	}

	segments := strings.Split(value, "/")
	switch len(segments) {
	case 2:
		month, year, ok := parseMonthYear(segments[0], segments[1])
		if !ok {
			return time.Time{}, false
		}
		return lastDayOfMonth(year, month), true
	case 3:
		return parseExact(segments[0], segments[1], segments[2])
	}
	return time.Time{}, false
}

// IsExpired reports whether the expiry string, rounded to the end of its
// granularity, falls strictly before the start of the given day. Strings
// that fail to parse are never considered expired.
func IsExpired(value string, today time.Time) bool {
	end, ok := EndOfGranularity(value)
	if !ok {
		return false
	}
	startOfDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return end.Before(startOfDay)
}

// Format renders an expiry string for display. Year-only values pass
// through, legacy six-digit values become MM/YYYY, short month/year forms
// are re-rendered as MM/YYYY, and anything longer than the short form
// (including full dates) passes through unchanged.
func Format(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}
	if _, ok := parseYearOnly(trimmed); ok {
		return trimmed
	}
	if month, year, ok := parseLegacy(trimmed); ok {
		return fmt.Sprintf("%02d/%04d", month, year)
	}
	if len(trimmed) > shortFormLength {
		return value
	}
	segments := strings.Split(trimmed, "/")
	if len(segments) == 2 {
		if month, year, ok := parseMonthYear(segments[0], segments[1]); ok {
			return fmt.Sprintf("%02d/%04d", month, year)
		}
	}
	return value
}

func parseYearOnly(value string) (int, bool) {
	if len(value) != 4 || !allDigits(value) {
		return 0, false
	}
	year, err := strconv.Atoi(value)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

func parseLegacy(value string) (month, year int, ok bool) {
	if len(value) != 6 || !allDigits(value) {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(value[:2])
	year, _ = strconv.Atoi(value[2:])
	if month < 1 || month > 12 || year <= 0 {
		return 0, 0, false
	}
	return month, year, true
}

func parseMonthYear(monthStr, yearStr string) (month, year int, ok bool) {
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	year, err = strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year <= 0 {
		return 0, 0, false
	}
	return month, year, true
}

func parseExact(monthStr, dayStr, yearStr string) (time.Time, bool) {
	month, year, ok := parseMonthYear(monthStr, yearStr)
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (02/30 becomes 03/01); reject those.
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return date, true
}

func lastDayOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC)
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(value) > 0
}
