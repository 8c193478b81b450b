package expiry_test

import (
	"testing"
	"time"

	"filmkeep/internal/expiry"
)

func TestParseShapes(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"year only", "2027", time.Date(2027, time.December, 31, 0, 0, 0, 0, time.UTC), true},
		{"legacy six digit", "032027", time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC), true},
		{"month year", "03/2027", time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC), true},
		{"single digit month year", "3/2027", time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC), true},
		{"exact date", "03/15/2027", time.Date(2027, time.March, 15, 0, 0, 0, 0, time.UTC), true},
		{"legacy month out of range", "132027", time.Time{}, false},
		{"overflow day", "02/30/2027", time.Time{}, false},
		{"garbage", "soon", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"five digits", "32027", time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := expiry.Parse(tc.input)
			if ok != tc.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormatRoundTrips(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"2027", "2027"},
		{"032027", "03/2027"},
		{"03/2027", "03/2027"},
		{"3/2027", "03/2027"},
		{"03/15/2027", "03/15/2027"}, // exceeds the short-form length, passes through
		{"not a date", "not a date"},
	}
	for _, tc := range cases {
		got := expiry.Format(tc.input)
		if got != tc.want {
			t.Fatalf("Format(%q) = %q, want %q", tc.input, got, tc.want)
		}
		// Display formatting must be stable under repeated application.
		if again := expiry.Format(got); again != got {
			t.Fatalf("Format(Format(%q)) = %q, not stable", tc.input, again)
		}
	}
}

func TestEndOfGranularity(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2024", time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"022024", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{"02/2023", time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{"04/10/2024", time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := expiry.EndOfGranularity(tc.input)
		if !ok {
			t.Fatalf("EndOfGranularity(%q) failed", tc.input)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("EndOfGranularity(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsExpiredYearBoundary(t *testing.T) {
	// "2024" expires only after Dec 31 2024, not after Jan 1 2024.
	midYear := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	if expiry.IsExpired("2024", midYear) {
		t.Fatal("year-only expiry must not be expired mid-year")
	}
	newYearsEve := time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)
	if expiry.IsExpired("2024", newYearsEve) {
		t.Fatal("year-only expiry must survive through Dec 31")
	}
	newYearsDay := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !expiry.IsExpired("2024", newYearsDay) {
		t.Fatal("year-only expiry must be expired on Jan 1 of the next year")
	}
}

func TestIsExpiredMonthBoundary(t *testing.T) {
	lastOfMonth := time.Date(2027, time.March, 31, 8, 0, 0, 0, time.UTC)
	if expiry.IsExpired("03/2027", lastOfMonth) {
		t.Fatal("month expiry must survive through the last day of the month")
	}
	firstOfNext := time.Date(2027, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !expiry.IsExpired("03/2027", firstOfNext) {
		t.Fatal("month expiry must be expired on the first of the next month")
	}
}

func TestIsExpiredUnparseable(t *testing.T) {
	if expiry.IsExpired("mystery", time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("unparseable strings are never expired")
	}
}
