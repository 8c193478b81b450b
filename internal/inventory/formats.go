package inventory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format identifies the physical film format of a unit.
type Format string

const (
	Format35mm  Format = "35mm"
	Format120   Format = "120"
	Format110   Format = "110"
	Format127   Format = "127"
	Format220   Format = "220"
	Format4x5   Format = "4x5"
	Format5x7   Format = "5x7"
	Format8x10  Format = "8x10"
	FormatOther Format = "other"
)

var allFormats = []Format{
	Format35mm,
	Format120,
	Format110,
	Format127,
	Format220,
	Format4x5,
	Format5x7,
	Format8x10,
	FormatOther,
}

var rollFormats = map[Format]struct{}{
	Format35mm: {},
	Format120:  {},
	Format110:  {},
	Format127:  {},
	Format220:  {},
}

var titleCaser = cases.Title(language.English)

// AllFormats returns the ordered list of known formats.
func AllFormats() []Format {
	cp := make([]Format, len(allFormats))
	copy(cp, allFormats)
	return cp
}

// IsRoll reports whether the format is a discrete roll: one physical roll
// per unit, quantity pinned at 1 in steady state.
func (f Format) IsRoll() bool {
	_, ok := rollFormats[f]
	return ok
}

// IsSheet reports whether the format is a divisible pool (sheet film or a
// custom "other" format).
func (f Format) IsSheet() bool {
	return !f.IsRoll()
}

// DisplayName renders the format for tables and export.
func (f Format) DisplayName() string {
	switch f {
	case Format4x5, Format5x7, Format8x10:
		return string(f) + " sheet"
	case FormatOther:
		return "Other"
	default:
		return string(f)
	}
}

// DisplayLabel renders a unit's format, preferring the custom label for
// "other" formats.
func DisplayLabel(format Format, customLabel string) string {
	if format == FormatOther && strings.TrimSpace(customLabel) != "" {
		return titleCaser.String(strings.TrimSpace(customLabel))
	}
	return format.DisplayName()
}

// ParseFormat matches input against format codes and display names,
// case-insensitively. "135" is accepted as an alias for 35mm. Unmatched
// strings do not parse; importers fall back to FormatOther with the raw
// value preserved as a custom label.
func ParseFormat(value string) (Format, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	if strings.EqualFold(trimmed, "135") {
		return Format35mm, true
	}
	for _, format := range allFormats {
		if strings.EqualFold(trimmed, string(format)) || strings.EqualFold(trimmed, format.DisplayName()) {
			return format, true
		}
	}
	return "", false
}
