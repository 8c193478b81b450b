package inventory

import (
	"strings"
	"time"
)

// FilmType classifies the emulsion of a film product.
type FilmType string

const (
	FilmTypeBW      FilmType = "bw"
	FilmTypeColor   FilmType = "color"
	FilmTypeSlide   FilmType = "slide"
	FilmTypeInstant FilmType = "instant"
)

var allFilmTypes = []FilmType{FilmTypeBW, FilmTypeColor, FilmTypeSlide, FilmTypeInstant}

// ParseFilmType converts user or import input into a known FilmType.
// Matching is case-insensitive and accepts the common spellings.
func ParseFilmType(value string) (FilmType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "bw", "b&w", "b/w", "black & white", "black and white":
		return FilmTypeBW, true
	case "color", "colour":
		return FilmTypeColor, true
	case "slide", "e-6", "e6":
		return FilmTypeSlide, true
	case "instant":
		return FilmTypeInstant, true
	}
	return "", false
}

// AllFilmTypes returns the ordered list of known film types.
func AllFilmTypes() []FilmType {
	cp := make([]FilmType, len(allFilmTypes))
	copy(cp, allFilmTypes)
	return cp
}

// DisplayName renders the film type for cards and export.
func (t FilmType) DisplayName() string {
	if t == FilmTypeBW {
		return "B&W"
	}
	return titleCaser.String(string(t))
}

// ImageSource records where a film's product image came from.
type ImageSource string

const (
	ImageSourceNone    ImageSource = "none"
	ImageSourceAuto    ImageSource = "auto"
	ImageSourceCatalog ImageSource = "catalog"
	ImageSourceCustom  ImageSource = "custom"
)

// DevelopStatus tracks a finished unit through development. Any status is
// reachable from any other; this is user bookkeeping, not a workflow.
type DevelopStatus string

const (
	StatusToDevelop     DevelopStatus = "to_develop"
	StatusInDevelopment DevelopStatus = "in_development"
	StatusDeveloped     DevelopStatus = "developed"
)

// ParseDevelopStatus converts a string into a known DevelopStatus.
func ParseDevelopStatus(value string) (DevelopStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch DevelopStatus(normalized) {
	case StatusToDevelop:
		return StatusToDevelop, true
	case StatusInDevelopment:
		return StatusInDevelopment, true
	case StatusDeveloped:
		return StatusDeveloped, true
	}
	return "", false
}

// Manufacturer is a film maker, either seeded from the bundled catalog or
// added by the user. Name is the unique, case-sensitive key.
type Manufacturer struct {
	ID       int64
	Name     string
	IsCustom bool
}

// Film is a product definition, not a physical item. Two entries with the
// same name and manufacturer but different native speeds are distinct
// films, not variants of one.
type Film struct {
	ID               int64
	Name             string
	ManufacturerID   int64
	ManufacturerName string // joined on read
	Type             FilmType
	NativeSpeed      int
	ImageRef         string
	ImageSource      ImageSource
}

// FilmKey is the merge identity of a film.
type FilmKey struct {
	Name         string
	Manufacturer string
	Type         FilmType
	Speed        int
}

// Key returns the film's merge identity.
func (f *Film) Key() FilmKey {
	return FilmKey{Name: f.Name, Manufacturer: f.ManufacturerName, Type: f.Type, Speed: f.NativeSpeed}
}

// Unit is one physical-inventory record: a single roll, or a divisible
// pool of sheets. Roll formats settle at quantity 1 per unit; sheet
// formats may hold quantity > 1 as one pool.
type Unit struct {
	ID                string
	FilmID            int64
	Format            Format
	CustomFormatLabel string
	Quantity          int
	ExpiryDates       []string
	Comments          string
	Frozen            bool
	ExposureCount     int // meaningful only for 35mm; 0 when unset
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LoadedUnit is film sitting in a camera. UnitID goes empty when the
// source unit record was deleted underneath it.
type LoadedUnit struct {
	ID                string
	UnitID            string
	FilmID            int64
	Format            Format
	CustomFormatLabel string
	CameraID          int64
	CameraName        string // joined on read
	Quantity          int
	LoadedAt          time.Time
	ShotAtISO         int // 0 when shooting at the film's native speed
}

// FinishedUnit is the append-only record created by unloading. CameraName
// is a snapshot taken at creation so camera attribution survives camera
// deletion; CameraID is the original reference kept for legacy backfill.
type FinishedUnit struct {
	ID                string
	FilmID            int64
	Format            Format
	CustomFormatLabel string
	CameraID          int64
	CameraName        string
	Quantity          int
	LoadedAt          time.Time
	FinishedAt        time.Time
	ShotAtISO         int
	Status            DevelopStatus
}

// EffectiveISO returns the speed the roll was shot at.
func (f *FinishedUnit) EffectiveISO(nativeSpeed int) int {
	if f.ShotAtISO > 0 {
		return f.ShotAtISO
	}
	return nativeSpeed
}

// Camera is a place film gets loaded into. Deletion is refused while any
// loaded unit references it.
type Camera struct {
	ID                int64
	Name              string
	DefaultFormat     Format
	CustomFormatLabel string
}

// Stats summarizes store contents for diagnostics.
type Stats struct {
	Manufacturers int
	Films         int
	Units         int
	UnitQuantity  int
	LoadedUnits   int
	FinishedUnits int
}
