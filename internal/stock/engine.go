// Package stock is the inventory mutation engine: adding stock with the
// two-phase film merge, roll-centric splitting, bulk edits, and batch
// deletion with cascade-on-empty film cleanup.
package stock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"filmkeep/internal/faults"
	"filmkeep/internal/inventory"
	"filmkeep/internal/logging"
)

// Engine applies mutations to the stock side of the inventory.
type Engine struct {
	store  *inventory.Store
	logger *slog.Logger
}

// NewEngine builds a mutation engine over the given store.
func NewEngine(store *inventory.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:  store,
		logger: logging.NewComponentLogger(logger, "stock"),
	}
}

// Candidate is one requested inventory addition, shaped like a form
// submission or an import row.
type Candidate struct {
	Manufacturer      string
	Name              string
	Type              inventory.FilmType
	Speed             int
	Format            inventory.Format
	CustomFormatLabel string
	Quantity          int
	ExpiryDates       []string
	Comments          string
	Frozen            bool
	ExposureCount     int
	CreatedAt         time.Time // zero means now
}

// ImageOverride carries an explicit product image choice for AddUnit.
type ImageOverride struct {
	Ref    string
	Source inventory.ImageSource
}

// FieldUpdate holds optional field overwrites for bulk edits. Nil fields
// are left untouched; set fields replace the stored value outright.
type FieldUpdate struct {
	ExpiryDates *[]string
	Frozen      *bool
	Exposures   *int
	Comments    *string
}

func (u FieldUpdate) apply(unit *inventory.Unit) {
	if u.ExpiryDates != nil {
		unit.ExpiryDates = append([]string(nil), (*u.ExpiryDates)...)
	}
	if u.Frozen != nil {
		unit.Frozen = *u.Frozen
	}
	if u.Exposures != nil {
		unit.ExposureCount = *u.Exposures
	}
	if u.Comments != nil {
		unit.Comments = *u.Comments
	}
}

func (c *Candidate) validate() error {
	if strings.TrimSpace(c.Manufacturer) == "" {
		return faults.Validation("add unit", "manufacturer is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return faults.Validation("add unit", "film name is required")
	}
	if c.Speed <= 0 {
		return faults.Validation("add unit", "native speed must be positive")
	}
	if c.Quantity <= 0 {
		return faults.Validation("add unit", "quantity must be positive")
	}
	if _, ok := inventory.ParseFormat(string(c.Format)); !ok {
		return faults.Validation("add unit", "unknown format "+string(c.Format))
	}
	return nil
}

// AddUnit adds stock for a candidate, merging into an existing film when
// one matches. The match runs in two phases: first on (name, manufacturer)
// alone, then on (type, speed) within those hits. A name match with a
// different type or speed is a distinct film sharing the display name, so
// pushed or pulled variants of one product stay separate. The returned
// merged flag reports whether an existing film was reused.
func (e *Engine) AddUnit(ctx context.Context, candidate Candidate, imageOverride *ImageOverride) (bool, error) {
	if err := candidate.validate(); err != nil {
		return false, err
	}

	maker, err := e.store.EnsureManufacturer(ctx, strings.TrimSpace(candidate.Manufacturer), true)
	if err != nil {
		return false, err
	}

	namesakes, err := e.store.FilmsByNameAndManufacturer(ctx, strings.TrimSpace(candidate.Name), maker.ID)
	if err != nil {
		return false, err
	}

	var film *inventory.Film
	for _, existing := range namesakes {
		if existing.Type == candidate.Type && existing.NativeSpeed == candidate.Speed {
			film = existing
			break
		}
	}

	merged := film != nil
	if merged {
		if imageOverride != nil {
			if err := e.store.SetFilmImage(ctx, film.ID, imageOverride.Ref, imageOverride.Source); err != nil {
				return false, err
			}
		}
	} else {
		film = &inventory.Film{
			Name:           strings.TrimSpace(candidate.Name),
			ManufacturerID: maker.ID,
			Type:           candidate.Type,
			NativeSpeed:    candidate.Speed,
			ImageSource:    inventory.ImageSourceNone,
		}
		if imageOverride != nil {
			film.ImageRef = imageOverride.Ref
			film.ImageSource = imageOverride.Source
		}
		if err := e.store.CreateFilm(ctx, film); err != nil {
			return false, err
		}
	}

	if candidate.Format.IsRoll() {
		err = e.addRollStock(ctx, film.ID, candidate)
	} else {
		err = e.addSheetStock(ctx, film.ID, candidate)
	}
	if err != nil {
		return false, err
	}

	e.logger.Info("stock added",
		logging.String("film", film.Name),
		logging.String("manufacturer", maker.Name),
		logging.String("format", string(candidate.Format)),
		logging.Int("quantity", candidate.Quantity),
		logging.Bool("merged", merged))
	return merged, nil
}

func (e *Engine) addRollStock(ctx context.Context, filmID int64, candidate Candidate) error {
	seed := &inventory.Unit{
		ID:                uuid.NewString(),
		FilmID:            filmID,
		Format:            candidate.Format,
		CustomFormatLabel: candidate.CustomFormatLabel,
		Quantity:          candidate.Quantity,
		ExpiryDates:       candidate.ExpiryDates,
		Comments:          candidate.Comments,
		Frozen:            candidate.Frozen,
		ExposureCount:     candidate.ExposureCount,
		CreatedAt:         candidate.CreatedAt,
	}
	return e.store.InsertUnits(ctx, inventory.SplitRoll(seed)...)
}

func (e *Engine) addSheetStock(ctx context.Context, filmID int64, candidate Candidate) error {
	existing, err := e.findSheetUnit(ctx, filmID, candidate.Format, candidate.CustomFormatLabel)
	if err != nil {
		return err
	}
	if existing == nil {
		return e.store.InsertUnits(ctx, &inventory.Unit{
			ID:                uuid.NewString(),
			FilmID:            filmID,
			Format:            candidate.Format,
			CustomFormatLabel: candidate.CustomFormatLabel,
			Quantity:          candidate.Quantity,
			ExpiryDates:       candidate.ExpiryDates,
			Comments:          candidate.Comments,
			Frozen:            candidate.Frozen,
			ExposureCount:     candidate.ExposureCount,
			CreatedAt:         candidate.CreatedAt,
		})
	}

	existing.Quantity += candidate.Quantity
	existing.ExpiryDates = unionDates(existing.ExpiryDates, candidate.ExpiryDates)
	if strings.TrimSpace(candidate.Comments) != "" {
		existing.Comments = candidate.Comments
	}
	existing.Frozen = candidate.Frozen
	return e.store.UpdateUnit(ctx, existing)
}

// findSheetUnit locates the divisible pool for a (film, format) pair.
// "Other" pools are further keyed by their custom label so unrelated
// custom formats do not collapse into one pool.
func (e *Engine) findSheetUnit(ctx context.Context, filmID int64, format inventory.Format, customLabel string) (*inventory.Unit, error) {
	units, err := e.store.UnitsByFilm(ctx, filmID)
	if err != nil {
		return nil, err
	}
	for _, unit := range units {
		if unit.Format != format {
			continue
		}
		if format == inventory.FormatOther && !strings.EqualFold(strings.TrimSpace(unit.CustomFormatLabel), strings.TrimSpace(customLabel)) {
			continue
		}
		return unit, nil
	}
	return nil, nil
}

func unionDates(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, date := range existing {
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}
		merged = append(merged, date)
	}
	for _, date := range incoming {
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}
		merged = append(merged, date)
	}
	return merged
}

// DeleteUnits removes every unit of the films matching the given keys and
// then deletes any film left without units. The films to check are
// snapshotted before any deletion so the cascade never reads a
// half-mutated collection.
func (e *Engine) DeleteUnits(ctx context.Context, keys []inventory.FilmKey) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	films, err := e.store.Films(ctx)
	if err != nil {
		return 0, err
	}

	wanted := make(map[inventory.FilmKey]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}

	type target struct {
		film    *inventory.Film
		unitIDs []string
	}
	var targets []target
	var allIDs []string
	for _, film := range films {
		if _, match := wanted[film.Key()]; !match {
			continue
		}
		units, err := e.store.UnitsByFilm(ctx, film.ID)
		if err != nil {
			return 0, err
		}
		ids := make([]string, 0, len(units))
		for _, unit := range units {
			ids = append(ids, unit.ID)
		}
		targets = append(targets, target{film: film, unitIDs: ids})
		allIDs = append(allIDs, ids...)
	}

	deleted, err := e.store.DeleteUnits(ctx, allIDs...)
	if err != nil {
		return deleted, err
	}

	deletedSet := make(map[string]struct{}, len(allIDs))
	for _, id := range allIDs {
		deletedSet[id] = struct{}{}
	}
	for _, tgt := range targets {
		remaining, err := e.store.UnitsByFilm(ctx, tgt.film.ID)
		if err != nil {
			return deleted, err
		}
		alive := 0
		for _, unit := range remaining {
			if _, gone := deletedSet[unit.ID]; !gone {
				alive++
			}
		}
		if alive == 0 {
			if err := e.store.DeleteFilm(ctx, tgt.film.ID); err != nil {
				return deleted, err
			}
			e.logger.Info("film removed with its last units", logging.String("film", tgt.film.Name))
		}
	}
	return deleted, nil
}

// UpdateUnitsByID overwrites the given fields across exactly the named
// units, the multi-select edit on a roll group.
func (e *Engine) UpdateUnitsByID(ctx context.Context, ids []string, update FieldUpdate) error {
	for _, id := range ids {
		unit, err := e.store.UnitByID(ctx, id)
		if err != nil {
			return err
		}
		if unit == nil {
			return faults.NotFound("update units", id)
		}
		update.apply(unit)
		if err := e.store.UpdateUnit(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// AddRolls clones count fresh single-quantity rolls from a template unit,
// copying its film and format and applying the given field overrides.
func (e *Engine) AddRolls(ctx context.Context, count int, templateUnitID string, update FieldUpdate) error {
	if count <= 0 {
		return faults.Validation("add rolls", "count must be positive")
	}
	template, err := e.store.UnitByID(ctx, templateUnitID)
	if err != nil {
		return err
	}
	if template == nil {
		return faults.NotFound("add rolls", templateUnitID)
	}
	if !template.Format.IsRoll() {
		return faults.Validation("add rolls", "template unit is not a roll format")
	}

	rolls := make([]*inventory.Unit, 0, count)
	for i := 0; i < count; i++ {
		roll := &inventory.Unit{
			ID:                uuid.NewString(),
			FilmID:            template.FilmID,
			Format:            template.Format,
			CustomFormatLabel: template.CustomFormatLabel,
			Quantity:          1,
		}
		update.apply(roll)
		rolls = append(rolls, roll)
	}
	if err := e.store.InsertUnits(ctx, rolls...); err != nil {
		return err
	}
	e.logger.Info("rolls added",
		logging.Int("count", count),
		logging.String("template", templateUnitID))
	return nil
}
