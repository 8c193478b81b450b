package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"filmkeep/internal/faults"
	"filmkeep/internal/inventory"
	"filmkeep/internal/logging"
	"filmkeep/internal/testsupport"
)

func TestOpenRefusesSecondWriter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_ = testsupport.MustOpenStore(t, cfg)

	if _, err := inventory.Open(cfg, logging.NewNop()); !errors.Is(err, inventory.ErrLocked) {
		t.Fatalf("second open should fail with ErrLocked, got %v", err)
	}
}

func TestUnitRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	film := testsupport.MustFilm(t, store, "Kodak", "Portra 400", inventory.FilmTypeColor, 400)
	unit := &inventory.Unit{
		ID:          uuid.NewString(),
		FilmID:      film.ID,
		Format:      inventory.Format35mm,
		Quantity:    1,
		ExpiryDates: []string{"03/2027"},
		Comments:    "bought at the fair",
		Frozen:      true,
	}
	if err := store.InsertUnits(ctx, unit); err != nil {
		t.Fatalf("InsertUnits: %v", err)
	}

	got, err := store.UnitByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("UnitByID: %v", err)
	}
	if got == nil {
		t.Fatal("unit not found after insert")
	}
	if got.FilmID != film.ID || got.Format != inventory.Format35mm || !got.Frozen {
		t.Errorf("unit fields did not survive: %+v", got)
	}
	if len(got.ExpiryDates) != 1 || got.ExpiryDates[0] != "03/2027" {
		t.Errorf("expiry dates = %v", got.ExpiryDates)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should be filled on insert")
	}

	got.Comments = ""
	got.Quantity = 1
	got.Frozen = false
	if err := store.UpdateUnit(ctx, got); err != nil {
		t.Fatalf("UpdateUnit: %v", err)
	}
	updated, err := store.UnitByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("UnitByID after update: %v", err)
	}
	if updated.Frozen || updated.Comments != "" {
		t.Errorf("update not persisted: %+v", updated)
	}

	deleted, err := store.DeleteUnits(ctx, unit.ID)
	if err != nil {
		t.Fatalf("DeleteUnits: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	gone, err := store.UnitByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("UnitByID after delete: %v", err)
	}
	if gone != nil {
		t.Error("unit still present after delete")
	}
}

func TestLoadedLifecycleQuantities(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	film := testsupport.MustFilm(t, store, "Ilford", "HP5 Plus", inventory.FilmTypeBW, 400)
	unit := &inventory.Unit{ID: uuid.NewString(), FilmID: film.ID, Format: inventory.Format35mm, Quantity: 1}
	if err := store.InsertUnits(ctx, unit); err != nil {
		t.Fatalf("InsertUnits: %v", err)
	}
	camera, err := store.EnsureCamera(ctx, "Nikon FM2")
	if err != nil {
		t.Fatalf("EnsureCamera: %v", err)
	}

	loaded := &inventory.LoadedUnit{
		ID:       uuid.NewString(),
		UnitID:   unit.ID,
		FilmID:   film.ID,
		Format:   unit.Format,
		CameraID: camera.ID,
		Quantity: 1,
		LoadedAt: time.Now().UTC(),
	}
	if err := store.CreateLoadedUnit(ctx, loaded, 0); err != nil {
		t.Fatalf("CreateLoadedUnit: %v", err)
	}

	source, err := store.UnitByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("UnitByID: %v", err)
	}
	if source.Quantity != 0 {
		t.Errorf("source quantity after load = %d, want 0", source.Quantity)
	}

	all, err := store.LoadedUnits(ctx)
	if err != nil {
		t.Fatalf("LoadedUnits: %v", err)
	}
	if len(all) != 1 || all[0].CameraName != "Nikon FM2" {
		t.Fatalf("loaded list = %+v", all)
	}

	// Camera deletion is refused while the unit sits in it.
	if err := store.DeleteCamera(ctx, "Nikon FM2"); !errors.Is(err, faults.ErrConflict) {
		t.Errorf("DeleteCamera with loaded film should conflict, got %v", err)
	}

	finished := &inventory.FinishedUnit{
		ID:         uuid.NewString(),
		FilmID:     film.ID,
		Format:     unit.Format,
		CameraID:   camera.ID,
		CameraName: camera.Name,
		Quantity:   1,
		LoadedAt:   loaded.LoadedAt,
		FinishedAt: time.Now().UTC(),
		Status:     inventory.StatusToDevelop,
	}
	if err := store.FinishLoadedUnit(ctx, loaded.ID, 0, finished); err != nil {
		t.Fatalf("FinishLoadedUnit: %v", err)
	}

	all, err = store.LoadedUnits(ctx)
	if err != nil {
		t.Fatalf("LoadedUnits: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("loaded list should be empty after finish, got %d", len(all))
	}
	source, err = store.UnitByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("UnitByID: %v", err)
	}
	if source.Quantity != 0 {
		t.Errorf("finishing must not restore source quantity, got %d", source.Quantity)
	}

	// Camera name survives even after the camera itself goes away.
	if err := store.DeleteCamera(ctx, "Nikon FM2"); err != nil {
		t.Fatalf("DeleteCamera after finish: %v", err)
	}
	gotFinished, err := store.FinishedUnitByID(ctx, finished.ID)
	if err != nil {
		t.Fatalf("FinishedUnitByID: %v", err)
	}
	if gotFinished.CameraName != "Nikon FM2" {
		t.Errorf("camera name snapshot = %q", gotFinished.CameraName)
	}

	if err := store.UpdateFinishedStatus(ctx, finished.ID, inventory.StatusDeveloped); err != nil {
		t.Fatalf("UpdateFinishedStatus: %v", err)
	}
	gotFinished, err = store.FinishedUnitByID(ctx, finished.ID)
	if err != nil {
		t.Fatalf("FinishedUnitByID: %v", err)
	}
	if gotFinished.Status != inventory.StatusDeveloped {
		t.Errorf("status = %q", gotFinished.Status)
	}
}

func TestDeleteLoadedUnitRestoresSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	film := testsupport.MustFilm(t, store, "Fujifilm", "Provia 100F", inventory.FilmTypeSlide, 100)
	unit := &inventory.Unit{ID: uuid.NewString(), FilmID: film.ID, Format: inventory.Format4x5, Quantity: 10}
	if err := store.InsertUnits(ctx, unit); err != nil {
		t.Fatalf("InsertUnits: %v", err)
	}
	camera, err := store.EnsureCamera(ctx, "Crown Graphic")
	if err != nil {
		t.Fatalf("EnsureCamera: %v", err)
	}

	loaded := &inventory.LoadedUnit{
		ID:       uuid.NewString(),
		UnitID:   unit.ID,
		FilmID:   film.ID,
		Format:   unit.Format,
		CameraID: camera.ID,
		Quantity: 4,
		LoadedAt: time.Now().UTC(),
	}
	if err := store.CreateLoadedUnit(ctx, loaded, 6); err != nil {
		t.Fatalf("CreateLoadedUnit: %v", err)
	}

	if err := store.DeleteLoadedUnitRestoring(ctx, loaded.ID, unit.ID, 10); err != nil {
		t.Fatalf("DeleteLoadedUnitRestoring: %v", err)
	}
	source, err := store.UnitByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("UnitByID: %v", err)
	}
	if source.Quantity != 10 {
		t.Errorf("restored quantity = %d, want 10", source.Quantity)
	}

	if err := store.DeleteLoadedUnitRestoring(ctx, loaded.ID, "", 0); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("deleting a gone loaded unit should be not found, got %v", err)
	}
}

func TestReloadFinishedUnit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	film := testsupport.MustFilm(t, store, "Kodak", "Tri-X 400", inventory.FilmTypeBW, 400)
	camera, err := store.EnsureCamera(ctx, "Leica M6")
	if err != nil {
		t.Fatalf("EnsureCamera: %v", err)
	}

	loadedAt := time.Now().UTC().Add(-time.Hour)
	finished := &inventory.FinishedUnit{
		ID:         uuid.NewString(),
		FilmID:     film.ID,
		Format:     inventory.Format35mm,
		CameraID:   camera.ID,
		CameraName: camera.Name,
		Quantity:   1,
		LoadedAt:   loadedAt,
		FinishedAt: time.Now().UTC(),
		ShotAtISO:  1600,
		Status:     inventory.StatusToDevelop,
	}
	// A loaded row with no source unit, so FinishLoadedUnit has something
	// to consume.
	loaded := &inventory.LoadedUnit{
		ID:       uuid.NewString(),
		FilmID:   film.ID,
		Format:   inventory.Format35mm,
		CameraID: camera.ID,
		Quantity: 1,
		LoadedAt: loadedAt,
	}
	if err := store.CreateLoadedUnit(ctx, loaded, 0); err != nil {
		t.Fatalf("CreateLoadedUnit: %v", err)
	}
	if err := store.FinishLoadedUnit(ctx, loaded.ID, 0, finished); err != nil {
		t.Fatalf("FinishLoadedUnit: %v", err)
	}

	reloaded := &inventory.LoadedUnit{
		ID:        uuid.NewString(),
		FilmID:    film.ID,
		Format:    inventory.Format35mm,
		CameraID:  camera.ID,
		Quantity:  1,
		LoadedAt:  loadedAt,
		ShotAtISO: 1600,
	}
	if err := store.ReloadFinishedUnit(ctx, finished.ID, reloaded); err != nil {
		t.Fatalf("ReloadFinishedUnit: %v", err)
	}

	if got, err := store.FinishedUnitByID(ctx, finished.ID); err != nil || got != nil {
		t.Errorf("finished unit should be gone, got %+v err %v", got, err)
	}
	all, err := store.LoadedUnits(ctx)
	if err != nil {
		t.Fatalf("LoadedUnits: %v", err)
	}
	if len(all) != 1 || all[0].ShotAtISO != 1600 {
		t.Fatalf("reloaded list = %+v", all)
	}

	if err := store.ReloadFinishedUnit(ctx, finished.ID, reloaded); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("reloading twice should be not found, got %v", err)
	}
}

func TestFilmMergeLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustFilm(t, store, "Ilford", "Delta", inventory.FilmTypeBW, 100)
	testsupport.MustFilm(t, store, "Ilford", "Delta", inventory.FilmTypeBW, 400)

	maker, err := store.ManufacturerByName(ctx, "Ilford")
	if err != nil {
		t.Fatalf("ManufacturerByName: %v", err)
	}
	films, err := store.FilmsByNameAndManufacturer(ctx, "Delta", maker.ID)
	if err != nil {
		t.Fatalf("FilmsByNameAndManufacturer: %v", err)
	}
	if len(films) != 2 {
		t.Fatalf("expected both speed variants, got %d", len(films))
	}
	if films[0].NativeSpeed == films[1].NativeSpeed {
		t.Error("variants should keep distinct native speeds")
	}
}

func TestDeleteManufacturerConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	film := testsupport.MustFilm(t, store, "Foma", "Fomapan 100", inventory.FilmTypeBW, 100)
	if err := store.DeleteManufacturer(ctx, "Foma"); !errors.Is(err, faults.ErrConflict) {
		t.Errorf("delete with films should conflict, got %v", err)
	}
	if err := store.DeleteFilm(ctx, film.ID); err != nil {
		t.Fatalf("DeleteFilm: %v", err)
	}
	if err := store.DeleteManufacturer(ctx, "Foma"); err != nil {
		t.Fatalf("DeleteManufacturer after film removal: %v", err)
	}
}
