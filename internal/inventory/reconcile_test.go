package inventory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"filmkeep/internal/config"
	"filmkeep/internal/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := Open(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func resetDataMigration(t *testing.T, store *Store, name string) {
	t.Helper()
	if _, err := store.db.Exec(`DELETE FROM data_migrations WHERE name = ?`, name); err != nil {
		t.Fatalf("reset data migration %s: %v", name, err)
	}
}

func TestOpenRecordsDataMigrationFlags(t *testing.T) {
	store := openTestStore(t)

	rows, err := store.db.Query(`SELECT name FROM data_migrations ORDER BY name`)
	if err != nil {
		t.Fatalf("query data_migrations: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan name: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate names: %v", err)
	}

	want := []string{"camera_name_backfill", "roll_centric_normalization"}
	if len(names) != len(want) {
		t.Fatalf("expected %d recorded migrations, got %v", len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected migration %q at position %d, got %v", name, i, names)
		}
	}
}

func TestReconcileSplitsLegacyRollUnits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	maker, err := store.EnsureManufacturer(ctx, "Kodak", false)
	if err != nil {
		t.Fatalf("EnsureManufacturer: %v", err)
	}
	film := &Film{Name: "Gold 200", ManufacturerID: maker.ID, Type: FilmTypeColor, NativeSpeed: 200}
	if err := store.CreateFilm(ctx, film); err != nil {
		t.Fatalf("CreateFilm: %v", err)
	}

	// A legacy aggregated roll record and a sheet pool that must stay whole.
	legacyRoll := &Unit{ID: uuid.NewString(), FilmID: film.ID, Format: Format35mm, Quantity: 3, ExpiryDates: []string{"2027"}}
	sheetPool := &Unit{ID: uuid.NewString(), FilmID: film.ID, Format: Format4x5, Quantity: 25}
	if err := store.InsertUnits(ctx, legacyRoll, sheetPool); err != nil {
		t.Fatalf("InsertUnits: %v", err)
	}

	resetDataMigration(t, store, "roll_centric_normalization")
	if err := store.reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	units, err := store.UnitsByFilm(ctx, film.ID)
	if err != nil {
		t.Fatalf("UnitsByFilm: %v", err)
	}
	var rolls, sheets int
	keptOriginalID := false
	for _, unit := range units {
		if unit.Format.IsRoll() {
			rolls++
			if unit.Quantity != 1 {
				t.Errorf("roll unit %s quantity = %d, want 1", unit.ID, unit.Quantity)
			}
			if len(unit.ExpiryDates) != 1 || unit.ExpiryDates[0] != "2027" {
				t.Errorf("roll unit %s dates = %v", unit.ID, unit.ExpiryDates)
			}
			if unit.ID == legacyRoll.ID {
				keptOriginalID = true
			}
		} else {
			sheets++
			if unit.Quantity != 25 {
				t.Errorf("sheet pool quantity = %d, want 25", unit.Quantity)
			}
		}
	}
	if rolls != 3 || sheets != 1 {
		t.Fatalf("rolls = %d sheets = %d after reconcile", rolls, sheets)
	}
	if !keptOriginalID {
		t.Error("one split roll should keep the legacy identifier")
	}

	// A second run is a no-op: the flag is back in place.
	if err := store.reconcile(ctx); err != nil {
		t.Fatalf("reconcile rerun: %v", err)
	}
	units, err = store.UnitsByFilm(ctx, film.ID)
	if err != nil {
		t.Fatalf("UnitsByFilm: %v", err)
	}
	if len(units) != 4 {
		t.Errorf("unit count changed on rerun: %d", len(units))
	}
}

func TestReconcileBackfillsCameraNames(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	maker, err := store.EnsureManufacturer(ctx, "Ilford", false)
	if err != nil {
		t.Fatalf("EnsureManufacturer: %v", err)
	}
	film := &Film{Name: "FP4 Plus", ManufacturerID: maker.ID, Type: FilmTypeBW, NativeSpeed: 125}
	if err := store.CreateFilm(ctx, film); err != nil {
		t.Fatalf("CreateFilm: %v", err)
	}
	camera, err := store.EnsureCamera(ctx, "Pentax 67")
	if err != nil {
		t.Fatalf("EnsureCamera: %v", err)
	}

	// A finished row written before the snapshot column existed.
	legacyID := uuid.NewString()
	_, err = store.db.Exec(
		`INSERT INTO finished_units (id, film_id, format, camera_id, quantity, loaded_at, finished_at, status)
         VALUES (?, ?, '120', ?, 1, '2025-01-02T00:00:00Z', '2025-01-05T00:00:00Z', 'to_develop')`,
		legacyID, film.ID, camera.ID)
	if err != nil {
		t.Fatalf("insert legacy finished unit: %v", err)
	}

	resetDataMigration(t, store, "camera_name_backfill")
	if err := store.reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	finished, err := store.FinishedUnitByID(ctx, legacyID)
	if err != nil {
		t.Fatalf("FinishedUnitByID: %v", err)
	}
	if finished.CameraName != "Pentax 67" {
		t.Errorf("camera name = %q, want Pentax 67", finished.CameraName)
	}
}
