package testsupport

import (
	"context"
	"testing"

	"filmkeep/internal/config"
	"filmkeep/internal/inventory"
	"filmkeep/internal/logging"
)

// MustOpenStore opens an inventory.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *inventory.Store {
	t.Helper()

	store, err := inventory.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("inventory.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustFilm creates a film with its manufacturer for tests.
func MustFilm(t testing.TB, store *inventory.Store, manufacturer, name string, filmType inventory.FilmType, speed int) *inventory.Film {
	t.Helper()

	ctx := context.Background()
	maker, err := store.EnsureManufacturer(ctx, manufacturer, false)
	if err != nil {
		t.Fatalf("EnsureManufacturer: %v", err)
	}
	film := &inventory.Film{
		Name:           name,
		ManufacturerID: maker.ID,
		Type:           filmType,
		NativeSpeed:    speed,
	}
	if err := store.CreateFilm(ctx, film); err != nil {
		t.Fatalf("CreateFilm: %v", err)
	}
	film.ManufacturerName = maker.Name
	return film
}
