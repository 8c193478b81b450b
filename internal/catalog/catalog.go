// Package catalog seeds the bundled manufacturer list into fresh
// databases.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"filmkeep/internal/inventory"
	"filmkeep/internal/logging"
)

//go:embed manufacturers.toml
var manufacturersTOML []byte

type manifest struct {
	Manufacturers []string `toml:"manufacturers"`
}

// Manufacturers returns the bundled manufacturer names in catalog order.
func Manufacturers() ([]string, error) {
	var m manifest
	if err := toml.Unmarshal(manufacturersTOML, &m); err != nil {
		return nil, fmt.Errorf("parse bundled catalog: %w", err)
	}
	names := make([]string, 0, len(m.Manufacturers))
	for _, name := range m.Manufacturers {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names, nil
}

// Seed inserts the bundled manufacturers into an empty store. A store that
// already holds any manufacturer is left alone, so user data always wins.
func Seed(ctx context.Context, store *inventory.Store, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "catalog")

	count, err := store.CountManufacturers(ctx)
	if err != nil {
		return fmt.Errorf("count manufacturers: %w", err)
	}
	if count > 0 {
		return nil
	}

	names, err := Manufacturers()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := store.EnsureManufacturer(ctx, name, false); err != nil {
			return fmt.Errorf("seed manufacturer %s: %w", name, err)
		}
	}
	logger.Info("seeded manufacturer catalog", logging.Int("count", len(names)))
	return nil
}
