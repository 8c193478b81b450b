package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"filmkeep/internal/config"
	"filmkeep/internal/logging"
)

// ErrLocked indicates another process holds the inventory database.
var ErrLocked = errors.New("inventory database is locked by another process")

// Store manages inventory persistence backed by SQLite. All mutations run
// on a single logical writer; the flock guards against a second process.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open initializes or connects to the inventory database, applies schema
// migrations, and runs the one-time data reconciliations. The store holds
// an exclusive file lock until Close.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire inventory lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "inventory"),
	}

	ctx := context.Background()
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	if err := store.reconcile(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the writer lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Stats returns record counts for diagnostics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, `
        SELECT
            (SELECT COUNT(1) FROM manufacturers),
            (SELECT COUNT(1) FROM films),
            (SELECT COUNT(1) FROM units),
            (SELECT COALESCE(SUM(quantity), 0) FROM units),
            (SELECT COUNT(1) FROM loaded_units),
            (SELECT COUNT(1) FROM finished_units)`)
	if err := row.Scan(
		&stats.Manufacturers,
		&stats.Films,
		&stats.Units,
		&stats.UnitQuantity,
		&stats.LoadedUnits,
		&stats.FinishedUnits,
	); err != nil {
		return Stats{}, fmt.Errorf("inventory stats: %w", err)
	}
	return stats, nil
}
