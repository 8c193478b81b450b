package inventory

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"filmkeep/internal/faults"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// applyMigrations brings the schema up to date. Every pending .sql file
// under migrations/ runs in lexical order inside a single transaction,
// with applied versions recorded in schema_migrations. Data-shape
// reconciliation happens separately, after the schema settles.
func (s *Store) applyMigrations(ctx context.Context) error {
	names, err := fs.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "migrate", "list schema files", err)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "migrate", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return faults.Wrap(faults.ErrStorage, "migrate", "ensure schema_migrations", err)
	}

	applied := map[string]bool{}
	rows, err := tx.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "migrate", "load applied versions", err)
	}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return faults.Wrap(faults.ErrStorage, "migrate", "scan version", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return faults.Wrap(faults.ErrStorage, "migrate", "iterate versions", err)
	}
	rows.Close()

	for _, name := range names {
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		if applied[version] {
			continue
		}
		statements, err := schemaFS.ReadFile(name)
		if err != nil {
			return faults.Wrap(faults.ErrStorage, "migrate", version, err)
		}
		if _, err := tx.ExecContext(ctx, string(statements)); err != nil {
			return faults.Wrap(faults.ErrStorage, "apply migration", version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return faults.Wrap(faults.ErrStorage, "record migration", version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStorage, "migrate", "commit", err)
	}
	return nil
}
