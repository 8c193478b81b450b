package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"filmkeep/internal/faults"
)

// ManufacturerByName fetches a manufacturer by its exact, case-sensitive
// name. Returns nil when missing.
func (s *Store) ManufacturerByName(ctx context.Context, name string) (*Manufacturer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_custom FROM manufacturers WHERE name = ?`, name)
	m, err := scanManufacturer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get manufacturer", name, err)
	}
	return m, nil
}

// EnsureManufacturer resolves a manufacturer by exact name, creating it
// when missing.
func (s *Store) EnsureManufacturer(ctx context.Context, name string, custom bool) (*Manufacturer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, faults.Validation("ensure manufacturer", "name must not be empty")
	}

	existing, err := s.ManufacturerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO manufacturers (name, is_custom) VALUES (?, ?)`, name, boolToInt(custom))
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "insert manufacturer", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "insert manufacturer", "last insert id", err)
	}
	return &Manufacturer{ID: id, Name: name, IsCustom: custom}, nil
}

// Manufacturers returns all manufacturers ordered by name.
func (s *Store) Manufacturers(ctx context.Context) ([]*Manufacturer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_custom FROM manufacturers ORDER BY name`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list manufacturers", "", err)
	}
	defer rows.Close()

	var result []*Manufacturer
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manufacturer: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// CountManufacturers reports how many manufacturers exist; the catalog
// seeder uses this to decide whether to run.
func (s *Store) CountManufacturers(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM manufacturers`)
	if err := row.Scan(&count); err != nil {
		return 0, faults.Wrap(faults.ErrStorage, "count manufacturers", "", err)
	}
	return count, nil
}

// DeleteManufacturer removes a manufacturer by name. Refused while any
// film still references it.
func (s *Store) DeleteManufacturer(ctx context.Context, name string) error {
	m, err := s.ManufacturerByName(ctx, name)
	if err != nil {
		return err
	}
	if m == nil {
		return faults.NotFound("delete manufacturer", name)
	}

	var referencing int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM films WHERE manufacturer_id = ?`, m.ID)
	if err := row.Scan(&referencing); err != nil {
		return faults.Wrap(faults.ErrStorage, "delete manufacturer", "count films", err)
	}
	if referencing > 0 {
		return faults.Conflict("delete manufacturer", fmt.Sprintf("%s still has %d film(s)", name, referencing))
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM manufacturers WHERE id = ?`, m.ID); err != nil {
		return faults.Wrap(faults.ErrStorage, "delete manufacturer", name, err)
	}
	return nil
}

func scanManufacturer(scanner interface{ Scan(dest ...any) error }) (*Manufacturer, error) {
	var (
		id     int64
		name   string
		custom int
	)
	if err := scanner.Scan(&id, &name, &custom); err != nil {
		return nil, err
	}
	return &Manufacturer{ID: id, Name: name, IsCustom: custom != 0}, nil
}
