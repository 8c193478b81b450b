package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filmkeep/internal/faults"
)

const unitColumns = `id, film_id, format, custom_format_label, quantity, expiry_dates, comments, is_frozen, exposure_count, created_at, updated_at`

// InsertUnits persists new units in a single transaction. Zero timestamps
// are filled with the current time.
func (s *Store) InsertUnits(ctx context.Context, units ...*Unit) error {
	if len(units) == 0 {
		return nil
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert units", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, unit := range units {
		if unit.CreatedAt.IsZero() {
			unit.CreatedAt = now
		}
		unit.UpdatedAt = now
		if err := insertUnitTx(ctx, tx, unit); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStorage, "insert units", "commit", err)
	}
	return nil
}

func insertUnitTx(ctx context.Context, tx *sql.Tx, unit *Unit) error {
	dates, err := encodeDates(unit.ExpiryDates)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert unit", unit.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO units (`+unitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		unit.ID,
		unit.FilmID,
		string(unit.Format),
		nullableString(unit.CustomFormatLabel),
		unit.Quantity,
		dates,
		nullableString(unit.Comments),
		boolToInt(unit.Frozen),
		nullableInt(unit.ExposureCount),
		formatTime(unit.CreatedAt),
		formatTime(unit.UpdatedAt),
	)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert unit", unit.ID, err)
	}
	return nil
}

// UnitByID fetches a unit by identifier. Returns nil when missing.
func (s *Store) UnitByID(ctx context.Context, id string) (*Unit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	unit, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get unit", id, err)
	}
	return unit, nil
}

// Units returns every unit ordered by creation time.
func (s *Store) Units(ctx context.Context) ([]*Unit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM units ORDER BY created_at, id`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list units", "", err)
	}
	defer rows.Close()
	return collectUnits(rows)
}

// UnitsByFilm returns the units belonging to one film.
func (s *Store) UnitsByFilm(ctx context.Context, filmID int64) ([]*Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE film_id = ? ORDER BY created_at, id`, filmID)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list units for film", fmt.Sprint(filmID), err)
	}
	defer rows.Close()
	return collectUnits(rows)
}

// UpdateUnit persists changes to an existing unit and bumps updated_at.
func (s *Store) UpdateUnit(ctx context.Context, unit *Unit) error {
	if unit == nil {
		return faults.Validation("update unit", "unit is nil")
	}
	unit.UpdatedAt = time.Now().UTC()
	dates, err := encodeDates(unit.ExpiryDates)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update unit", unit.ID, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE units
         SET film_id = ?, format = ?, custom_format_label = ?, quantity = ?,
             expiry_dates = ?, comments = ?, is_frozen = ?, exposure_count = ?, updated_at = ?
         WHERE id = ?`,
		unit.FilmID,
		string(unit.Format),
		nullableString(unit.CustomFormatLabel),
		unit.Quantity,
		dates,
		nullableString(unit.Comments),
		boolToInt(unit.Frozen),
		nullableInt(unit.ExposureCount),
		formatTime(unit.UpdatedAt),
		unit.ID,
	)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update unit", unit.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update unit", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("update unit", unit.ID)
	}
	return nil
}

// DeleteUnits removes units by identifier in one transaction and reports
// how many rows went away.
func (s *Store) DeleteUnits(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM units WHERE id IN (`+makePlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, faults.Wrap(faults.ErrStorage, "delete units", "", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, faults.Wrap(faults.ErrStorage, "delete units", "rows affected", err)
	}
	return affected, nil
}

func collectUnits(rows *sql.Rows) ([]*Unit, error) {
	var units []*Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func scanUnit(scanner interface{ Scan(dest ...any) error }) (*Unit, error) {
	var (
		id            string
		filmID        int64
		formatStr     string
		customLabel   sql.NullString
		quantity      int
		datesRaw      sql.NullString
		comments      sql.NullString
		frozen        int
		exposureCount sql.NullInt64
		createdRaw    string
		updatedRaw    string
	)
	if err := scanner.Scan(&id, &filmID, &formatStr, &customLabel, &quantity, &datesRaw, &comments, &frozen, &exposureCount, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	unit := &Unit{
		ID:                id,
		FilmID:            filmID,
		Format:            Format(formatStr),
		CustomFormatLabel: customLabel.String,
		Quantity:          quantity,
		ExpiryDates:       decodeDates(datesRaw.String),
		Comments:          comments.String,
		Frozen:            frozen != 0,
		ExposureCount:     int(exposureCount.Int64),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		unit.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		unit.UpdatedAt = updated
	}
	return unit, nil
}
