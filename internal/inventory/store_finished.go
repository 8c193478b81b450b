package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filmkeep/internal/faults"
)

const finishedColumns = `id, film_id, format, custom_format_label, camera_id, camera_name, quantity, loaded_at, finished_at, shot_at_iso, status`

// FinishedUnits returns the develop queue, most recently finished first.
func (s *Store) FinishedUnits(ctx context.Context) ([]*FinishedUnit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+finishedColumns+` FROM finished_units ORDER BY finished_at DESC, id`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list finished units", "", err)
	}
	defer rows.Close()

	var result []*FinishedUnit
	for rows.Next() {
		finished, err := scanFinishedUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan finished unit: %w", err)
		}
		result = append(result, finished)
	}
	return result, rows.Err()
}

// FinishedUnitByID fetches a finished unit by identifier. Returns nil when
// missing.
func (s *Store) FinishedUnitByID(ctx context.Context, id string) (*FinishedUnit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+finishedColumns+` FROM finished_units WHERE id = ?`, id)
	finished, err := scanFinishedUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get finished unit", id, err)
	}
	return finished, nil
}

// UpdateFinishedStatus moves a finished unit through the develop pipeline.
func (s *Store) UpdateFinishedStatus(ctx context.Context, id string, status DevelopStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE finished_units SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update finished status", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update finished status", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("update finished status", id)
	}
	return nil
}

func insertFinishedUnitTx(ctx context.Context, tx *sql.Tx, finished *FinishedUnit) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO finished_units (id, film_id, format, custom_format_label, camera_id, camera_name, quantity, loaded_at, finished_at, shot_at_iso, status)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		finished.ID,
		finished.FilmID,
		string(finished.Format),
		nullableString(finished.CustomFormatLabel),
		nullableInt64(finished.CameraID),
		nullableString(finished.CameraName),
		finished.Quantity,
		formatTime(finished.LoadedAt),
		formatTime(finished.FinishedAt),
		nullableInt(finished.ShotAtISO),
		string(finished.Status),
	)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert finished unit", finished.ID, err)
	}
	return nil
}

func scanFinishedUnit(scanner interface{ Scan(dest ...any) error }) (*FinishedUnit, error) {
	var (
		id          string
		filmID      int64
		formatStr   string
		customLabel sql.NullString
		cameraID    sql.NullInt64
		cameraName  sql.NullString
		quantity    int
		loadedRaw   string
		finishedRaw string
		shotAtISO   sql.NullInt64
		status      string
	)
	if err := scanner.Scan(&id, &filmID, &formatStr, &customLabel, &cameraID, &cameraName, &quantity, &loadedRaw, &finishedRaw, &shotAtISO, &status); err != nil {
		return nil, err
	}

	finished := &FinishedUnit{
		ID:                id,
		FilmID:            filmID,
		Format:            Format(formatStr),
		CustomFormatLabel: customLabel.String,
		CameraID:          cameraID.Int64,
		CameraName:        cameraName.String,
		Quantity:          quantity,
		ShotAtISO:         int(shotAtISO.Int64),
		Status:            DevelopStatus(status),
	}
	if loadedAt, err := parseTimeString(loadedRaw); err == nil {
		finished.LoadedAt = loadedAt
	}
	if finishedAt, err := parseTimeString(finishedRaw); err == nil {
		finished.FinishedAt = finishedAt
	}
	return finished, nil
}
