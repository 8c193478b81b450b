package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filmkeep/internal/faults"
)

const loadedColumns = `l.id, l.unit_id, l.film_id, l.format, l.custom_format_label, l.camera_id, c.name, l.quantity, l.loaded_at, l.shot_at_iso`

const loadedFrom = ` FROM loaded_units l JOIN cameras c ON c.id = l.camera_id`

// CreateLoadedUnit inserts a loaded unit and applies the quantity effect
// on the source unit in one transaction. newSourceQuantity is the source
// unit's quantity after loading (0 for a whole roll, decremented for a
// sheet pool); it is ignored when the loaded unit has no source reference.
func (s *Store) CreateLoadedUnit(ctx context.Context, loaded *LoadedUnit, newSourceQuantity int) error {
	if loaded == nil {
		return faults.Validation("create loaded unit", "loaded unit is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "create loaded unit", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if loaded.UnitID != "" {
		if err := setUnitQuantityTx(ctx, tx, loaded.UnitID, newSourceQuantity); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loaded_units (id, unit_id, film_id, format, custom_format_label, camera_id, quantity, loaded_at, shot_at_iso)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loaded.ID,
		nullableString(loaded.UnitID),
		loaded.FilmID,
		string(loaded.Format),
		nullableString(loaded.CustomFormatLabel),
		loaded.CameraID,
		loaded.Quantity,
		formatTime(loaded.LoadedAt),
		nullableInt(loaded.ShotAtISO),
	)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert loaded unit", loaded.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStorage, "create loaded unit", "commit", err)
	}
	return nil
}

// LoadedUnitByID fetches a loaded unit by identifier. Returns nil when
// missing.
func (s *Store) LoadedUnitByID(ctx context.Context, id string) (*LoadedUnit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+loadedColumns+loadedFrom+` WHERE l.id = ?`, id)
	loaded, err := scanLoadedUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get loaded unit", id, err)
	}
	return loaded, nil
}

// LoadedUnits returns everything currently sitting in a camera, oldest
// load first.
func (s *Store) LoadedUnits(ctx context.Context) ([]*LoadedUnit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+loadedColumns+loadedFrom+` ORDER BY l.loaded_at, l.id`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list loaded units", "", err)
	}
	defer rows.Close()

	var result []*LoadedUnit
	for rows.Next() {
		loaded, err := scanLoadedUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loaded unit: %w", err)
		}
		result = append(result, loaded)
	}
	return result, rows.Err()
}

// DeleteLoadedUnitRestoring removes a loaded unit and, when a source unit
// survives, restores its quantity — the "loaded by mistake" correction.
// restoredQuantity is the source unit's quantity after restoration; pass
// an empty unitID when the source record is gone.
func (s *Store) DeleteLoadedUnitRestoring(ctx context.Context, loadedID, unitID string, restoredQuantity int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "delete loaded unit", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if unitID != "" {
		if err := setUnitQuantityTx(ctx, tx, unitID, restoredQuantity); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM loaded_units WHERE id = ?`, loadedID)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "delete loaded unit", loadedID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "delete loaded unit", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("delete loaded unit", loadedID)
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStorage, "delete loaded unit", "commit", err)
	}
	return nil
}

// FinishLoadedUnit converts loaded quantity into a finished record in one
// transaction. remaining is the loaded unit's quantity after the finish: a
// positive value keeps the loaded unit alive (partial sheet finish), zero
// deletes it. The source unit never gets quantity back; the material is
// consumed.
func (s *Store) FinishLoadedUnit(ctx context.Context, loadedID string, remaining int, finished *FinishedUnit) error {
	if finished == nil {
		return faults.Validation("finish loaded unit", "finished unit is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "finish loaded unit", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var res sql.Result
	if remaining > 0 {
		res, err = tx.ExecContext(ctx, `UPDATE loaded_units SET quantity = ? WHERE id = ?`, remaining, loadedID)
	} else {
		res, err = tx.ExecContext(ctx, `DELETE FROM loaded_units WHERE id = ?`, loadedID)
	}
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "finish loaded unit", loadedID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "finish loaded unit", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("finish loaded unit", loadedID)
	}

	if err := insertFinishedUnitTx(ctx, tx, finished); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStorage, "finish loaded unit", "commit", err)
	}
	return nil
}

// ReloadFinishedUnit converts a finished record back into a loaded unit in
// one transaction — the undo of an unload.
func (s *Store) ReloadFinishedUnit(ctx context.Context, finishedID string, loaded *LoadedUnit) error {
	if loaded == nil {
		return faults.Validation("reload finished unit", "loaded unit is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "reload finished unit", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM finished_units WHERE id = ?`, finishedID)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "reload finished unit", finishedID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "reload finished unit", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("reload finished unit", finishedID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loaded_units (id, unit_id, film_id, format, custom_format_label, camera_id, quantity, loaded_at, shot_at_iso)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loaded.ID,
		nullableString(loaded.UnitID),
		loaded.FilmID,
		string(loaded.Format),
		nullableString(loaded.CustomFormatLabel),
		loaded.CameraID,
		loaded.Quantity,
		formatTime(loaded.LoadedAt),
		nullableInt(loaded.ShotAtISO),
	)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert loaded unit", loaded.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStorage, "reload finished unit", "commit", err)
	}
	return nil
}

func setUnitQuantityTx(ctx context.Context, tx *sql.Tx, unitID string, quantity int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE units SET quantity = ?, updated_at = ? WHERE id = ?`,
		quantity, formatTime(time.Now().UTC()), unitID)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "set unit quantity", unitID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "set unit quantity", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("set unit quantity", unitID)
	}
	return nil
}

func scanLoadedUnit(scanner interface{ Scan(dest ...any) error }) (*LoadedUnit, error) {
	var (
		id          string
		unitID      sql.NullString
		filmID      int64
		formatStr   string
		customLabel sql.NullString
		cameraID    int64
		cameraName  string
		quantity    int
		loadedRaw   string
		shotAtISO   sql.NullInt64
	)
	if err := scanner.Scan(&id, &unitID, &filmID, &formatStr, &customLabel, &cameraID, &cameraName, &quantity, &loadedRaw, &shotAtISO); err != nil {
		return nil, err
	}

	loaded := &LoadedUnit{
		ID:                id,
		UnitID:            unitID.String,
		FilmID:            filmID,
		Format:            Format(formatStr),
		CustomFormatLabel: customLabel.String,
		CameraID:          cameraID,
		CameraName:        cameraName,
		Quantity:          quantity,
		ShotAtISO:         int(shotAtISO.Int64),
	}
	if loadedAt, err := parseTimeString(loadedRaw); err == nil {
		loaded.LoadedAt = loadedAt
	}
	return loaded, nil
}
