package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"filmkeep/internal/faults"
)

// EnsureCamera resolves a camera by name, creating it when missing.
func (s *Store) EnsureCamera(ctx context.Context, name string) (*Camera, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, faults.Validation("ensure camera", "name must not be empty")
	}

	existing, err := s.CameraByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO cameras (name) VALUES (?)`, name)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "insert camera", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "insert camera", "last insert id", err)
	}
	return &Camera{ID: id, Name: name}, nil
}

// CameraByName fetches a camera by its unique name. Returns nil when
// missing.
func (s *Store) CameraByName(ctx context.Context, name string) (*Camera, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, default_format, custom_format_label FROM cameras WHERE name = ?`, name)
	camera, err := scanCamera(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get camera", name, err)
	}
	return camera, nil
}

// CameraByID fetches a camera by identifier. Returns nil when missing.
func (s *Store) CameraByID(ctx context.Context, id int64) (*Camera, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, default_format, custom_format_label FROM cameras WHERE id = ?`, id)
	camera, err := scanCamera(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get camera", fmt.Sprint(id), err)
	}
	return camera, nil
}

// Cameras returns all cameras ordered by name.
func (s *Store) Cameras(ctx context.Context) ([]*Camera, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, default_format, custom_format_label FROM cameras ORDER BY name`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list cameras", "", err)
	}
	defer rows.Close()

	var cameras []*Camera
	for rows.Next() {
		camera, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, camera)
	}
	return cameras, rows.Err()
}

// UpdateCameraDefaults records a camera's preferred format.
func (s *Store) UpdateCameraDefaults(ctx context.Context, name string, format Format, customLabel string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cameras SET default_format = ?, custom_format_label = ? WHERE name = ?`,
		nullableString(string(format)), nullableString(customLabel), name)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update camera", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "update camera", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("update camera", name)
	}
	return nil
}

// DeleteCamera removes a camera by name. Refused while any loaded unit
// still references it; finished units carry their own snapshot and do not
// block deletion.
func (s *Store) DeleteCamera(ctx context.Context, name string) error {
	camera, err := s.CameraByName(ctx, name)
	if err != nil {
		return err
	}
	if camera == nil {
		return faults.NotFound("delete camera", name)
	}

	var referencing int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM loaded_units WHERE camera_id = ?`, camera.ID)
	if err := row.Scan(&referencing); err != nil {
		return faults.Wrap(faults.ErrStorage, "delete camera", "count loaded units", err)
	}
	if referencing > 0 {
		return faults.Conflict("delete camera", fmt.Sprintf("%s still has %d loaded unit(s)", name, referencing))
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM cameras WHERE id = ?`, camera.ID); err != nil {
		return faults.Wrap(faults.ErrStorage, "delete camera", name, err)
	}
	return nil
}

func scanCamera(scanner interface{ Scan(dest ...any) error }) (*Camera, error) {
	var (
		id          int64
		name        string
		format      sql.NullString
		customLabel sql.NullString
	)
	if err := scanner.Scan(&id, &name, &format, &customLabel); err != nil {
		return nil, err
	}
	return &Camera{
		ID:                id,
		Name:              name,
		DefaultFormat:     Format(format.String),
		CustomFormatLabel: customLabel.String,
	}, nil
}
