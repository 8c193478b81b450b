package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filmkeep/internal/faults"
)

const filmColumns = `f.id, f.name, f.manufacturer_id, m.name, f.type, f.native_speed, f.image_ref, f.image_source`

const filmFrom = ` FROM films f JOIN manufacturers m ON m.id = f.manufacturer_id`

// CreateFilm inserts a new film product definition and assigns its ID.
func (s *Store) CreateFilm(ctx context.Context, film *Film) error {
	if film == nil {
		return faults.Validation("create film", "film is nil")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO films (name, manufacturer_id, type, native_speed, image_ref, image_source)
         VALUES (?, ?, ?, ?, ?, ?)`,
		film.Name,
		film.ManufacturerID,
		string(film.Type),
		film.NativeSpeed,
		nullableString(film.ImageRef),
		nullableString(string(film.ImageSource)),
	)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert film", film.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "insert film", "last insert id", err)
	}
	film.ID = id
	return nil
}

// FilmByID fetches a film by identifier. Returns nil when missing.
func (s *Store) FilmByID(ctx context.Context, id int64) (*Film, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+filmColumns+filmFrom+` WHERE f.id = ?`, id)
	film, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "get film", fmt.Sprint(id), err)
	}
	return film, nil
}

// FilmsByNameAndManufacturer returns films matching a display name and
// manufacturer, ignoring type and speed. This is the first phase of the
// two-phase merge match; callers narrow by (type, speed) afterwards.
func (s *Store) FilmsByNameAndManufacturer(ctx context.Context, name string, manufacturerID int64) ([]*Film, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+filmColumns+filmFrom+` WHERE f.name = ? AND f.manufacturer_id = ? ORDER BY f.id`,
		name, manufacturerID)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "find films", name, err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

// Films returns all films with manufacturer names joined, ordered by
// manufacturer then film name.
func (s *Store) Films(ctx context.Context) ([]*Film, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+filmColumns+filmFrom+` ORDER BY m.name, f.name, f.id`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "list films", "", err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

// SetFilmImage records a film's product image reference and provenance.
func (s *Store) SetFilmImage(ctx context.Context, filmID int64, ref string, source ImageSource) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE films SET image_ref = ?, image_source = ? WHERE id = ?`,
		nullableString(ref), nullableString(string(source)), filmID)
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "set film image", fmt.Sprint(filmID), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return faults.Wrap(faults.ErrStorage, "set film image", "rows affected", err)
	}
	if affected == 0 {
		return faults.NotFound("set film image", fmt.Sprint(filmID))
	}
	return nil
}

// DeleteFilm removes a film definition. Callers are responsible for only
// invoking this once the film has no remaining units (cascade-on-empty).
func (s *Store) DeleteFilm(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM films WHERE id = ?`, id); err != nil {
		return faults.Wrap(faults.ErrStorage, "delete film", fmt.Sprint(id), err)
	}
	return nil
}

func collectFilms(rows *sql.Rows) ([]*Film, error) {
	var films []*Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, film)
	}
	return films, rows.Err()
}

func scanFilm(scanner interface{ Scan(dest ...any) error }) (*Film, error) {
	var (
		id               int64
		name             string
		manufacturerID   int64
		manufacturerName string
		typeStr          string
		nativeSpeed      int
		imageRef         sql.NullString
		imageSource      sql.NullString
	)
	if err := scanner.Scan(&id, &name, &manufacturerID, &manufacturerName, &typeStr, &nativeSpeed, &imageRef, &imageSource); err != nil {
		return nil, err
	}
	return &Film{
		ID:               id,
		Name:             name,
		ManufacturerID:   manufacturerID,
		ManufacturerName: manufacturerName,
		Type:             FilmType(typeStr),
		NativeSpeed:      nativeSpeed,
		ImageRef:         imageRef.String,
		ImageSource:      ImageSource(imageSource.String),
	}, nil
}
