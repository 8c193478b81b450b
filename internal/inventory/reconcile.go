package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"filmkeep/internal/logging"
)

// dataMigrations are one-time reconciliations of existing rows, run after
// schema migrations. Each entry executes in its own transaction that also
// records the completion flag, so a crash mid-run leaves the flag unset
// and the migration retries on the next open. Every migration must be
// safe to re-run against already-normalized data.
var dataMigrations = []struct {
	name string
	run func(ctx context.Context, tx *sql.Tx) (int64, error)
}{
	{name: "roll_centric_normalization", run: normalizeRollUnits},
	{name: "camera_name_backfill", run: backfillCameraNames},
}

func (s *Store) reconcile(ctx context.Context) error {
	for _, migration := range dataMigrations {
		var done int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM data_migrations WHERE name = ?`, migration.name).Scan(&done)
		if err != nil {
			return fmt.Errorf("check data migration %s: %w", migration.name, err)
		}
		if done > 0 {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin data migration %s: %w", migration.name, err)
		}
		touched, err := migration.run(ctx, tx)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run data migration %s: %w", migration.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO data_migrations (name, applied_at) VALUES (?, CURRENT_TIMESTAMP)`,
			migration.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record data migration %s: %w", migration.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit data migration %s: %w", migration.name, err)
		}
		s.logger.Info("data migration applied",
			logging.String("name", migration.name),
			logging.Int64("rows", touched))
	}
	return nil
}

// normalizeRollUnits splits legacy multi-quantity roll units into one unit
// per physical roll. The original row keeps its identifier so external
// references stay valid; siblings get fresh identifiers. Expiry dates
// distribute positionally, with a single shared date copied to every roll.
func normalizeRollUnits(ctx context.Context, tx *sql.Tx) (int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE quantity > 1 ORDER BY created_at, id`)
	if err != nil {
		return 0, fmt.Errorf("select candidate units: %w", err)
	}
	units, err := collectUnits(rows)
	rows.Close()
	if err != nil {
		return 0, err
	}

	var touched int64
	for _, unit := range units {
		if !unit.Format.IsRoll() {
			continue
		}
		split := SplitRoll(unit)
		if len(split) <= 1 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, unit.ID); err != nil {
			return touched, fmt.Errorf("remove aggregated unit %s: %w", unit.ID, err)
		}
		for _, roll := range split {
			if err := insertUnitTx(ctx, tx, roll); err != nil {
				return touched, err
			}
		}
		touched++
	}
	return touched, nil
}

// backfillCameraNames copies the camera name onto finished units recorded
// before the name snapshot column existed, so those rows survive a later
// camera rename or deletion.
func backfillCameraNames(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx, `
        UPDATE finished_units
        SET camera_name = (SELECT name FROM cameras WHERE cameras.id = finished_units.camera_id)
        WHERE (camera_name IS NULL OR camera_name = '')
          AND camera_id IS NOT NULL
          AND EXISTS (SELECT 1 FROM cameras WHERE cameras.id = finished_units.camera_id)`)
	if err != nil {
		return 0, fmt.Errorf("backfill camera names: %w", err)
	}
	return res.RowsAffected()
}
