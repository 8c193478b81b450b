// Package lifecycle moves inventory through its states: stock loaded into
// a camera, loaded film finished into the develop queue, and the undo
// transitions back. All quantity bookkeeping lives here; the store only
// persists what the engine decides.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"filmkeep/internal/faults"
	"filmkeep/internal/inventory"
	"filmkeep/internal/logging"
	"filmkeep/internal/notifications"
	"filmkeep/internal/tally"
)

// Engine drives the stock -> loaded -> finished state machine.
type Engine struct {
	store    *inventory.Store
	counter  *tally.Counter
	notifier notifications.Service
	logger   *slog.Logger
}

// NewEngine builds a lifecycle engine. A nil counter disables the lifetime
// tally and a nil notifier disables notifications.
func NewEngine(store *inventory.Store, counter *tally.Counter, notifier notifications.Service, logger *slog.Logger) *Engine {
	if counter == nil {
		counter = tally.NewCounter("", nil)
	}
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:    store,
		counter:  counter,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "lifecycle"),
	}
}

// FinishedCount returns the lifetime finished tally.
func (e *Engine) FinishedCount() int {
	return e.counter.Value()
}

// Load moves stock into a camera. Rolls always load whole: the source
// unit's quantity drops to zero and the loaded quantity is one regardless
// of the request. Sheets load the requested amount out of the pool.
// shotAtISO is persisted only when it differs from the film's native speed.
func (e *Engine) Load(ctx context.Context, unitID, cameraName string, quantity, shotAtISO int) (*inventory.LoadedUnit, error) {
	cameraName = strings.TrimSpace(cameraName)
	if cameraName == "" {
		return nil, faults.Validation("load", "camera name is required")
	}
	if quantity <= 0 {
		return nil, faults.Validation("load", "quantity must be positive")
	}

	unit, err := e.store.UnitByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, faults.NotFound("load", unitID)
	}
	if unit.Quantity <= 0 {
		return nil, faults.Validation("load", "unit has no stock left")
	}
	if quantity > unit.Quantity {
		return nil, faults.Validation("load", fmt.Sprintf("requested %d but only %d in stock", quantity, unit.Quantity))
	}

	film, err := e.store.FilmByID(ctx, unit.FilmID)
	if err != nil {
		return nil, err
	}
	if film == nil {
		return nil, faults.NotFound("load", fmt.Sprintf("film %d", unit.FilmID))
	}

	camera, err := e.store.EnsureCamera(ctx, cameraName)
	if err != nil {
		return nil, err
	}

	loadedQuantity := quantity
	newSourceQuantity := unit.Quantity - quantity
	if unit.Format.IsRoll() {
		loadedQuantity = 1
		newSourceQuantity = 0
	}

	storedISO := 0
	if shotAtISO > 0 && shotAtISO != film.NativeSpeed {
		storedISO = shotAtISO
	}

	loaded := &inventory.LoadedUnit{
		ID:                uuid.NewString(),
		UnitID:            unit.ID,
		FilmID:            unit.FilmID,
		Format:            unit.Format,
		CustomFormatLabel: unit.CustomFormatLabel,
		CameraID:          camera.ID,
		CameraName:        camera.Name,
		Quantity:          loadedQuantity,
		LoadedAt:          time.Now().UTC(),
		ShotAtISO:         storedISO,
	}
	if err := e.store.CreateLoadedUnit(ctx, loaded, newSourceQuantity); err != nil {
		return nil, err
	}

	e.logger.Info("film loaded",
		logging.String("film", film.Name),
		logging.String("camera", camera.Name),
		logging.Int("quantity", loadedQuantity))
	e.notifyLoaded(ctx, filmLabel(film, unit.Format), camera.Name)
	return loaded, nil
}

// Unload finishes loaded film into the develop queue. A quantity of zero
// finishes everything; a smaller quantity is a partial finish that keeps
// the loaded unit alive with the residue (sheets only, since rolls carry
// quantity one). The source unit never gets quantity back.
func (e *Engine) Unload(ctx context.Context, loadedID string, quantity int) (*inventory.FinishedUnit, error) {
	loaded, err := e.store.LoadedUnitByID(ctx, loadedID)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, faults.NotFound("unload", loadedID)
	}
	if quantity < 0 || quantity > loaded.Quantity {
		return nil, faults.Validation("unload", fmt.Sprintf("quantity %d out of range for loaded %d", quantity, loaded.Quantity))
	}
	if quantity == 0 {
		quantity = loaded.Quantity
	}

	finished := &inventory.FinishedUnit{
		ID:                uuid.NewString(),
		FilmID:            loaded.FilmID,
		Format:            loaded.Format,
		CustomFormatLabel: loaded.CustomFormatLabel,
		CameraID:          loaded.CameraID,
		CameraName:        loaded.CameraName,
		Quantity:          quantity,
		LoadedAt:          loaded.LoadedAt,
		FinishedAt:        time.Now().UTC(),
		ShotAtISO:         loaded.ShotAtISO,
		Status:            inventory.StatusToDevelop,
	}
	remaining := loaded.Quantity - quantity
	if err := e.store.FinishLoadedUnit(ctx, loaded.ID, remaining, finished); err != nil {
		return nil, err
	}

	if err := e.counter.Add(quantity); err != nil {
		e.logger.Warn("failed to bump finished counter", logging.Error(err))
	}

	e.logger.Info("film finished",
		logging.String("camera", loaded.CameraName),
		logging.Int("quantity", quantity),
		logging.Int("remaining", remaining))
	e.notifyFinished(ctx, loaded)
	return finished, nil
}

// DeleteLoadedUnit is the "loaded by mistake" correction: the load is
// undone and the source unit gets its stock back, a full roll or the
// loaded sheet count. No finished record is created. When the source unit
// record is already gone there is nothing to restore into.
func (e *Engine) DeleteLoadedUnit(ctx context.Context, loadedID string) error {
	loaded, err := e.store.LoadedUnitByID(ctx, loadedID)
	if err != nil {
		return err
	}
	if loaded == nil {
		return faults.NotFound("delete loaded", loadedID)
	}

	unitID := ""
	restored := 0
	if loaded.UnitID != "" {
		unit, err := e.store.UnitByID(ctx, loaded.UnitID)
		if err != nil {
			return err
		}
		if unit != nil {
			unitID = unit.ID
			if unit.Format.IsRoll() {
				restored = 1
			} else {
				restored = unit.Quantity + loaded.Quantity
			}
		}
	}

	if err := e.store.DeleteLoadedUnitRestoring(ctx, loaded.ID, unitID, restored); err != nil {
		return err
	}

	e.logger.Info("loaded unit deleted",
		logging.String("camera", loaded.CameraName),
		logging.Bool("restored", unitID != ""))
	e.notifyChanged(ctx)
	return nil
}

// Reload is the inverse of Unload: the finished record turns back into a
// loaded unit with its original film, format, camera, quantity, load time
// and shooting speed, and the lifetime tally gives the quantity back.
func (e *Engine) Reload(ctx context.Context, finishedID string) (*inventory.LoadedUnit, error) {
	finished, err := e.store.FinishedUnitByID(ctx, finishedID)
	if err != nil {
		return nil, err
	}
	if finished == nil {
		return nil, faults.NotFound("reload", finishedID)
	}

	camera, err := e.resolveCamera(ctx, finished)
	if err != nil {
		return nil, err
	}

	loaded := &inventory.LoadedUnit{
		ID:                uuid.NewString(),
		FilmID:            finished.FilmID,
		Format:            finished.Format,
		CustomFormatLabel: finished.CustomFormatLabel,
		CameraID:          camera.ID,
		CameraName:        camera.Name,
		Quantity:          finished.Quantity,
		LoadedAt:          finished.LoadedAt,
		ShotAtISO:         finished.ShotAtISO,
	}
	if err := e.store.ReloadFinishedUnit(ctx, finished.ID, loaded); err != nil {
		return nil, err
	}

	if err := e.counter.Subtract(finished.Quantity); err != nil {
		e.logger.Warn("failed to decrement finished counter", logging.Error(err))
	}

	e.logger.Info("finished unit reloaded",
		logging.String("camera", camera.Name),
		logging.Int("quantity", finished.Quantity))
	e.notifyChanged(ctx)
	return loaded, nil
}

// resolveCamera brings the camera behind a finished record back, using the
// snapshot name when the original camera was deleted in the meantime.
func (e *Engine) resolveCamera(ctx context.Context, finished *inventory.FinishedUnit) (*inventory.Camera, error) {
	if finished.CameraID > 0 {
		camera, err := e.store.CameraByID(ctx, finished.CameraID)
		if err != nil {
			return nil, err
		}
		if camera != nil {
			return camera, nil
		}
	}
	if strings.TrimSpace(finished.CameraName) == "" {
		return nil, faults.Validation("reload", "camera attribution lost, cannot reload")
	}
	return e.store.EnsureCamera(ctx, finished.CameraName)
}

// UpdateStatus moves a finished unit between develop statuses. Any status
// is reachable from any other.
func (e *Engine) UpdateStatus(ctx context.Context, finishedID string, status inventory.DevelopStatus) error {
	return e.store.UpdateFinishedStatus(ctx, finishedID, status)
}

func filmLabel(film *inventory.Film, format inventory.Format) string {
	return fmt.Sprintf("%s %s %s", film.ManufacturerName, film.Name, format.DisplayName())
}

// Notifications are best effort: a dead ntfy endpoint must never fail the
// mutation that already committed.
func (e *Engine) notifyLoaded(ctx context.Context, filmLabel, cameraName string) {
	if err := e.notifier.NotifyFilmLoaded(ctx, filmLabel, cameraName); err != nil {
		e.logger.Warn("load notification failed", logging.Error(err))
	}
	e.notifyChanged(ctx)
}

func (e *Engine) notifyFinished(ctx context.Context, loaded *inventory.LoadedUnit) {
	film, err := e.store.FilmByID(ctx, loaded.FilmID)
	label := "film"
	if err == nil && film != nil {
		label = filmLabel(film, loaded.Format)
	}
	if err := e.notifier.NotifyFilmFinished(ctx, label, loaded.CameraName); err != nil {
		e.logger.Warn("finish notification failed", logging.Error(err))
	}
	e.notifyChanged(ctx)
}

func (e *Engine) notifyChanged(ctx context.Context) {
	all, err := e.store.LoadedUnits(ctx)
	if err != nil {
		e.logger.Warn("loaded count for notification failed", logging.Error(err))
		return
	}
	if err := e.notifier.NotifyLoadedChanged(ctx, len(all)); err != nil {
		e.logger.Warn("change notification failed", logging.Error(err))
	}
}
