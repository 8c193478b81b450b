// Package tally keeps the lifetime finished-roll counter. The count lives
// in a small JSON sidecar file next to the database rather than in SQLite:
// it must survive finished records being reloaded or deleted, so it is an
// independent monotonic-ish tally, not a derived view.
package tally

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filmkeep/internal/logging"
)

type state struct {
	FinishedCount int       `json:"finished_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Counter provides thread-safe access to the lifetime counter. If path is
// empty every operation is a no-op and Value reports zero.
type Counter struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	state  state
}

// NewCounter creates a counter backed by the given file. The file is
// created lazily on the first mutation.
func NewCounter(path string, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Counter{
		path:   path,
		logger: logging.NewComponentLogger(logger, "tally"),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		c.logger.Warn("failed to load finished counter, starting at zero", logging.Error(err))
	}
	return c
}

// Value returns the current lifetime count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.FinishedCount
}

// Add increments the counter by delta and persists the change.
func (c *Counter) Add(delta int) error {
	if c.path == "" || delta == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.FinishedCount += delta
	if err := c.save(); err != nil {
		return fmt.Errorf("persist counter: %w", err)
	}
	return nil
}

// Subtract decrements the counter by delta, never going below zero. Used
// when an unload is undone by a reload.
func (c *Counter) Subtract(delta int) error {
	if c.path == "" || delta == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.FinishedCount -= delta
	if c.state.FinishedCount < 0 {
		c.state.FinishedCount = 0
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist counter: %w", err)
	}
	return nil
}

func (c *Counter) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read counter file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	var loaded state
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse counter file: %w", err)
	}
	if loaded.FinishedCount < 0 {
		loaded.FinishedCount = 0
	}
	c.state = loaded
	return nil
}

func (c *Counter) save() error {
	c.state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(c.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal counter: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create counter directory: %w", err)
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
