package testsupport

import (
	"path/filepath"
	"testing"

	"filmkeep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.SeedManufacturers = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSeededCatalog enables manufacturer seeding on the test config.
func WithSeededCatalog() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.SeedManufacturers = true
	}
}

// WithNtfyTopic points notifications at the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
