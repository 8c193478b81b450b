package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"filmkeep/internal/catalog"
	"filmkeep/internal/config"
	"filmkeep/internal/inventory"
	"filmkeep/internal/lifecycle"
	"filmkeep/internal/logging"
	"filmkeep/internal/notifications"
	"filmkeep/internal/stock"
	"filmkeep/internal/tally"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

// app bundles everything a command needs once the store is open.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *inventory.Store
	stock     *stock.Engine
	lifecycle *lifecycle.Engine
	counter   *tally.Counter
	notifier  notifications.Service
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// withApp opens the store, wires the engines, runs fn, and closes the
// store again. Every stateful command goes through here so the writer
// lock is held for exactly the duration of one command.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	store, err := inventory.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Catalog.SeedManufacturers {
		if err := catalog.Seed(cmd.Context(), store, logger); err != nil {
			return err
		}
	}

	counter := tally.NewCounter(cfg.CounterPath(), logger)
	notifier := notifications.NewService(cfg)
	application := &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		stock:     stock.NewEngine(store, logger),
		lifecycle: lifecycle.NewEngine(store, counter, notifier, logger),
		counter:   counter,
		notifier:  notifier,
	}
	return fn(application)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
