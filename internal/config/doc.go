// Package config loads and validates filmkeep's TOML configuration.
//
// Configuration lives at ~/.config/filmkeep/config.toml by default. Load
// applies defaults for missing keys, expands ~ in paths, and validates the
// result; a missing file is not an error. The Config also resolves derived
// paths for the database, lock file, counter sidecar, and log sink.
package config
