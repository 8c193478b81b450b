package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used across the inventory engines. Callers classify
// failures with errors.Is rather than string matching.
var (
	// ErrValidation marks malformed input: unparseable dates, non-positive
	// quantities, format mismatches, unsupported file extensions.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks operations keyed by an identifier that no longer
	// exists. These are safe no-ops from the store's perspective.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks refused consistency-guard operations, such as
	// deleting a manufacturer that still has films or a camera that still
	// has loaded units.
	ErrConflict = errors.New("conflict")

	// ErrStorage marks database failures. These are always propagated so
	// callers can retry or alert, never swallowed.
	ErrStorage = errors.New("storage error")
)

// Wrap tags an error with a sentinel marker and operation context. The
// marker should be one of the exported sentinels above; a nil marker is
// treated as ErrStorage.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Validation builds a validation failure without an underlying cause.
func Validation(operation, message string) error {
	return Wrap(ErrValidation, operation, message, nil)
}

// NotFound builds a not-found failure for the given identifier.
func NotFound(operation, id string) error {
	return Wrap(ErrNotFound, operation, id, nil)
}

// Conflict builds a consistency-guard refusal.
func Conflict(operation, message string) error {
	return Wrap(ErrConflict, operation, message, nil)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
