// Package faults defines the error taxonomy shared by the inventory
// engines: validation failures, not-found lookups, consistency-guard
// refusals, and storage errors.
//
// Every engine operation returns a wrapped sentinel so callers can branch
// with errors.Is without inspecting message text. Storage errors are
// explicit; the engines never hide a failed write behind a silent no-op.
package faults
