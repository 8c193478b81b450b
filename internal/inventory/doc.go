// Package inventory owns persistence for the film collection: the SQLite
// store, schema and data migrations, and the record types shared by the
// engines layered on top. All writes go through a single Store guarded by
// a file lock so only one process mutates the database at a time.
package inventory
