// Package repositories implements SQLite persistence for the drive update history.
//
// [RunRepository] stores one row per playlist write plus the written URIs in order, and satisfies the
// tasks.RunRecorder interface so the drive engine can log each run.
//
// Sequence numbers provide stable, human-readable handles (run #42) independent of UUIDs.
// The [NextSequence] function atomically increments per-table counters kept in dedicated sequence tables.
package repositories
