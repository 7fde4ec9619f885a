// Package storage persists the dispatch journal: one record per notification
// handed to the outbox, kept across restarts so the CLI can show recent
// activity.
//
// Drivers:
//   - "file": append-only JSON Lines
//   - "sqlite": SQLite database file
package storage
