package storage

// Package storage persists the per-account tracked state so OFF->ON
// transitions survive process restarts.
//
// It currently supports:
//   - A human-inspectable JSON state file (default)
//   - An optional SQLite backend (build tag "sqlite")
