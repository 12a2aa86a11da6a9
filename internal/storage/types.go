package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON state file (default when a path is set)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// AccountState is the durable projection of the most recently observed
// status of one account. Keep it compact and schema-stable.
type AccountState struct {
	Account string `json:"account"`
	Live    bool   `json:"live"`
	RoomID  string `json:"room_id,omitempty"`
}

// Store is the persistence API used by the tracker and the poll loop.
//
// LoadStates returns every known account exactly once. SaveStates replaces
// the whole snapshot; callers persist once per poll cycle.
type Store interface {
	LoadStates(ctx context.Context) ([]AccountState, error)
	SaveStates(ctx context.Context, states []AccountState) error
	Close() error
}
