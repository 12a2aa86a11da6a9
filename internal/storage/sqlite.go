//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	logx "livewatch/pkg/logx"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS watch_state (
	account TEXT PRIMARY KEY,
	live    INTEGER NOT NULL DEFAULT 0,
	room_id TEXT
);
`

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(context.Background(), sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadStates(ctx context.Context) ([]AccountState, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT account, live, room_id FROM watch_state ORDER BY account`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []AccountState
	for rows.Next() {
		var st AccountState
		var live int
		var room sql.NullString
		if err := rows.Scan(&st.Account, &live, &room); err != nil {
			return nil, err
		}
		st.Live = live != 0
		st.RoomID = room.String
		states = append(states, st)
	}
	return states, rows.Err()
}

func (s *sqliteStore) SaveStates(ctx context.Context, states []AccountState) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, st := range states {
		live := 0
		if st.Live {
			live = 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO watch_state(account, live, room_id) VALUES(?,?,?)
			 ON CONFLICT(account) DO UPDATE SET live=excluded.live, room_id=excluded.room_id`,
			st.Account, live, nullStr(st.RoomID),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
