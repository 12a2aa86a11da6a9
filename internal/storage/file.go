package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "livewatch/pkg/logx"
)

// fileStore keeps the state snapshot in one pretty-printed JSON file so
// operators can inspect (and, in a pinch, edit) it directly. Writes go
// through a temp file + rename to avoid torn snapshots.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	path string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileStore{log: log, path: path}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LoadStates(ctx context.Context) ([]AccountState, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var states []AccountState
	if err := json.Unmarshal(b, &states); err != nil {
		return nil, fmt.Errorf("state file %s: %w", s.path, err)
	}

	// Exactly one entry per account; last one wins on duplicates.
	seen := map[string]int{}
	out := states[:0]
	for _, st := range states {
		if st.Account == "" {
			continue
		}
		if i, ok := seen[st.Account]; ok {
			out[i] = st
			continue
		}
		seen[st.Account] = len(out)
		out = append(out, st)
	}
	return out, nil
}

func (s *fileStore) SaveStates(ctx context.Context, states []AccountState) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
