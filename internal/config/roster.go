package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadRoster reads the monitored account list: one account per line, blank
// lines and '#' comments ignored, duplicates collapsed (first wins). An
// unreadable or empty roster is a startup error.
func LoadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	defer f.Close()

	seen := map[string]bool{}
	var accounts []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Tolerate pasted handles with a leading @.
		line = strings.TrimPrefix(line, "@")
		if seen[line] {
			continue
		}
		seen[line] = true
		accounts = append(accounts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("roster: %s contains no accounts", path)
	}
	return accounts, nil
}
