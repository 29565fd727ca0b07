// Package audit keeps an append-only JSONL log of every executed action.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Entry records the outcome of a single action.
type Entry struct {
	Time    time.Time `json:"time"`
	Package string    `json:"package"`
	Action  string    `json:"action"`
	Outcome string    `json:"outcome"` // "success" | "skipped" | "failure"
	Error   string    `json:"error,omitempty"`
	DryRun  bool      `json:"dry_run,omitempty"`
}

// LogPath returns the audit log location under the XDG state directory.
func LogPath() string {
	return filepath.Join(xdg.StateHome, "dotdot", "audit.log")
}

// Log appends e to the audit log. Errors are silently ignored so that
// logging never halts an installation.
func Log(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	path := LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	line, _ := json.Marshal(e)
	_, _ = f.Write(append(line, '\n'))
}

// Read loads log entries, optionally filtered by package name, returning the
// last limit entries (all when limit <= 0).
func Read(packageFilter string, limit int) ([]Entry, error) {
	f, err := os.Open(LogPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue // skip malformed lines
		}
		if packageFilter != "" && e.Package != packageFilter {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
