// Package logging provides leveled logging and tick tracing for the
// simulator. It offers two outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A Trace for structured JSONL per-tick records
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug used for per-tick output.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a level name to a slog.Level.
// Supported values: "error", "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing text records to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Trace writes structured tick records to a JSONL file.
// It is safe for concurrent use. A nil Trace is safe to use;
// all methods are no-ops on a nil receiver.
type Trace struct {
	mu   sync.Mutex
	file *os.File
}

// OpenTrace opens path for append, creating parent directories as needed.
// An empty path yields a nil Trace.
func OpenTrace(path string) (*Trace, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Trace{file: f}, nil
}

// Log writes event as a single JSONL line.
// A "time" field is added automatically. The caller's map is not mutated.
func (t *Trace) Log(event map[string]any) {
	if t == nil || t.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = t.file.Write(data)
}

// Close closes the underlying file. Safe to call on a nil receiver.
func (t *Trace) Close() error {
	if t == nil || t.file == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.file.Close()
	t.file = nil
	return err
}
