package store

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// DefaultHistoryLimit is how many chat messages the server replays to a
// freshly logged-in session.
const DefaultHistoryLimit = 100

// ChatMessage is one entry of the chat stream: who said what, tagged with the
// sender's session id so broadcasts can rewrite the sender's own copy.
type ChatMessage struct {
	From      string
	Content   string
	SessionID string
}

// History is a bounded ordered log of the most recent chat messages,
// rewritten to disk after every append.
type History struct {
	mu      sync.Mutex
	path    string
	limit   int
	entries []ChatMessage
	logger  *slog.Logger
}

func NewHistory(path string, limit int, logger *slog.Logger) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &History{
		path:   path,
		limit:  limit,
		logger: logger,
	}
}

// Load reads the history file. Missing file means empty history; malformed
// lines are skipped and logged.
func (h *History) Load() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read history file: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			h.logger.Warn("skipping malformed history line", "line", line)
			continue
		}
		h.entries = append(h.entries, ChatMessage{From: parts[0], Content: parts[1], SessionID: parts[2]})
	}
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	return nil
}

// Append adds one message, dropping the oldest entry beyond the cap, and
// rewrites the file while still holding the lock. A write failure is logged
// and the in-memory log is kept.
func (h *History) Append(msg ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, msg)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	if err := h.saveLocked(); err != nil {
		h.logger.Error("failed to persist history", "error", err)
	}
}

// Snapshot returns a copy safe to iterate without the lock.
func (h *History) Snapshot() []ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ChatMessage, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) saveLocked() error {
	var b strings.Builder
	for _, m := range h.entries {
		b.WriteString(m.From)
		b.WriteString("|")
		b.WriteString(m.Content)
		b.WriteString("|")
		b.WriteString(m.SessionID)
		b.WriteString("\n")
	}
	if err := os.WriteFile(h.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}
