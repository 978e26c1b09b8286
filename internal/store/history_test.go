package store

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestHistory_CapDropsOldest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	h := NewHistory(path, 100, nil)

	for i := 0; i < 101; i++ {
		h.Append(ChatMessage{From: "alice", Content: fmt.Sprintf("msg-%d", i), SessionID: "session-1"})
	}

	snap := h.Snapshot()
	if len(snap) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(snap))
	}
	if snap[0].Content != "msg-1" {
		t.Fatalf("expected oldest entry msg-1 after trim, got %q", snap[0].Content)
	}
	if snap[99].Content != "msg-100" {
		t.Fatalf("expected newest entry msg-100, got %q", snap[99].Content)
	}
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history.txt"), 10, nil)
	h.Append(ChatMessage{From: "alice", Content: "hi", SessionID: "session-1"})

	snap := h.Snapshot()
	snap[0].Content = "mutated"

	if got := h.Snapshot()[0].Content; got != "hi" {
		t.Fatalf("snapshot mutation leaked into the log: %q", got)
	}
}

func TestHistory_PersistAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	h := NewHistory(path, 10, nil)
	h.Append(ChatMessage{From: "alice", Content: "one", SessionID: "session-1"})
	h.Append(ChatMessage{From: "bob", Content: "two", SessionID: "session-2"})

	reloaded := NewHistory(path, 10, nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := reloaded.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", len(snap))
	}
	want := ChatMessage{From: "bob", Content: "two", SessionID: "session-2"}
	if snap[1] != want {
		t.Fatalf("unexpected entry after reload: %+v", snap[1])
	}
}

func TestHistory_LoadTrimsToLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	big := NewHistory(path, 10, nil)
	for i := 0; i < 10; i++ {
		big.Append(ChatMessage{From: "alice", Content: fmt.Sprintf("msg-%d", i), SessionID: "session-1"})
	}

	small := NewHistory(path, 3, nil)
	if err := small.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := small.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected load to trim to 3 entries, got %d", len(snap))
	}
	if snap[0].Content != "msg-7" {
		t.Fatalf("expected msg-7 as oldest kept entry, got %q", snap[0].Content)
	}
}
