package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_ParsesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messenger.yaml")
	content := `listen_addr: "127.0.0.1:6000"
ping_timeout: "30s"
history_limit: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:6000" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.PingTimeout.Std() != 30*time.Second {
		t.Fatalf("unexpected ping timeout: %v", cfg.PingTimeout.Std())
	}
	if cfg.HistoryLimit != 50 {
		t.Fatalf("unexpected history limit: %d", cfg.HistoryLimit)
	}
	// Anything the file omits keeps its default.
	if cfg.SweepInterval.Std() != 2*time.Second {
		t.Fatalf("expected default sweep interval, got %v", cfg.SweepInterval.Std())
	}
}

func TestLoad_RejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messenger.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for invalid yaml")
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messenger.yaml")
	if err := os.WriteFile(path, []byte(`ping_timeout: "soon"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for unparseable duration")
	}
}

func TestLoad_SanitizesNonPositiveValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messenger.yaml")
	if err := os.WriteFile(path, []byte("history_limit: -1\ninbound_queue: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryLimit != Default().HistoryLimit {
		t.Fatalf("expected history limit reset to default, got %d", cfg.HistoryLimit)
	}
	if cfg.InboundQueue != Default().InboundQueue {
		t.Fatalf("expected inbound queue reset to default, got %d", cfg.InboundQueue)
	}
}
