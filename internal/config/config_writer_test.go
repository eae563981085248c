package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "statusnotify.yaml")

	data := []byte("webhook:\n  type: discord\n")

	if err := WriteFile(path, data, 0o640); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o640 {
		t.Fatalf("expected perms 0640 got %v", perm)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(written) != string(data) {
		t.Fatalf("expected config contents %q got %q", string(data), string(written))
	}
	if _, err := os.Stat(path + ".tmp"); err == nil {
		t.Fatalf("expected temp file to be renamed away")
	}
}

func TestWriteConfigExampleLoads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "statusnotify.yaml")

	if err := WriteConfig(path, Example()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	cfg, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("example config should validate: %v", err)
	}
	if len(cfg.Endpoints) != 3 {
		t.Fatalf("expected 3 endpoints, got %d", len(cfg.Endpoints))
	}
	if cfg.PacingInterval() != DefaultPacing {
		t.Fatalf("unexpected pacing %s", cfg.PacingInterval())
	}
}
