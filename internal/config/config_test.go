package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetdesk/internal/config"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}

	if cfg.Server.Bind != "127.0.0.1:8420" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "assetdesk", "assetdesk.db")
	if cfg.Server.Database != wantDB {
		t.Fatalf("unexpected database path: got %q want %q", cfg.Server.Database, wantDB)
	}
	if len(cfg.Approval.Chain) != 0 {
		t.Fatalf("expected empty chain by default, got %v", cfg.Approval.Chain)
	}
	if cfg.Geolocation.Endpoint != "" {
		t.Fatal("expected geolocation disabled by default")
	}
	if cfg.Geolocation.TimeoutSeconds != 10 || cfg.Geolocation.MaxAgeSeconds != 300 {
		t.Fatalf("unexpected geolocation bounds: %+v", cfg.Geolocation)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
bind = "0.0.0.0:9000"
database = "` + filepath.Join(dir, "test.db") + `"

[approval]
chain = ["hod", "principal"]

[geolocation]
endpoint = "http://localhost:4000/fix"

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Bind != "0.0.0.0:9000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if len(cfg.Approval.Chain) != 2 || cfg.Approval.Chain[0] != "hod" {
		t.Fatalf("unexpected chain: %v", cfg.Approval.Chain)
	}
	if cfg.Geolocation.Endpoint != "http://localhost:4000/fix" {
		t.Fatalf("unexpected endpoint: %q", cfg.Geolocation.Endpoint)
	}
	// Level is normalized to lowercase.
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownChainRole(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[approval]
chain = ["hod", "janitor"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "janitor") {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for bad log level")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(config.Sample()), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
