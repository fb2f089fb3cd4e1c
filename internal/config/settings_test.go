package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL() != "http://127.0.0.1:8080" {
		t.Fatalf("unexpected base url: %q", cfg.APIBaseURL())
	}
	if cfg.APITimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.APITimeout())
	}
	if cfg.Map.DefaultLat != 51.505 || cfg.Map.DefaultLng != -0.09 || cfg.DefaultZoom() != 13 {
		t.Fatalf("unexpected map defaults: %#v", cfg.Map)
	}
	if cfg.MessageDuration() != 3*time.Second {
		t.Fatalf("unexpected message duration: %v", cfg.MessageDuration())
	}
	if cfg.MaxReplyIndent() != 3 {
		t.Fatalf("unexpected max indent: %d", cfg.MaxReplyIndent())
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".geonotes")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte(`
[api]
base_url = "notes.example.com:9000/"
timeout = "2s"

[map]
default_zoom = 5

[logging]
level = "debug"
`)
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL() != "http://notes.example.com:9000" {
		t.Fatalf("unexpected base url: %q", cfg.APIBaseURL())
	}
	if cfg.APITimeout() != 2*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.APITimeout())
	}
	if cfg.DefaultZoom() != 5 {
		t.Fatalf("unexpected zoom: %d", cfg.DefaultZoom())
	}
	if cfg.Map.DefaultLat != 51.505 {
		t.Fatalf("expected untouched default lat, got %v", cfg.Map.DefaultLat)
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\ntimeout = \"soon\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected invalid timeout to fail")
	}
}

func TestIsLongNote(t *testing.T) {
	cfg := Default().Note
	if cfg.IsLongNote("short") {
		t.Fatalf("expected short note")
	}
	if !cfg.IsLongNote("a\nb\nc\nd") {
		t.Fatalf("expected four lines to be long")
	}
	long := make([]rune, 201)
	for i := range long {
		long[i] = 'x'
	}
	if !cfg.IsLongNote(string(long)) {
		t.Fatalf("expected 201 chars to be long")
	}
}
