package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repopick", "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != "xml" || cfg.DefaultBackend != "repomix" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Compress || cfg.StripComments || cfg.IncludeTree {
		t.Errorf("toggles should default off: %+v", cfg)
	}

	// The default file is written so the next load reads it back.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := Config{
		Compress:       true,
		StripComments:  true,
		IncludeTree:    true,
		Format:         "markdown",
		DefaultBackend: "yek",
		Exclude:        []string{"**/*.pb.go", "vendor/**"},
	}
	if err := SaveTo(path, want); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if got.Compress != want.Compress || got.Format != want.Format ||
		got.DefaultBackend != want.DefaultBackend || len(got.Exclude) != 2 {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadFromEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != "xml" {
		t.Errorf("empty file should yield defaults, got %+v", cfg)
	}
}

func TestLoadFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("compress: [not a bool"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestSavePreservesUnknownKeysAbsence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveTo(path, Default()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "exclude") {
		t.Errorf("empty exclude list should be omitted:\n%s", data)
	}
}
