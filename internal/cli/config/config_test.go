package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultOutput != "table" {
		t.Errorf("DefaultOutput = %q, want table", cfg.DefaultOutput)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	cfg := Default()
	cfg.DefaultOutput = "json"
	cfg.GhostDir = "/ghosts"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DefaultOutput != "json" {
		t.Errorf("DefaultOutput = %q, want json", loaded.DefaultOutput)
	}
	if loaded.GhostDir != "/ghosts" {
		t.Errorf("GhostDir = %q, want /ghosts", loaded.GhostDir)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := Save(Default(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Corrupt the file.
	if err := os.WriteFile(path, []byte("default_output: [unterminated"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}
