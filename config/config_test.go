package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stanimation3d/bessambly/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg.Compile.DefaultOptLevel != "0" {
		t.Errorf("expected default opt level \"0\", got %q", cfg.Compile.DefaultOptLevel)
	}
	if cfg.Compile.DefaultTarget != "unix" {
		t.Errorf("expected default target \"unix\", got %q", cfg.Compile.DefaultTarget)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Compile.DefaultOptLevel != "0" {
		t.Errorf("expected defaults for a missing file, got %+v", cfg)
	}
}

func TestSaveTo_ThenLoadFrom_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.DefaultConfig()
	cfg.Compile.DefaultOptLevel = "2"
	cfg.Server.Port = 9090

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Compile.DefaultOptLevel != "2" {
		t.Errorf("expected opt level \"2\" after round trip, got %q", loaded.Compile.DefaultOptLevel)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("expected port 9090 after round trip, got %d", loaded.Server.Port)
	}
}
