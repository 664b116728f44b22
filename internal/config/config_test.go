package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reasoning.MaxIterations != 3 {
		t.Fatalf("max_iterations = %d, want default 3", cfg.Reasoning.MaxIterations)
	}
	if cfg.Reasoning.QualityThreshold != 0.7 {
		t.Fatalf("quality_threshold = %v, want default 0.7", cfg.Reasoning.QualityThreshold)
	}
	if cfg.API.TimeoutSeconds != 120 {
		t.Fatalf("timeout_seconds = %d, want default 120", cfg.API.TimeoutSeconds)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.yaml")
	content := `
reasoning:
  max_iterations: 5
  quality_threshold: 0.9
api:
  default_model: gemini-2.5-pro
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reasoning.MaxIterations != 5 {
		t.Fatalf("max_iterations = %d, want 5", cfg.Reasoning.MaxIterations)
	}
	if cfg.API.DefaultModel != "gemini-2.5-pro" {
		t.Fatalf("default_model = %q", cfg.API.DefaultModel)
	}
	// Untouched fields keep their defaults.
	if cfg.Store.Path != ".aegis/aegis.db" {
		t.Fatalf("store path = %q, want default", cfg.Store.Path)
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.APIKey != "env-key" {
		t.Fatalf("api key = %q, want env override", cfg.API.APIKey)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("reasoning: [not a map"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
