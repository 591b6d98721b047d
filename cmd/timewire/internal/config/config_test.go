package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Graph.PrimaryInputs != 4 || cfg.Graph.Stages != 3 || cfg.Graph.Fanout != 2 {
		t.Errorf("unexpected graph defaults: %+v", cfg.Graph)
	}
	if cfg.Baseline.Layers != 6 {
		t.Errorf("baseline.layers default = %d, want 6", cfg.Baseline.Layers)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	content := "graph:\n  primary_inputs: 8\n  stages: 2\n  fanout: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graph.PrimaryInputs != 8 || cfg.Graph.Stages != 2 || cfg.Graph.Fanout != 4 {
		t.Errorf("unexpected graph config: %+v", cfg.Graph)
	}
	// Unset sections keep their defaults.
	if cfg.Baseline.Layers != 6 {
		t.Errorf("baseline.layers = %d, want default 6", cfg.Baseline.Layers)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte("graph:\n  fanout: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("fanout 0 should be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/demo.yaml"); err == nil {
		t.Error("missing file should be an error")
	}
}
