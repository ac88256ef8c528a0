package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CampaignID != "default" || cfg.MaxEvents != 5 || !cfg.Enabled {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.Seed != 0 || cfg.TemplatesPath != "" || cfg.SessionID != "" {
		t.Errorf("optional fields: %+v", cfg)
	}
	w := cfg.OrchestratorWeights()
	if w.Arc != 0.3 || w.Thread != 0.25 || w.Emotion != 0.2 || w.MemoryRecency != 0.15 || w.CharacterDevelopment != 0.1 {
		t.Errorf("weights: %+v", w)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ORCHESTRATOR_CAMPAIGN", "salt-marsh")
	t.Setenv("ORCHESTRATOR_SEED", "99")
	t.Setenv("ORCHESTRATOR_ENABLED", "false")
	t.Setenv("ORCHESTRATOR_WEIGHT_ARC", "0.5")
	t.Setenv("ORCHESTRATOR_SESSION", "s-12")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CampaignID != "salt-marsh" || cfg.Seed != 99 || cfg.Enabled || cfg.SessionID != "s-12" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Weights.Arc != 0.5 {
		t.Errorf("weight: got %v", cfg.Weights.Arc)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "ORCHESTRATOR_MAX_EVENTS=9\nORCHESTRATOR_TEMPLATES=/tmp/t.yaml\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("ORCHESTRATOR_MAX_EVENTS")
		os.Unsetenv("ORCHESTRATOR_TEMPLATES")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxEvents != 9 || cfg.TemplatesPath != "/tmp/t.yaml" {
		t.Errorf(".env not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"negative-max", "ORCHESTRATOR_MAX_EVENTS", "-1"},
		{"negative-weight", "ORCHESTRATOR_WEIGHT_EMOTION", "-0.2"},
		{"bad-seed", "ORCHESTRATOR_SEED", "not-a-number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Error("expected error")
			}
		})
	}
}
