package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
)

// #region config
// Config holds the orchestrator's runtime settings.
type Config struct {
	CampaignID    string `env:"ORCHESTRATOR_CAMPAIGN" envDefault:"default"`
	EventsPath    string `env:"ORCHESTRATOR_EVENTS_PATH" envDefault:"data/orchestration_events.jsonl"`
	NarrativeDB   string `env:"ORCHESTRATOR_NARRATIVE_DB" envDefault:"data/narrative.db"`
	Seed          int64  `env:"ORCHESTRATOR_SEED" envDefault:"0"`
	MaxEvents     int    `env:"ORCHESTRATOR_MAX_EVENTS" envDefault:"5"`
	TemplatesPath string `env:"ORCHESTRATOR_TEMPLATES"`
	Enabled       bool   `env:"ORCHESTRATOR_ENABLED" envDefault:"true"`
	SessionID     string `env:"ORCHESTRATOR_SESSION"`

	Weights WeightConfig `envPrefix:"ORCHESTRATOR_WEIGHT_"`
}

// WeightConfig mirrors orchestrator.Weights for environment parsing.
type WeightConfig struct {
	Arc                  float64 `env:"ARC" envDefault:"0.3"`
	Thread               float64 `env:"THREAD" envDefault:"0.25"`
	Emotion              float64 `env:"EMOTION" envDefault:"0.2"`
	MemoryRecency        float64 `env:"MEMORY_RECENCY" envDefault:"0.15"`
	CharacterDevelopment float64 `env:"CHARACTER_DEVELOPMENT" envDefault:"0.1"`
}

// #endregion config

// #region load
// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set take precedence over the file.
func Load(files ...string) (Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the orchestrator cannot run with.
func (c Config) Validate() error {
	if c.CampaignID == "" {
		return fmt.Errorf("config: campaign id is empty")
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("config: max events %d is negative", c.MaxEvents)
	}
	w := c.Weights
	for name, v := range map[string]float64{
		"arc": w.Arc, "thread": w.Thread, "emotion": w.Emotion,
		"memory_recency": w.MemoryRecency, "character_development": w.CharacterDevelopment,
	} {
		if v < 0 {
			return fmt.Errorf("config: weight %s %.2f is negative", name, v)
		}
	}
	return nil
}

// OrchestratorWeights converts the configured weights.
func (c Config) OrchestratorWeights() orchestrator.Weights {
	return orchestrator.Weights{
		Arc:                  c.Weights.Arc,
		Thread:               c.Weights.Thread,
		Emotion:              c.Weights.Emotion,
		MemoryRecency:        c.Weights.MemoryRecency,
		CharacterDevelopment: c.Weights.CharacterDevelopment,
	}
}

// #endregion load
