package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
)

// #region fixture-types

// Fixture is a recorded campaign scenario: a sequence of state snapshots fed
// through generation and detection with a fixed seed and clock.
type Fixture struct {
	Description string          `json:"description" yaml:"description"`
	CampaignID  string          `json:"campaign_id" yaml:"campaign_id"`
	Seed        int64           `json:"seed" yaml:"seed"`
	Now         time.Time       `json:"now" yaml:"now"`
	Weights     *FixtureWeights `json:"weights,omitempty" yaml:"weights,omitempty"`
	Steps       []FixtureStep   `json:"steps" yaml:"steps"`
}

// FixtureWeights mirrors orchestrator.Weights with serialization tags.
type FixtureWeights struct {
	Arc                  float64 `json:"arc" yaml:"arc"`
	Thread               float64 `json:"thread" yaml:"thread"`
	Emotion              float64 `json:"emotion" yaml:"emotion"`
	MemoryRecency        float64 `json:"memory_recency" yaml:"memory_recency"`
	CharacterDevelopment float64 `json:"character_development" yaml:"character_development"`
}

// FixtureStep is one snapshot and what the orchestrator should make of it.
type FixtureStep struct {
	StepID    string          `json:"step_id" yaml:"step_id"`
	State     campaign.State  `json:"state" yaml:"state"`
	MaxEvents int             `json:"max_events" yaml:"max_events"`
	Detect    bool            `json:"detect" yaml:"detect"`
	Expected  FixtureExpected `json:"expected" yaml:"expected"`
}

// FixtureExpected lists the expected event and conflict types in order.
// Contradictions must each appear among the detected value contradictions.
type FixtureExpected struct {
	EventTypes     []string `json:"event_types" yaml:"event_types"`
	ConflictTypes  []string `json:"conflict_types" yaml:"conflict_types"`
	Contradictions []string `json:"contradictions,omitempty" yaml:"contradictions,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads a fixture file. ".yaml" and ".yml" files are decoded as
// YAML, everything else as JSON.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("fixture %s: no steps", path)
	}
	return &f, nil
}

// ToWeights returns the fixture's weights, or the defaults when unset.
func (f *Fixture) ToWeights() orchestrator.Weights {
	if f.Weights == nil {
		return orchestrator.DefaultWeights()
	}
	return orchestrator.Weights{
		Arc:                  f.Weights.Arc,
		Thread:               f.Weights.Thread,
		Emotion:              f.Weights.Emotion,
		MemoryRecency:        f.Weights.MemoryRecency,
		CharacterDevelopment: f.Weights.CharacterDevelopment,
	}
}

// #endregion fixture-loader
