package orchestrator

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScorePriorities_ArcBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		completion float64
		wantLevel  Priority
		wantWeight float64
		wantNone   bool
	}{
		{"just-started", 0.0, PriorityHigh, 0.3, false},
		{"below-low", 0.29, PriorityHigh, 0.3 * 0.71, false},
		{"at-low", 0.3, "", 0, true},
		{"middle", 0.5, "", 0, true},
		{"at-high", 0.7, "", 0, true},
		{"above-high", 0.71, PriorityCritical, 0.3 * 0.71, false},
		{"nearly-done", 0.8, PriorityCritical, 0.24, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := campaign.State{ActiveArcs: []campaign.Arc{{ArcID: "a1", Completion: tt.completion}}}
			got := ScorePriorities(st, DefaultWeights())
			if tt.wantNone {
				if len(got) != 0 {
					t.Fatalf("expected no candidates, got %+v", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(got))
			}
			c := got[0]
			if c.Category != CategoryArcCompletion {
				t.Errorf("category: got %q", c.Category)
			}
			if c.Level != tt.wantLevel {
				t.Errorf("level: got %q, want %q", c.Level, tt.wantLevel)
			}
			if !approx(c.Weight, tt.wantWeight) {
				t.Errorf("weight: got %v, want %v", c.Weight, tt.wantWeight)
			}
			if c.TargetID != "a1" {
				t.Errorf("target: got %q", c.TargetID)
			}
		})
	}
}

func TestScorePriorities_ThreadBoundaries(t *testing.T) {
	tests := []struct {
		priority  int
		wantLevel Priority
	}{
		{1, ""},
		{4, ""},
		{5, PriorityHigh},
		{7, PriorityHigh},
		{8, PriorityCritical},
		{10, PriorityCritical},
	}

	for _, tt := range tests {
		st := campaign.State{OpenThreads: []campaign.Thread{{ThreadID: "t1", Priority: tt.priority}}}
		got := ScorePriorities(st, DefaultWeights())
		if tt.wantLevel == "" {
			if len(got) != 0 {
				t.Errorf("priority %d: expected no candidates, got %d", tt.priority, len(got))
			}
			continue
		}
		if len(got) != 1 {
			t.Fatalf("priority %d: expected 1 candidate, got %d", tt.priority, len(got))
		}
		if got[0].Level != tt.wantLevel {
			t.Errorf("priority %d: level got %q, want %q", tt.priority, got[0].Level, tt.wantLevel)
		}
		if want := 0.25 * float64(tt.priority) / 10; !approx(got[0].Weight, want) {
			t.Errorf("priority %d: weight got %v, want %v", tt.priority, got[0].Weight, want)
		}
	}
}

func TestScorePriorities_EmotionThreshold(t *testing.T) {
	st := campaign.State{EmotionalContext: map[string]float64{
		"calm":  0.5,
		"fear":  0.51,
		"anger": 2.0,
	}}
	got := ScorePriorities(st, DefaultWeights())
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].TargetID != "anger" || got[1].TargetID != "fear" {
		t.Errorf("order: got %q, %q", got[0].TargetID, got[1].TargetID)
	}
	for _, c := range got {
		if c.Level != PriorityMedium {
			t.Errorf("%s: level got %q", c.TargetID, c.Level)
		}
	}
	if !approx(got[0].Weight, 0.4) {
		t.Errorf("anger weight: got %v", got[0].Weight)
	}
}

func TestScorePriorities_SortedByWeight(t *testing.T) {
	st := campaign.State{
		ActiveArcs:       []campaign.Arc{{ArcID: "a1", Completion: 0.8}},
		OpenThreads:      []campaign.Thread{{ThreadID: "t1", Priority: 9}},
		EmotionalContext: map[string]float64{"hope": 0.9},
	}
	got := ScorePriorities(st, DefaultWeights())
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	want := []Category{CategoryArcCompletion, CategoryThreadResolution, CategoryEmotionalMoment}
	for i, c := range got {
		if c.Category != want[i] {
			t.Errorf("position %d: got %q, want %q", i, c.Category, want[i])
		}
	}
}

func TestScorePriorities_TiesKeepInsertionOrder(t *testing.T) {
	st := campaign.State{EmotionalContext: map[string]float64{"zeal": 0.8, "awe": 0.8, "joy": 0.8}}
	got := ScorePriorities(st, DefaultWeights())
	want := []string{"awe", "joy", "zeal"}
	for i, c := range got {
		if c.TargetID != want[i] {
			t.Errorf("position %d: got %q, want %q", i, c.TargetID, want[i])
		}
	}
}

func TestScorePriorities_CarriesLocation(t *testing.T) {
	st := campaign.State{
		ActiveArcs:         []campaign.Arc{{ArcID: "a1", CharacterID: "mira", Completion: 0.1}},
		CharacterLocations: map[string]string{"mira": "the lighthouse"},
	}
	got := ScorePriorities(st, DefaultWeights())
	if len(got) != 1 || got[0].Source.Location != "the lighthouse" {
		t.Fatalf("expected location from character, got %+v", got)
	}
}
