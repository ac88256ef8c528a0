package replay

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
)

// #region types

// StepResult captures what one fixture step produced and how it compared.
type StepResult struct {
	StepID         string
	EventTypes     []string
	ConflictTypes  []string
	Contradictions []string
	Mismatches     []string
	Err            error
}

// Passed reports whether the step matched its expectations.
func (r StepResult) Passed() bool {
	return r.Err == nil && len(r.Mismatches) == 0
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps int
	Passed     int
	Failed     int
	Events     int
	Conflicts  int
}

// #endregion types

// #region replay

// defaultNow is the clock used when a fixture does not pin one.
var defaultNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Replay runs every step of f against a fresh in-memory orchestrator.
// Steps share the orchestrator, so events and conflicts accumulate.
func Replay(f *Fixture, lib *orchestrator.Library) []StepResult {
	now := f.Now
	if now.IsZero() {
		now = defaultNow
	}
	campaignID := f.CampaignID
	if campaignID == "" {
		campaignID = "replay"
	}

	opts := []orchestrator.Option{
		orchestrator.WithRand(rand.New(rand.NewSource(f.Seed))),
		orchestrator.WithClock(func() time.Time { return now }),
		orchestrator.WithWeights(f.ToWeights()),
	}
	if lib != nil {
		opts = append(opts, orchestrator.WithLibrary(lib))
	}
	o := orchestrator.New(campaignID, "", opts...)

	results := make([]StepResult, 0, len(f.Steps))
	for i, step := range f.Steps {
		res := StepResult{StepID: step.StepID}
		if res.StepID == "" {
			res.StepID = fmt.Sprintf("step-%d", i+1)
		}

		events, err := o.GenerateEvents(step.State, step.MaxEvents)
		if err != nil {
			res.Err = fmt.Errorf("generate: %w", err)
			results = append(results, res)
			continue
		}
		for _, ev := range events {
			res.EventTypes = append(res.EventTypes, string(ev.EventType))
		}

		if step.Detect {
			conflicts, err := o.DetectConflicts(step.State)
			if err != nil {
				res.Err = fmt.Errorf("detect: %w", err)
				results = append(results, res)
				continue
			}
			for _, c := range conflicts {
				res.ConflictTypes = append(res.ConflictTypes, string(c.ConflictType))
				res.Contradictions = append(res.Contradictions, c.ValueContradictions...)
			}
		}

		res.Mismatches = compare(step.Expected, res)
		results = append(results, res)
	}
	return results
}

func compare(want FixtureExpected, got StepResult) []string {
	var out []string
	if !equalOrdered(want.EventTypes, got.EventTypes) {
		out = append(out, fmt.Sprintf("event types: expected %v, got %v", want.EventTypes, got.EventTypes))
	}
	if !equalOrdered(want.ConflictTypes, got.ConflictTypes) {
		out = append(out, fmt.Sprintf("conflict types: expected %v, got %v", want.ConflictTypes, got.ConflictTypes))
	}
	have := make(map[string]bool, len(got.Contradictions))
	for _, c := range got.Contradictions {
		have[c] = true
	}
	for _, c := range want.Contradictions {
		if !have[c] {
			out = append(out, fmt.Sprintf("missing contradiction %q", c))
		}
	}
	return out
}

func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Events += len(r.EventTypes)
		s.Conflicts += len(r.ConflictTypes)
	}
	return s
}

// #endregion replay
