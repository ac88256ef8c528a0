package orchestrator

// #region imports
import (
	"sort"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion

// #region weights

// Weights scales each kind of narrative pressure.
// MemoryRecency and CharacterDevelopment are carried for configuration but
// do not produce candidates yet.
type Weights struct {
	Arc                  float64
	Thread               float64
	Emotion              float64
	MemoryRecency        float64
	CharacterDevelopment float64
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{
		Arc:                  0.3,
		Thread:               0.25,
		Emotion:              0.2,
		MemoryRecency:        0.15,
		CharacterDevelopment: 0.1,
	}
}

// #endregion

// #region thresholds

const (
	arcStartedBelow    = 0.3 // completion < this → HIGH
	arcFinishingAbove  = 0.7 // completion > this → CRITICAL
	threadCriticalFrom = 8
	threadHighFrom     = 5
	emotionAbove       = 0.5
)

// #endregion

// #region score

// ScorePriorities ranks the narrative pressures in a campaign state, highest
// weight first. Arcs with completion in [0.3, 0.7] produce no candidate.
// Emotions are visited in name order so ties are reproducible.
func ScorePriorities(st campaign.State, w Weights) []Candidate {
	var out []Candidate

	for _, arc := range st.ActiveArcs {
		src := SourceData{
			ArcID:       arc.ArcID,
			CharacterID: arc.CharacterID,
			Title:       arc.Title,
			Description: arc.Description,
			Location:    st.CharacterLocations[arc.CharacterID],
			Completion:  arc.Completion,
		}
		switch {
		case arc.Completion < arcStartedBelow:
			out = append(out, Candidate{
				Category: CategoryArcCompletion,
				Level:    PriorityHigh,
				TargetID: arc.ArcID,
				Weight:   w.Arc * (1 - arc.Completion),
				Source:   src,
			})
		case arc.Completion > arcFinishingAbove:
			out = append(out, Candidate{
				Category: CategoryArcCompletion,
				Level:    PriorityCritical,
				TargetID: arc.ArcID,
				Weight:   w.Arc * arc.Completion,
				Source:   src,
			})
		}
	}

	for _, th := range st.OpenThreads {
		var level Priority
		switch {
		case th.Priority >= threadCriticalFrom:
			level = PriorityCritical
		case th.Priority >= threadHighFrom:
			level = PriorityHigh
		default:
			continue
		}
		out = append(out, Candidate{
			Category: CategoryThreadResolution,
			Level:    level,
			TargetID: th.ThreadID,
			Weight:   w.Thread * float64(th.Priority) / 10,
			Source: SourceData{
				ThreadID:    th.ThreadID,
				Title:       th.Title,
				Description: th.Description,
				Priority:    th.Priority,
			},
		})
	}

	for _, emotion := range sortedKeys(st.EmotionalContext) {
		intensity := st.EmotionalContext[emotion]
		if intensity <= emotionAbove {
			continue
		}
		out = append(out, Candidate{
			Category: CategoryEmotionalMoment,
			Level:    PriorityMedium,
			TargetID: emotion,
			Weight:   w.Emotion * intensity,
			Source: SourceData{
				Emotion:   emotion,
				Intensity: intensity,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

// #endregion

// #region helpers

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion
