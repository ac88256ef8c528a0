package orchestrator

// #region imports
import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion

// #region summaries

// EventSummary counts every known event.
func (o *Orchestrator) EventSummary() EventSummary {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := EventSummary{
		ByPriority: make(map[Priority]int),
		ByType:     make(map[EventType]int),
	}
	for _, ev := range o.events {
		s.Total++
		if ev.Pending() {
			s.Pending++
		} else {
			s.Executed++
		}
		s.ByPriority[ev.Priority]++
		s.ByType[ev.EventType]++
	}
	return s
}

// ConflictSummary counts every known conflict.
func (o *Orchestrator) ConflictSummary() ConflictSummary {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := ConflictSummary{
		ByType:    make(map[ConflictType]int),
		ByUrgency: make(map[Urgency]int),
	}
	for _, c := range o.conflicts {
		s.Total++
		if c.Active() {
			s.Active++
		} else {
			s.Resolved++
		}
		s.ByType[c.ConflictType]++
		s.ByUrgency[c.Urgency]++
	}
	return s
}

// #endregion

// #region insights

const (
	dominantEmotionCount = 3
	pendingBacklog       = 5
)

// Insights reads st against the thresholds used for scoring and suggests
// where the next session should spend its attention.
func (o *Orchestrator) Insights(st campaign.State) Insights {
	in := Insights{
		CampaignID:      o.campaignID,
		PendingEvents:   len(o.PendingEvents(EventFilter{})),
		ActiveConflicts: len(o.ActiveConflicts(ConflictFilter{})),
	}

	emotions := sortedKeys(st.EmotionalContext)
	sort.SliceStable(emotions, func(i, j int) bool {
		return st.EmotionalContext[emotions[i]] > st.EmotionalContext[emotions[j]]
	})
	if len(emotions) > dominantEmotionCount {
		emotions = emotions[:dominantEmotionCount]
	}
	in.DominantEmotions = emotions

	for _, arc := range st.ActiveArcs {
		switch {
		case arc.Completion < arcStartedBelow:
			in.StalledArcs = append(in.StalledArcs, arc.Title)
		case arc.Completion > arcFinishingAbove:
			in.NearlyDoneArcs = append(in.NearlyDoneArcs, arc.Title)
		}
	}
	for _, th := range st.OpenThreads {
		if th.Priority >= threadCriticalFrom {
			in.UrgentThreads = append(in.UrgentThreads, th.Title)
		}
	}

	for _, t := range in.StalledArcs {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf("Give %q a scene that moves it forward", t))
	}
	for _, t := range in.NearlyDoneArcs {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf("Build toward the climax of %q", t))
	}
	for _, t := range in.UrgentThreads {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf("Address %q before it escalates", t))
	}
	if in.ActiveConflicts > 0 {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf("Resolve %d active conflicts", in.ActiveConflicts))
	}
	if in.PendingEvents > pendingBacklog {
		in.Recommendations = append(in.Recommendations, fmt.Sprintf("Execute or set aside some of the %d pending events", in.PendingEvents))
	}
	if len(in.Recommendations) == 0 {
		in.Recommendations = []string{"The campaign is balanced; consider introducing a new thread"}
	}
	return in
}

// #endregion
