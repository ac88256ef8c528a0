package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"strings"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/keywords"
)

// #endregion

// #region analyze

const (
	recentMemoryLimit  = 20
	defaultIntensity   = 0.5
	worldEventType     = "world_event"
	defaultWorldUrgent = "medium"
)

// AnalyzeCampaignState builds a snapshot from the collaborators. A failing
// collaborator leaves its part of the snapshot empty.
func (o *Orchestrator) AnalyzeCampaignState() campaign.State {
	st := campaign.State{
		CampaignID:         o.campaignID,
		ActiveArcs:         []campaign.Arc{},
		OpenThreads:        []campaign.Thread{},
		RecentMemories:     []campaign.Memory{},
		EmotionalContext:   map[string]float64{},
		CharacterLocations: map[string]string{},
		WorldEvents:        []campaign.WorldEvent{},
		SessionCount:       1,
		CreatedAt:          o.now(),
	}

	if o.arcs != nil {
		arcs, err := o.arcs.GetCharacterArcs("", campaign.ArcActive)
		if err != nil {
			log.Printf("[ORCH] error: loading arcs: %v", err)
		} else {
			st.ActiveArcs = arcs
		}
	}
	if o.threads != nil {
		threads, err := o.threads.GetPlotThreads(campaign.ThreadActive)
		if err != nil {
			log.Printf("[ORCH] error: loading threads: %v", err)
		} else {
			st.OpenThreads = threads
		}
	}
	if o.memories != nil {
		mems, err := o.memories.RecallRelatedMemories("", recentMemoryLimit)
		if err != nil {
			log.Printf("[ORCH] error: loading memories: %v", err)
		} else {
			st.RecentMemories = mems
		}
	}

	sessions := make(map[string]bool)
	for _, m := range st.RecentMemories {
		intensity := defaultIntensity
		if v, ok := number(m.Metadata["emotional_intensity"]); ok {
			intensity = v
		}
		for _, e := range stringList(m.Metadata["emotional_context"]) {
			st.EmotionalContext[strings.ToLower(e)] += intensity
		}

		if loc, ok := m.Metadata["location"].(string); ok && loc != "" {
			char := defaultTarget
			if c, ok := m.Metadata["character_id"].(string); ok && c != "" {
				char = c
			}
			if _, seen := st.CharacterLocations[char]; !seen {
				st.CharacterLocations[char] = loc
			}
		}

		if m.Type == worldEventType {
			st.WorldEvents = append(st.WorldEvents, worldEventFrom(m))
		}

		if s, ok := m.Metadata["session_id"]; ok {
			sessions[fmt.Sprint(s)] = true
		}
	}
	if len(sessions) > 0 {
		st.SessionCount = len(sessions)
	}
	return st
}

func worldEventFrom(m campaign.Memory) campaign.WorldEvent {
	ev := campaign.WorldEvent{
		Title:       truncate(m.Content, 60),
		Description: m.Content,
		Urgency:     defaultWorldUrgent,
	}
	if t, ok := m.Metadata["title"].(string); ok && t != "" {
		ev.Title = t
	}
	if u, ok := m.Metadata["urgency"].(string); ok && u != "" {
		ev.Urgency = u
	}
	if i, ok := m.Metadata["impact"].(string); ok {
		ev.Impact = i
	}
	return ev
}

// stringList accepts []string, []any or a comma-separated string.
func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// #endregion

// #region triggers

// Trigger is a pending event matched by a player action, with the rules that matched.
type Trigger struct {
	Event   *Event
	Reasons []string
}

// triggerRule matches an event against a lowercased action and its hints.
type triggerRule struct {
	Name  string
	Match func(ev *Event, action string, ac ActionContext) bool
}

var triggerRules = []triggerRule{
	{"character", matchCharacter},
	{"location", matchLocation},
	{"emotion", matchEmotion},
	{"suggested_action", matchSuggestedAction},
}

func matchCharacter(ev *Event, action string, ac ActionContext) bool {
	for _, tc := range ev.TargetCharacters {
		if tc == "" {
			continue
		}
		if strings.Contains(action, strings.ToLower(tc)) || strings.EqualFold(tc, ac.CharacterID) {
			return true
		}
	}
	return false
}

func matchLocation(ev *Event, action string, ac ActionContext) bool {
	hint := strings.ToLower(ev.LocationHint)
	if hint == "" {
		return false
	}
	if strings.Contains(action, hint) {
		return true
	}
	loc := strings.ToLower(ac.Location)
	return loc != "" && (strings.Contains(loc, hint) || strings.Contains(hint, loc))
}

func matchEmotion(ev *Event, action string, ac ActionContext) bool {
	for _, e := range ev.EmotionalContext {
		if e == "" {
			continue
		}
		if strings.Contains(action, strings.ToLower(e)) || strings.EqualFold(e, ac.Emotion) {
			return true
		}
	}
	return false
}

func matchSuggestedAction(ev *Event, action string, _ ActionContext) bool {
	if action == "" {
		return false
	}
	actionTokens := keywords.Tokenize(action)
	for _, a := range ev.SuggestedActions {
		la := strings.ToLower(a)
		if la == "" {
			continue
		}
		if strings.Contains(action, la) || strings.Contains(la, action) {
			return true
		}
		if keywords.Shared(actionTokens, keywords.Tokenize(la)) >= 2 {
			return true
		}
	}
	return false
}

// TriggeredEvents returns the pending events the action touches.
func (o *Orchestrator) TriggeredEvents(ac ActionContext) []Trigger {
	action := strings.ToLower(strings.TrimSpace(ac.Action))
	var out []Trigger
	for _, ev := range o.PendingEvents(EventFilter{}) {
		var reasons []string
		for _, rule := range triggerRules {
			if rule.Match(ev, action, ac) {
				reasons = append(reasons, rule.Name)
			}
		}
		if len(reasons) > 0 {
			out = append(out, Trigger{Event: ev, Reasons: reasons})
		}
	}
	return out
}

// #endregion

// #region enhance

var urgencyLabels = map[Priority]string{
	PriorityCritical:   "urgent",
	PriorityHigh:       "important",
	PriorityMedium:     "moderate",
	PriorityLow:        "minor",
	PriorityBackground: "ambient",
}

var eventIcons = map[EventType]string{
	EventQuestSuggestion:         "🗺️",
	EventEncounterTrigger:        "⚔️",
	EventCharacterDevelopment:    "🌱",
	EventPlotDevelopment:         "📜",
	EventWorldEvent:              "🌍",
	EventEmotionalMoment:         "💭",
	EventRelationshipDevelopment: "🤝",
	EventMysteryRevelation:       "🔍",
	EventConflictEmergence:       "⚡",
}

const maxSuggestedResponses = 3

func urgencyLabel(p Priority) string {
	if l, ok := urgencyLabels[p]; ok {
		return l
	}
	return urgencyLabels[PriorityMedium]
}

// EnhanceEvent returns a copy of ev decorated for display: urgency and icon,
// a tie-in to the latest memory, impacts on arcs and threads it mentions, and
// structured responses.
func EnhanceEvent(ev *Event, st campaign.State) *Event {
	out := *ev
	out.UrgencyLevel = urgencyLabel(ev.Priority)
	out.Icon = eventIcons[ev.EventType]
	if out.Icon == "" {
		out.Icon = eventIcons[EventWorldEvent]
	}

	out.MemoryTieIns = append([]string(nil), ev.MemoryTieIns...)
	if len(st.RecentMemories) > 0 {
		out.MemoryTieIns = append(out.MemoryTieIns,
			"Echoes a recent memory: "+truncate(st.RecentMemories[0].Content, 100))
	}

	text := strings.ToLower(ev.Title + " " + ev.Description)
	out.ArcImpacts = map[string]string{}
	for _, arc := range st.ActiveArcs {
		if mentions(text, arc.Title) || mentions(text, arc.Description) {
			out.ArcImpacts[arc.ArcID] = fmt.Sprintf("Could advance %q (%.0f%% complete)", arc.Title, arc.Completion*100)
		}
	}
	out.ThreadImpacts = map[string]string{}
	for _, th := range st.OpenThreads {
		if mentions(text, th.Title) || mentions(text, th.Description) {
			out.ThreadImpacts[th.ThreadID] = fmt.Sprintf("Could shift %q (priority %d)", th.Title, th.Priority)
		}
	}

	out.SuggestedResponses = nil
	for i, a := range ev.SuggestedActions {
		if i >= maxSuggestedResponses {
			break
		}
		out.SuggestedResponses = append(out.SuggestedResponses, SuggestedResponse{
			ID:          fmt.Sprintf("response_%d", i+1),
			Text:        a,
			Description: fmt.Sprintf("%s (%s)", a, orDefault(ev.TimingHint, "when ready")),
		})
	}
	out.SuggestedResponses = append(out.SuggestedResponses, SuggestedResponse{
		ID:          "wait_and_observe",
		Text:        "Wait and observe",
		Description: "Hold back and see how things unfold.",
	})
	return &out
}

func mentions(lowerText, s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s != "" && strings.Contains(lowerText, s)
}

// #endregion
