package orchestrator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

func TestTriggeredEvents(t *testing.T) {
	o := newTestOrchestrator(t, "")
	st := campaign.State{
		ActiveArcs:         []campaign.Arc{{ArcID: "a1", CharacterID: "mira", Completion: 0.1}},
		CharacterLocations: map[string]string{"mira": "the tavern"},
	}
	events, _ := o.GenerateEvents(st, 1)
	if len(events) != 1 || events[0].LocationHint != "the tavern" {
		t.Fatalf("setup: got %+v", events)
	}

	tests := []struct {
		name       string
		ac         ActionContext
		wantReason string
	}{
		{"action-mentions-location", ActionContext{Action: "I walk into The Tavern"}, "location"},
		{"location-hint", ActionContext{Action: "look around", Location: "tavern"}, "location"},
		{"character-id", ActionContext{Action: "rest", CharacterID: "Player"}, "character"},
		{"emotion", ActionContext{Action: "pause", Emotion: strings.ToUpper(events[0].EmotionalContext[0])}, "emotion"},
		{"suggested-action", ActionContext{Action: events[0].SuggestedActions[0]}, "suggested_action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.TriggeredEvents(tt.ac)
			if len(got) != 1 {
				t.Fatalf("expected 1 trigger, got %d", len(got))
			}
			found := false
			for _, r := range got[0].Reasons {
				if r == tt.wantReason {
					found = true
				}
			}
			if !found {
				t.Errorf("reasons %v missing %q", got[0].Reasons, tt.wantReason)
			}
		})
	}

	if got := o.TriggeredEvents(ActionContext{Action: "zzz"}); len(got) != 0 {
		t.Errorf("unrelated action matched %d events", len(got))
	}

	o.ExecuteEvent(events[0].EventID, "")
	if got := o.TriggeredEvents(ActionContext{Action: "the tavern"}); len(got) != 0 {
		t.Error("executed events should not trigger")
	}
}

func TestEnhanceEvent(t *testing.T) {
	ev := &Event{
		EventID:          "e1",
		EventType:        EventPlotDevelopment,
		Priority:         PriorityHigh,
		Title:            "The Smuggler Ring strikes",
		Description:      "Crates vanish from the docks.",
		SuggestedActions: []string{"a", "b", "c", "d"},
		TimingHint:       "soon",
	}
	st := campaign.State{
		ActiveArcs: []campaign.Arc{{ArcID: "a1", Title: "Unrelated"}},
		OpenThreads: []campaign.Thread{
			{ThreadID: "t1", Title: "The Smuggler Ring", Priority: 6},
			{ThreadID: "t2", Title: "Harvest"},
		},
		RecentMemories: []campaign.Memory{{Content: "Mira saw lanterns on the water."}},
	}

	got := EnhanceEvent(ev, st)
	if got == ev {
		t.Fatal("expected a copy")
	}
	if got.UrgencyLevel != "important" || got.Icon != "📜" {
		t.Errorf("urgency/icon: %q %q", got.UrgencyLevel, got.Icon)
	}
	if len(got.MemoryTieIns) != 1 || !strings.Contains(got.MemoryTieIns[0], "lanterns") {
		t.Errorf("tie-ins: %v", got.MemoryTieIns)
	}
	if len(got.ArcImpacts) != 0 {
		t.Errorf("arc impacts: %v", got.ArcImpacts)
	}
	if _, ok := got.ThreadImpacts["t1"]; !ok || len(got.ThreadImpacts) != 1 {
		t.Errorf("thread impacts: %v", got.ThreadImpacts)
	}
	if len(got.SuggestedResponses) != 4 || got.SuggestedResponses[3].ID != "wait_and_observe" {
		t.Errorf("responses: %+v", got.SuggestedResponses)
	}
	if ev.UrgencyLevel != "" || ev.SuggestedResponses != nil {
		t.Error("original event was modified")
	}
}

func TestUrgencyLabel(t *testing.T) {
	tests := map[Priority]string{
		PriorityCritical:   "urgent",
		PriorityHigh:       "important",
		PriorityMedium:     "moderate",
		PriorityLow:        "minor",
		PriorityBackground: "ambient",
		Priority("odd"):    "moderate",
	}
	for p, want := range tests {
		if got := urgencyLabel(p); got != want {
			t.Errorf("%s: got %q, want %q", p, got, want)
		}
	}
}

func TestAnalyzeCampaignState(t *testing.T) {
	mem := &fakeMemories{recall: []campaign.Memory{
		{Content: "The bridge collapsed", Type: "world_event", Metadata: map[string]any{
			"urgency": "high", "session_id": "s2",
		}},
		{Content: "Mira wept at the shrine", Metadata: map[string]any{
			"emotional_context":   []any{"Grief", "hope"},
			"emotional_intensity": 0.8,
			"location":            "the shrine",
			"character_id":        "mira",
			"session_id":          "s1",
		}},
		{Content: "A quiet night", Metadata: map[string]any{
			"emotional_context": "grief",
			"session_id":        "s1",
		}},
	}}
	arcs := &fakeArcs{arcs: []campaign.Arc{{ArcID: "a1", Status: "active", CreatedAt: testNow.Add(-time.Hour)}}}
	threads := &fakeThreads{threads: []campaign.Thread{{ThreadID: "t1", Priority: 5}}}
	o := newTestOrchestrator(t, "", WithMemoryStore(mem), WithArcStore(arcs), WithThreadStore(threads))

	st := o.AnalyzeCampaignState()
	if st.CampaignID != "test-campaign" || !st.CreatedAt.Equal(testNow) {
		t.Errorf("header: %+v", st)
	}
	if len(st.ActiveArcs) != 1 || len(st.OpenThreads) != 1 || len(st.RecentMemories) != 3 {
		t.Errorf("collections: %d arcs, %d threads, %d memories", len(st.ActiveArcs), len(st.OpenThreads), len(st.RecentMemories))
	}
	if !approx(st.EmotionalContext["grief"], 1.3) || !approx(st.EmotionalContext["hope"], 0.8) {
		t.Errorf("emotions: %v", st.EmotionalContext)
	}
	if st.CharacterLocations["mira"] != "the shrine" {
		t.Errorf("locations: %v", st.CharacterLocations)
	}
	if len(st.WorldEvents) != 1 || st.WorldEvents[0].Urgency != "high" {
		t.Errorf("world events: %+v", st.WorldEvents)
	}
	if st.SessionCount != 2 {
		t.Errorf("sessions: got %d", st.SessionCount)
	}
}

func TestAnalyzeCampaignState_NoCollaborators(t *testing.T) {
	o := newTestOrchestrator(t, "", WithMemoryStore(&fakeMemories{err: errors.New("down")}))
	st := o.AnalyzeCampaignState()
	if st.SessionCount != 1 || len(st.RecentMemories) != 0 || st.EmotionalContext == nil {
		t.Errorf("expected empty snapshot, got %+v", st)
	}
}
