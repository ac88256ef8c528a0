package main

import (
	"testing"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

func TestParseArc(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want campaign.Arc
		ok   bool
	}{
		{"title-only", "mira The Lost Crown", campaign.Arc{CharacterID: "mira", Title: "The Lost Crown"}, true},
		{"with-description", "mira The Lost Crown | seek power in the old court",
			campaign.Arc{CharacterID: "mira", Title: "The Lost Crown", Description: "seek power in the old court"}, true},
		{"missing-title", "mira", campaign.Arc{}, false},
		{"missing-title-with-description", "mira | only a description", campaign.Arc{}, false},
		{"empty", "", campaign.Arc{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseArc(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseThread(t *testing.T) {
	got, ok := parseThread("8 The Smuggler Ring | crates vanish from the docks")
	want := campaign.Thread{Title: "The Smuggler Ring", Description: "crates vanish from the docks", Priority: 8}
	if !ok || got.Title != want.Title || got.Description != want.Description || got.Priority != want.Priority {
		t.Errorf("got %+v, %v", got, ok)
	}
	if _, ok := parseThread("high The Smuggler Ring"); ok {
		t.Error("non-numeric priority accepted")
	}
}

func TestMemoryMetadata(t *testing.T) {
	if md := memoryMetadata(""); md != nil {
		t.Errorf("no session: got %v", md)
	}
	if md := memoryMetadata("session-3"); md["session_id"] != "session-3" {
		t.Errorf("session: got %v", md)
	}
}
