package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion

// #region dispatch-tables

// categoryEvents maps a candidate category to the event type it produces.
// Categories not listed become world events.
var categoryEvents = map[Category]EventType{
	CategoryArcCompletion:    EventCharacterDevelopment,
	CategoryThreadResolution: EventPlotDevelopment,
	CategoryEmotionalMoment:  EventEmotionalMoment,
	CategoryQuestSuggestion:  EventQuestSuggestion,
	CategoryEncounterTrigger: EventEncounterTrigger,
}

var timingHints = map[Priority]string{
	PriorityCritical:   "immediately",
	PriorityHigh:       "soon",
	PriorityMedium:     "when convenient",
	PriorityLow:        "when time permits",
	PriorityBackground: "in the background",
}

var categoryConsequences = map[Category][]string{
	CategoryArcCompletion: {
		"Character growth and development",
		"New abilities or insights unlocked",
		"Relationships may be affected",
	},
	CategoryThreadResolution: {
		"Plot thread advances toward resolution",
		"New information is revealed",
		"Future events may be influenced",
	},
	CategoryEmotionalMoment: {
		"Emotional state may shift",
		"Character bonds may deepen",
		"Memories are reinforced",
	},
}

const (
	fallbackCharacter = "the player"
	fallbackArc       = "their journey"
	fallbackThread    = "the situation"
	defaultTarget     = "player"
	maxRelated        = 2
)

// EventTypeFor returns the event type generated for a category.
func EventTypeFor(c Category) EventType {
	if et, ok := categoryEvents[c]; ok {
		return et
	}
	return EventWorldEvent
}

// TimingHint returns the timing phrase for a priority.
func TimingHint(p Priority) string {
	return timingHints[p]
}

// #endregion

// #region generator

// Generator turns priority candidates into orchestration events.
type Generator struct {
	lib *Library
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator over a template library.
func NewGenerator(lib *Library, rng *rand.Rand, now func() time.Time) *Generator {
	return &Generator{lib: lib, rng: rng, now: now}
}

// #endregion

// #region generate

// Generate builds one event for a candidate. It returns nil when no event
// can be produced; failures are logged, never returned.
func (g *Generator) Generate(c Candidate, st campaign.State) (ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[GEN] error: candidate %s/%s: %v", c.Category, c.TargetID, r)
			ev = nil
		}
	}()

	set := g.lib.eventSet(c.Category)
	if len(set) == 0 {
		log.Printf("[GEN] no templates for category %s", c.Category)
		return nil
	}
	tpl := set[g.rng.Intn(len(set))]

	location := g.location(c.Source)
	values := map[string]string{
		"location":       location,
		"character":      orDefault(c.Source.CharacterID, fallbackCharacter),
		"related_arc":    fallbackArc,
		"related_thread": fallbackThread,
	}
	switch c.Category {
	case CategoryArcCompletion:
		values["related_arc"] = orDefault(c.Source.Title, fallbackArc)
	case CategoryThreadResolution:
		values["related_thread"] = orDefault(c.Source.Title, fallbackThread)
	}

	now := g.now()
	ev = &Event{
		EventID:          g.EventID(c.Category, now),
		EventType:        EventTypeFor(c.Category),
		Priority:         c.Level,
		Title:            fill(tpl.Title, values),
		Description:      fill(tpl.Description, values),
		SuggestedActions: append([]string(nil), tpl.SuggestedActions...),
		EmotionalContext: append([]string(nil), tpl.EmotionalContext...),
		RelatedArcs:      firstArcIDs(st.ActiveArcs, maxRelated),
		RelatedThreads:   firstThreadIDs(st.OpenThreads, maxRelated),
		TargetCharacters: []string{defaultTarget},
		LocationHint:     location,
		TimingHint:       TimingHint(c.Level),
		Prerequisites:    []string{},
		Consequences:     append([]string{}, categoryConsequences[c.Category]...),
		CreatedAt:        now,
		Metadata: map[string]any{
			"priority_weight": c.Weight,
			"category":        string(c.Category),
			"target_id":       c.TargetID,
		},
	}
	return ev
}

// EventID builds orchestrator_{category}_{yyyymmdd_HHMMSS}_{4 digits}.
func (g *Generator) EventID(c Category, at time.Time) string {
	return fmt.Sprintf("orchestrator_%s_%s_%04d", c, at.Format("20060102_150405"), 1000+g.rng.Intn(9000))
}

// location prefers the source's own location, then a random generic one.
func (g *Generator) location(src SourceData) string {
	if src.Location != "" {
		return src.Location
	}
	locs := g.lib.GenericLocations
	if len(locs) == 0 {
		return fallbackThread
	}
	return locs[g.rng.Intn(len(locs))]
}

// #endregion

// #region helpers

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func firstArcIDs(arcs []campaign.Arc, n int) []string {
	ids := []string{}
	for i := 0; i < len(arcs) && i < n; i++ {
		ids = append(ids, arcs[i].ArcID)
	}
	return ids
}

func firstThreadIDs(threads []campaign.Thread, n int) []string {
	ids := []string{}
	for i := 0; i < len(threads) && i < n; i++ {
		ids = append(ids, threads[i].ThreadID)
	}
	return ids
}

// #endregion
