package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion

// #region rules

const (
	stalledArcAge          = 72 * time.Hour
	contradictionAbove     = 0.5
	externalThreadPriority = 7

	iconInternal      = "🧠"
	iconInterpersonal = "🗣️"
	iconExternal      = "⚔️"
)

// emotionPair is a pair of emotions that pull against each other when both run high.
type emotionPair struct {
	First, Second string
}

var contradictoryEmotions = []emotionPair{
	{"fear", "determination"},
	{"loyalty", "suspicion"},
}

// goalRule flags a goal mentioning Keyword as opposed to any goal mentioning one of Opposes.
type goalRule struct {
	Keyword string
	Opposes []string
}

var goalOppositions = []goalRule{
	{"power", []string{"peace", "harmony"}},
	{"wealth", []string{"generosity", "charity"}},
	{"revenge", []string{"forgiveness", "mercy"}},
	{"control", []string{"freedom", "independence"}},
	{"safety", []string{"adventure", "risk"}},
}

// goalMarkers identify arc descriptions that state a goal.
var goalMarkers = []string{"goal", "seek"}

var urgentWorldEvents = map[string]bool{"high": true, "critical": true}

// #endregion

// #region detector

// Detector scans a campaign state for internal, interpersonal and external conflicts.
type Detector struct {
	lib   *Library
	rng   *rand.Rand
	now   func() time.Time
	title cases.Caser
}

// NewDetector creates a conflict detector over a template library.
func NewDetector(lib *Library, rng *rand.Rand, now func() time.Time) *Detector {
	return &Detector{
		lib:   lib,
		rng:   rng,
		now:   now,
		title: cases.Title(language.English),
	}
}

// Detect runs every scan and returns what they found. A failing scan is
// logged and contributes nothing.
func (d *Detector) Detect(st campaign.State) []*Conflict {
	var out []*Conflict
	out = append(out, d.scan("internal", func() []*Conflict { return d.internal(st) })...)
	out = append(out, d.scan("interpersonal", func() []*Conflict { return d.interpersonal(st) })...)
	out = append(out, d.scan("external", func() []*Conflict { return d.external(st) })...)
	return out
}

func (d *Detector) scan(name string, fn func() []*Conflict) (found []*Conflict) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[CONFLICT] error: %s scan: %v", name, r)
			found = nil
		}
	}()
	return fn()
}

func (d *Detector) pick(set string) (ConflictTemplate, bool) {
	tpls := d.lib.Conflicts[set]
	if len(tpls) == 0 {
		return ConflictTemplate{}, false
	}
	return tpls[d.rng.Intn(len(tpls))], true
}

// #endregion

// #region internal

func (d *Detector) internal(st campaign.State) []*Conflict {
	var out []*Conflict
	now := d.now()

	for _, arc := range st.ActiveArcs {
		if arc.Status != campaign.ArcActive || arc.CreatedAt.IsZero() {
			continue
		}
		age := now.Sub(arc.CreatedAt)
		if age <= stalledArcAge {
			continue
		}
		if c := d.stalledArc(arc, age, now); c != nil {
			out = append(out, c)
		}
	}

	for _, pair := range contradictoryEmotions {
		a, b := st.EmotionalContext[pair.First], st.EmotionalContext[pair.Second]
		if a > contradictionAbove && b > contradictionAbove {
			out = append(out, d.emotionalContradiction(pair, a, b, now))
		}
	}
	return out
}

func (d *Detector) stalledArc(arc campaign.Arc, age time.Duration, now time.Time) *Conflict {
	tpl, ok := d.pick(conflictSetInternal)
	if !ok {
		log.Printf("[CONFLICT] no internal templates")
		return nil
	}
	character := orDefault(arc.CharacterID, defaultTarget)
	values := map[string]string{
		"character": character,
		"arc":       orDefault(arc.Title, fallbackArc),
	}
	return &Conflict{
		ConflictID:         fmt.Sprintf("internal_%s_%d", arc.ArcID, now.Unix()),
		ConflictType:       ConflictInternal,
		Urgency:            UrgencyMedium,
		Title:              fill(tpl.Title, values),
		Description:        fill(tpl.Description, values),
		InvolvedCharacters: []string{character},
		RelatedArcs:        []string{arc.ArcID},
		RelatedThreads:     []string{},
		SuggestedResolutions: []Resolution{
			{
				ID:              "push_forward",
				Text:            "Push forward despite the doubt",
				Description:     fmt.Sprintf("%s recommits to %s, whatever it costs.", character, values["arc"]),
				EmotionalImpact: "determination rises",
				ArcImpact:       "arc accelerates",
			},
			{
				ID:              "seek_guidance",
				Text:            "Seek guidance from a trusted ally",
				Description:     "Talking it through may reveal a way forward.",
				EmotionalImpact: "doubt eases",
				ArcImpact:       "steady progress",
			},
			{
				ID:              "let_go",
				Text:            "Set the goal aside for now",
				Description:     "Not every road must be walked today.",
				EmotionalImpact: "relief mixed with regret",
				ArcImpact:       "arc pauses",
			},
		},
		ImpactPreview: ImpactPreview{
			EmotionalChanges: map[string]float64{"doubt": -0.2, "determination": 0.2},
			ArcProgress:      0.15,
		},
		EmotionalContext:    append([]string(nil), tpl.Emotions...),
		ValueContradictions: append([]string(nil), tpl.ValueContradictions...),
		CreatedAt:           now,
		Metadata: map[string]any{
			"source":       "stalled_arc",
			"arc_age_days": age.Hours() / 24,
		},
		Icon: iconInternal,
	}
}

func (d *Detector) emotionalContradiction(p emotionPair, a, b float64, now time.Time) *Conflict {
	first, second := d.title.String(p.First), d.title.String(p.Second)
	return &Conflict{
		ConflictID:   fmt.Sprintf("emotional_%s_%s_%d", p.First, p.Second, now.Unix()),
		ConflictType: ConflictInternal,
		Urgency:      UrgencyMedium,
		Title:        fmt.Sprintf("Torn Between %s and %s", first, second),
		Description: fmt.Sprintf("A powerful sense of %s wars with an equally strong %s. Something has to give.",
			p.First, p.Second),
		InvolvedCharacters: []string{defaultTarget},
		RelatedArcs:        []string{},
		RelatedThreads:     []string{},
		SuggestedResolutions: []Resolution{
			{
				ID:              "embrace_" + p.First,
				Text:            "Embrace your " + p.First,
				Description:     fmt.Sprintf("Let %s guide the next choice.", p.First),
				EmotionalImpact: p.First + " strengthens",
			},
			{
				ID:              "find_balance",
				Text:            "Find balance between them",
				Description:     fmt.Sprintf("Acknowledge both %s and %s without letting either rule.", p.First, p.Second),
				EmotionalImpact: "both emotions settle",
			},
			{
				ID:              "suppress_" + p.Second,
				Text:            "Suppress your " + p.Second,
				Description:     fmt.Sprintf("Push %s aside and act.", p.Second),
				EmotionalImpact: p.Second + " fades",
			},
		},
		ImpactPreview: ImpactPreview{
			EmotionalChanges: map[string]float64{p.First: 0.2, p.Second: -0.2},
		},
		EmotionalContext:    []string{p.First, p.Second},
		ValueContradictions: []string{p.First + " vs " + p.Second},
		CreatedAt:           now,
		Metadata: map[string]any{
			"source":            "emotional_contradiction",
			p.First + "_level":  a,
			p.Second + "_level": b,
		},
		Icon: iconInternal,
	}
}

// #endregion

// #region interpersonal

type characterGoals struct {
	goals  []string
	arcIDs []string
}

func (d *Detector) interpersonal(st campaign.State) []*Conflict {
	byChar := make(map[string]*characterGoals)
	var order []string
	for _, arc := range st.ActiveArcs {
		if arc.CharacterID == "" || !mentionsGoal(arc.Description) {
			continue
		}
		cg, ok := byChar[arc.CharacterID]
		if !ok {
			cg = &characterGoals{}
			byChar[arc.CharacterID] = cg
			order = append(order, arc.CharacterID)
		}
		cg.goals = append(cg.goals, arc.Description)
		cg.arcIDs = append(cg.arcIDs, arc.ArcID)
	}

	var out []*Conflict
	now := d.now()
	for _, c1 := range order {
		for _, c2 := range order {
			if c1 == c2 {
				continue
			}
			clashes := ConflictingGoals(byChar[c1].goals, byChar[c2].goals)
			if len(clashes) == 0 {
				continue
			}
			arcs := append(append([]string{}, byChar[c1].arcIDs...), byChar[c2].arcIDs...)
			if c := d.goalClash(c1, c2, clashes, arcs, now); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func mentionsGoal(desc string) bool {
	lower := strings.ToLower(desc)
	for _, m := range goalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ConflictingGoals tests every goal pair against the opposition rules and
// returns "keyword vs opposite" for each match, without duplicates.
func ConflictingGoals(goals1, goals2 []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g1 := range goals1 {
		l1 := strings.ToLower(g1)
		for _, g2 := range goals2 {
			l2 := strings.ToLower(g2)
			for _, rule := range goalOppositions {
				if !strings.Contains(l1, rule.Keyword) {
					continue
				}
				for _, opp := range rule.Opposes {
					if !strings.Contains(l2, opp) {
						continue
					}
					clash := rule.Keyword + " vs " + opp
					if !seen[clash] {
						seen[clash] = true
						out = append(out, clash)
					}
				}
			}
		}
	}
	return out
}

func (d *Detector) goalClash(c1, c2 string, clashes, arcIDs []string, now time.Time) *Conflict {
	tpl, ok := d.pick(conflictSetInterpersonal)
	if !ok {
		log.Printf("[CONFLICT] no interpersonal templates")
		return nil
	}
	values := map[string]string{"character": c1, "other_character": c2}
	contradictions := append(append([]string{}, tpl.ValueContradictions...), clashes...)
	return &Conflict{
		ConflictID:         fmt.Sprintf("interpersonal_%s_%s_%d", c1, c2, now.Unix()),
		ConflictType:       ConflictInterpersonal,
		Urgency:            UrgencyHigh,
		Title:              fill(tpl.Title, values),
		Description:        fill(tpl.Description, values),
		InvolvedCharacters: []string{c1, c2},
		RelatedArcs:        arcIDs,
		RelatedThreads:     []string{},
		SuggestedResolutions: []Resolution{
			{
				ID:                 "compromise",
				Text:               "Find a compromise",
				Description:        fmt.Sprintf("%s and %s each give a little ground.", c1, c2),
				RelationshipImpact: "trust strengthens",
				RelationshipDelta:  0.1,
			},
			{
				ID:                 "support_one_side",
				Text:               "Support " + c1,
				Description:        fmt.Sprintf("Back %s openly, at the cost of %s's goodwill.", c1, c2),
				RelationshipImpact: "one bond strengthens, the other strains",
				RelationshipDelta:  -0.15,
			},
			{
				ID:                 "mediate",
				Text:               "Mediate between them",
				Description:        "Help both sides hear each other before anything is decided.",
				RelationshipImpact: "cautious understanding",
				RelationshipDelta:  0.05,
			},
		},
		ImpactPreview: ImpactPreview{
			EmotionalChanges: map[string]float64{"tension": 0.2},
			RelationshipChanges: map[string]float64{
				c1 + "_" + c2: -0.1,
				c2 + "_" + c1: -0.1,
			},
		},
		EmotionalContext:    append([]string(nil), tpl.Emotions...),
		ValueContradictions: contradictions,
		CreatedAt:           now,
		Metadata: map[string]any{
			"source":            "goal_opposition",
			"conflicting_goals": strings.Join(clashes, "; "),
		},
		Icon: iconInterpersonal,
	}
}

// #endregion

// #region external

// threat is what an external conflict is built around: an open thread or a world event.
type threat struct {
	key        string
	title      string
	detail     string
	threadID   string
	source     string
	impact     string
	importance int
}

func (d *Detector) external(st campaign.State) []*Conflict {
	var out []*Conflict
	now := d.now()
	for _, th := range st.OpenThreads {
		if th.Priority < externalThreadPriority {
			continue
		}
		t := threat{
			key:        th.ThreadID,
			title:      th.Title,
			detail:     th.Description,
			threadID:   th.ThreadID,
			source:     "plot_thread",
			importance: th.Priority,
		}
		if c := d.threatConflict(t, now); c != nil {
			out = append(out, c)
		}
	}
	for _, ev := range st.WorldEvents {
		if !urgentWorldEvents[strings.ToLower(ev.Urgency)] {
			continue
		}
		t := threat{
			key:    "event_" + slug(ev.Title),
			title:  ev.Title,
			detail: ev.Description,
			source: "world_event",
			impact: ev.Impact,
		}
		if c := d.threatConflict(t, now); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (d *Detector) threatConflict(t threat, now time.Time) *Conflict {
	tpl, ok := d.pick(conflictSetExternal)
	if !ok {
		log.Printf("[CONFLICT] no external templates")
		return nil
	}
	values := map[string]string{
		"threat": orDefault(t.title, fallbackThread),
		"thread": t.detail,
	}
	related := []string{}
	if t.threadID != "" {
		related = append(related, t.threadID)
	}
	meta := map[string]any{"source": t.source}
	if t.importance > 0 {
		meta["thread_priority"] = float64(t.importance)
	}
	if t.impact != "" {
		meta["impact"] = t.impact
	}
	return &Conflict{
		ConflictID:         fmt.Sprintf("external_%s_%d", t.key, now.Unix()),
		ConflictType:       ConflictExternalThreat,
		Urgency:            UrgencyCritical,
		Title:              fill(tpl.Title, values),
		Description:        strings.TrimSpace(fill(tpl.Description, values)),
		InvolvedCharacters: []string{defaultTarget},
		RelatedArcs:        []string{},
		RelatedThreads:     related,
		SuggestedResolutions: []Resolution{
			{
				ID:          "confront",
				Text:        "Confront the threat directly",
				Description: fmt.Sprintf("Meet %s head-on.", values["threat"]),
				RiskLevel:   "high",
			},
			{
				ID:          "strategize",
				Text:        "Gather allies and plan",
				Description: "Take time to prepare before acting.",
				RiskLevel:   "medium",
			},
			{
				ID:          "avoid",
				Text:        "Avoid the threat for now",
				Description: "Stay out of its path and hope it passes.",
				RiskLevel:   "low",
			},
		},
		ImpactPreview: ImpactPreview{
			EmotionalChanges:  map[string]float64{"courage": 0.2, "fear": 0.1},
			WorldImplications: []string{fmt.Sprintf("The outcome will shape what becomes of %s", values["threat"])},
		},
		EmotionalContext:    append([]string(nil), tpl.Emotions...),
		ValueContradictions: append([]string(nil), tpl.ValueContradictions...),
		CreatedAt:           now,
		Metadata:            meta,
		Icon:                iconExternal,
	}
}

// slug lowercases s and joins its words with underscores.
func slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return "untitled"
	}
	return strings.Join(fields, "_")
}

// #endregion
