package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion

// #region orchestrator-struct

// Orchestrator owns one campaign's events and conflicts and the files behind
// them. It scores campaign pressure, generates events, detects conflicts and
// tracks their life cycles. Methods are safe for concurrent use.
type Orchestrator struct {
	mu         sync.Mutex
	campaignID string
	enabled    bool
	weights    Weights
	lib        *Library
	rng        *rand.Rand
	now        func() time.Time

	gen      *Generator
	detector *Detector

	eventRepo    Repository[*Event]
	conflictRepo Repository[*Conflict]

	events        map[string]*Event
	eventOrder    []string
	conflicts     map[string]*Conflict
	conflictOrder []string
	history       []Decision

	memories      MemoryStore
	arcs          ArcStore
	threads       ThreadStore
	relationships RelationshipStore
	decisions     DecisionLog
}

// #endregion

// #region options

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRand sets the randomness source used for template and id selection.
func WithRand(rng *rand.Rand) Option { return func(o *Orchestrator) { o.rng = rng } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithWeights overrides DefaultWeights.
func WithWeights(w Weights) Option { return func(o *Orchestrator) { o.weights = w } }

// WithLibrary overrides the embedded template library.
func WithLibrary(lib *Library) Option { return func(o *Orchestrator) { o.lib = lib } }

// WithEnabled turns generation and detection on or off.
func WithEnabled(enabled bool) Option { return func(o *Orchestrator) { o.enabled = enabled } }

// WithRepositories replaces the file-backed repositories.
func WithRepositories(events Repository[*Event], conflicts Repository[*Conflict]) Option {
	return func(o *Orchestrator) {
		o.eventRepo = events
		o.conflictRepo = conflicts
	}
}

// WithMemoryStore sets the memory collaborator.
func WithMemoryStore(m MemoryStore) Option { return func(o *Orchestrator) { o.memories = m } }

// WithArcStore sets the arc collaborator.
func WithArcStore(a ArcStore) Option { return func(o *Orchestrator) { o.arcs = a } }

// WithThreadStore sets the thread collaborator.
func WithThreadStore(t ThreadStore) Option { return func(o *Orchestrator) { o.threads = t } }

// WithRelationshipStore sets the relationship collaborator.
func WithRelationshipStore(r RelationshipStore) Option {
	return func(o *Orchestrator) { o.relationships = r }
}

// WithDecisionLog records executions and resolutions to log.
func WithDecisionLog(l DecisionLog) Option { return func(o *Orchestrator) { o.decisions = l } }

// #endregion

// #region constructor

// New creates an orchestrator for campaignID. Events live in storagePath and
// conflicts in ConflictsPath(storagePath); an empty storagePath keeps both in
// memory. Existing records are loaded immediately.
func New(campaignID, storagePath string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		campaignID: campaignID,
		enabled:    true,
		weights:    DefaultWeights(),
		now:        func() time.Time { return time.Now().UTC() },
		events:     make(map[string]*Event),
		conflicts:  make(map[string]*Conflict),
	}
	if storagePath != "" {
		o.eventRepo = NewJSONLRepository[*Event](storagePath)
		o.conflictRepo = NewJSONLRepository[*Conflict](ConflictsPath(storagePath))
	} else {
		o.eventRepo = NewMemoryRepository[*Event]()
		o.conflictRepo = NewMemoryRepository[*Conflict]()
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.lib == nil {
		o.lib = DefaultLibrary()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	o.gen = NewGenerator(o.lib, o.rng, o.now)
	o.detector = NewDetector(o.lib, o.rng, o.now)
	o.load()
	return o
}

// load fills the in-memory maps, keeping the last record seen per id.
func (o *Orchestrator) load() {
	events, err := o.eventRepo.Load()
	if err != nil {
		log.Printf("[ORCH] error: loading events: %v", err)
	}
	for _, ev := range events {
		if ev == nil || ev.EventID == "" {
			continue
		}
		if _, seen := o.events[ev.EventID]; !seen {
			o.eventOrder = append(o.eventOrder, ev.EventID)
		}
		o.events[ev.EventID] = ev
	}

	conflicts, err := o.conflictRepo.Load()
	if err != nil {
		log.Printf("[ORCH] error: loading conflicts: %v", err)
	}
	for _, c := range conflicts {
		if c == nil || c.ConflictID == "" {
			continue
		}
		if _, seen := o.conflicts[c.ConflictID]; !seen {
			o.conflictOrder = append(o.conflictOrder, c.ConflictID)
		}
		o.conflicts[c.ConflictID] = c
	}

	if len(o.events) > 0 || len(o.conflicts) > 0 {
		log.Printf("[ORCH] loaded %d events, %d conflicts for campaign %s",
			len(o.events), len(o.conflicts), o.campaignID)
	}
}

// #endregion

// #region accessors

// CampaignID returns the campaign this orchestrator serves.
func (o *Orchestrator) CampaignID() string { return o.campaignID }

// Enabled returns whether generation and detection are active.
func (o *Orchestrator) Enabled() bool { return o.enabled }

// Event returns the event with the given id.
func (o *Orchestrator) Event(id string) (*Event, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ev, ok := o.events[id]
	return ev, ok
}

// Conflict returns the conflict with the given id.
func (o *Orchestrator) Conflict(id string) (*Conflict, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.conflicts[id]
	return c, ok
}

// #endregion

// #region generate

// GenerateEvents turns the highest-weighted priorities of st into at most
// maxEvents new events. Candidates that fail to generate are skipped.
// An error is returned only when persisting an event fails; the events
// created before the failure are still returned.
func (o *Orchestrator) GenerateEvents(st campaign.State, maxEvents int) ([]*Event, error) {
	out := []*Event{}
	if !o.enabled {
		log.Printf("[ORCH] disabled, skipping event generation")
		return out, nil
	}
	if maxEvents <= 0 {
		return out, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	candidates := ScorePriorities(st, o.weights)
	for _, c := range candidates {
		if len(out) >= maxEvents {
			break
		}
		ev := o.gen.Generate(c, st)
		if ev == nil {
			continue
		}
		for {
			if _, taken := o.events[ev.EventID]; !taken {
				break
			}
			ev.EventID = o.gen.EventID(c.Category, ev.CreatedAt)
		}
		o.events[ev.EventID] = ev
		o.eventOrder = append(o.eventOrder, ev.EventID)
		out = append(out, ev)

		if err := o.eventRepo.Append(ev); err != nil {
			log.Printf("[ORCH] error: saving event %s: %v", ev.EventID, err)
			return out, err
		}
	}

	log.Printf("[ORCH] generated %d events from %d candidates", len(out), len(candidates))
	return out, nil
}

// #endregion

// #region detect

// DetectConflicts scans st for conflicts and stores each one found.
// An error is returned only when persisting a conflict fails.
func (o *Orchestrator) DetectConflicts(st campaign.State) ([]*Conflict, error) {
	out := []*Conflict{}
	if !o.enabled {
		log.Printf("[ORCH] disabled, skipping conflict detection")
		return out, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	batch := map[string]int{}
	for _, c := range o.detector.Detect(st) {
		// Same-second detections of equal keys get a counter suffix.
		base := c.ConflictID
		batch[base]++
		if n := batch[base]; n > 1 {
			c.ConflictID = fmt.Sprintf("%s_%d", base, n)
		}

		existing, seen := o.conflicts[c.ConflictID]
		if seen && !existing.Active() {
			log.Printf("[ORCH] conflict %s already resolved, keeping it", c.ConflictID)
			continue
		}
		if !seen {
			o.conflictOrder = append(o.conflictOrder, c.ConflictID)
		}
		o.conflicts[c.ConflictID] = c
		out = append(out, c)

		if err := o.conflictRepo.Append(c); err != nil {
			log.Printf("[ORCH] error: saving conflict %s: %v", c.ConflictID, err)
			return out, err
		}
	}

	log.Printf("[ORCH] detected %d conflicts", len(out))
	return out, nil
}

// #endregion

// #region execute

var priorityIntensity = map[Priority]float64{
	PriorityCritical:   0.9,
	PriorityHigh:       0.7,
	PriorityMedium:     0.5,
	PriorityLow:        0.3,
	PriorityBackground: 0.2,
}

// ExecuteEvent marks an event executed, rewrites the event file and records
// the decision as a memory. It returns false when the event does not exist.
// A failed rewrite leaves the event pending with no memory or history entry.
func (o *Orchestrator) ExecuteEvent(eventID, notes string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ev, ok := o.events[eventID]
	if !ok {
		log.Printf("[ORCH] warning: execute: event %s not found", eventID)
		return false, nil
	}

	now := o.now()
	prev := ev.ExecutedAt
	ev.ExecutedAt = &now
	if err := o.eventRepo.Rewrite(o.orderedEvents()); err != nil {
		ev.ExecutedAt = prev
		log.Printf("[ORCH] error: rewriting events: %v", err)
		return false, err
	}

	memoryID := o.rememberDecision(ev, notes)
	o.history = append(o.history, Decision{
		EventID:    ev.EventID,
		Title:      ev.Title,
		EventType:  ev.EventType,
		Priority:   ev.Priority,
		Notes:      notes,
		MemoryID:   memoryID,
		ExecutedAt: now,
	})
	if o.decisions != nil {
		if err := o.decisions.Record("event", ev.EventID, string(ev.EventType), notes); err != nil {
			log.Printf("[ORCH] error: decision log: %v", err)
		}
	}
	log.Printf("[ORCH] executed event %s", ev.EventID)
	return true, nil
}

func (o *Orchestrator) rememberDecision(ev *Event, notes string) string {
	if o.memories == nil {
		return ""
	}
	content := "Decided to pursue: " + ev.Title
	if notes != "" {
		content += ". Notes: " + notes
	}
	emotion := "anticipation"
	if len(ev.EmotionalContext) > 0 {
		emotion = ev.EmotionalContext[0]
	}
	id, err := o.memories.StoreMemory(
		content,
		"decision",
		map[string]any{
			"event_id":          ev.EventID,
			"event_type":        string(ev.EventType),
			"priority":          string(ev.Priority),
			"notes":             notes,
			"campaign_id":       o.campaignID,
			"emotional_context": ev.EmotionalContext,
		},
		[]string{"orchestration", "decision", string(ev.EventType)},
		emotion,
		priorityIntensity[ev.Priority],
	)
	if err != nil {
		log.Printf("[ORCH] error: storing decision memory for %s: %v", ev.EventID, err)
		return ""
	}
	return id
}

func (o *Orchestrator) orderedEvents() []*Event {
	out := make([]*Event, 0, len(o.eventOrder))
	for _, id := range o.eventOrder {
		out = append(out, o.events[id])
	}
	return out
}

// #endregion

// #region resolve

var urgencyIntensity = map[Urgency]float64{
	UrgencyCritical: 0.9,
	UrgencyHigh:     0.75,
	UrgencyMedium:   0.6,
	UrgencyLow:      0.4,
}

// ResolveConflict applies the chosen resolution and marks the conflict
// resolved. It returns false when the conflict or the resolution does not
// exist. Resolving an already resolved conflict is allowed and overwrites
// the earlier choice.
func (o *Orchestrator) ResolveConflict(conflictID, resolutionID string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.conflicts[conflictID]
	if !ok {
		log.Printf("[ORCH] warning: resolve: conflict %s not found", conflictID)
		return false, nil
	}
	res, ok := c.Resolution(resolutionID)
	if !ok {
		log.Printf("[ORCH] warning: resolve: resolution %s not found on %s", resolutionID, conflictID)
		return false, nil
	}
	if !c.Active() {
		log.Printf("[ORCH] conflict %s already resolved with %s, resolving again", conflictID, c.ChosenResolution)
	}

	now := o.now()
	prevAt, prevChoice := c.ResolvedAt, c.ChosenResolution
	c.ResolvedAt = &now
	c.ChosenResolution = res.ID
	if err := o.conflictRepo.Rewrite(o.orderedConflicts()); err != nil {
		c.ResolvedAt, c.ChosenResolution = prevAt, prevChoice
		log.Printf("[ORCH] error: rewriting conflicts: %v", err)
		return false, err
	}

	o.applyResolution(c, res)
	if o.decisions != nil {
		if err := o.decisions.Record("conflict", c.ConflictID, res.ID, res.Text); err != nil {
			log.Printf("[ORCH] error: decision log: %v", err)
		}
	}
	log.Printf("[ORCH] resolved conflict %s with %s", c.ConflictID, res.ID)
	return true, nil
}

// applyResolution writes the resolution memory and forwards its effects to
// the arc, thread and relationship collaborators. Collaborator failures are
// logged and do not stop the resolution.
func (o *Orchestrator) applyResolution(c *Conflict, res Resolution) {
	var memoryIDs []string
	if o.memories != nil {
		emotion := "relief"
		if len(c.EmotionalContext) > 0 {
			emotion = c.EmotionalContext[0]
		}
		id, err := o.memories.StoreMemory(
			"Resolved \""+c.Title+"\": "+res.Text+". "+res.Description,
			"conflict_resolution",
			map[string]any{
				"conflict_id":         c.ConflictID,
				"conflict_type":       string(c.ConflictType),
				"resolution_id":       res.ID,
				"involved_characters": c.InvolvedCharacters,
				"emotional_context":   c.EmotionalContext,
				"campaign_id":         o.campaignID,
			},
			[]string{"conflict", string(c.ConflictType), res.ID},
			emotion,
			urgencyIntensity[c.Urgency],
		)
		if err != nil {
			log.Printf("[ORCH] error: storing resolution memory for %s: %v", c.ConflictID, err)
		} else if id != "" {
			memoryIDs = []string{id}
		}
	}

	if o.arcs != nil && c.ConflictType != ConflictExternalThreat {
		for _, arcID := range c.RelatedArcs {
			err := o.arcs.AddArcMilestone(arcID, "Conflict resolved: "+c.Title, res.Text, memoryIDs, c.EmotionalContext, nil)
			if err != nil {
				log.Printf("[ORCH] error: milestone for arc %s: %v", arcID, err)
			}
		}
	}

	if o.threads != nil && c.ConflictType == ConflictExternalThreat {
		status := ""
		if res.ID == "confront" {
			status = campaign.ThreadResolved
		}
		for _, threadID := range c.RelatedThreads {
			err := o.threads.AddThreadUpdate(threadID, "Threat addressed: "+res.Text, res.Description, memoryIDs, status, nil)
			if err != nil {
				log.Printf("[ORCH] error: update for thread %s: %v", threadID, err)
			}
		}
	}

	if o.relationships != nil && c.ConflictType == ConflictInterpersonal &&
		len(c.InvolvedCharacters) == 2 && res.RelationshipDelta != 0 {
		a, b := c.InvolvedCharacters[0], c.InvolvedCharacters[1]
		for _, pair := range [][2]string{{a, b}, {b, a}} {
			if err := o.relationships.AdjustRelationship(pair[0], pair[1], res.RelationshipDelta); err != nil {
				log.Printf("[ORCH] error: relationship %s->%s: %v", pair[0], pair[1], err)
			}
		}
	}
}

func (o *Orchestrator) orderedConflicts() []*Conflict {
	out := make([]*Conflict, 0, len(o.conflictOrder))
	for _, id := range o.conflictOrder {
		out = append(out, o.conflicts[id])
	}
	return out
}

// #endregion

// #region queries

var priorityRank = map[Priority]int{
	PriorityCritical:   0,
	PriorityHigh:       1,
	PriorityMedium:     2,
	PriorityLow:        3,
	PriorityBackground: 4,
}

var urgencyRank = map[Urgency]int{
	UrgencyCritical: 0,
	UrgencyHigh:     1,
	UrgencyMedium:   2,
	UrgencyLow:      3,
}

// PendingEvents returns unexecuted events matching f, most pressing first.
func (o *Orchestrator) PendingEvents(f EventFilter) []*Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*Event
	for _, ev := range o.orderedEvents() {
		if !ev.Pending() {
			continue
		}
		if f.Priority != "" && ev.Priority != f.Priority {
			continue
		}
		if f.EventType != "" && ev.EventType != f.EventType {
			continue
		}
		if f.CharacterID != "" && !containsFold(ev.TargetCharacters, f.CharacterID) {
			continue
		}
		if f.Urgency != "" && urgencyLabel(ev.Priority) != f.Urgency {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return priorityRank[out[i].Priority] < priorityRank[out[j].Priority]
	})
	return out
}

// ActiveConflicts returns unresolved conflicts matching f, most urgent first.
func (o *Orchestrator) ActiveConflicts(f ConflictFilter) []*Conflict {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*Conflict
	for _, c := range o.orderedConflicts() {
		if !c.Active() {
			continue
		}
		if f.ConflictType != "" && c.ConflictType != f.ConflictType {
			continue
		}
		if f.Urgency != "" && c.Urgency != f.Urgency {
			continue
		}
		if f.CharacterID != "" && !containsFold(c.InvolvedCharacters, f.CharacterID) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return urgencyRank[out[i].Urgency] < urgencyRank[out[j].Urgency]
	})
	return out
}

// EventHistory returns executed decisions, most recent first, capped at limit.
func (o *Orchestrator) EventHistory(limit int) []Decision {
	o.mu.Lock()
	defer o.mu.Unlock()

	if limit <= 0 || limit > len(o.history) {
		limit = len(o.history)
	}
	out := make([]Decision, 0, limit)
	for i := len(o.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, o.history[i])
	}
	return out
}

// #endregion
