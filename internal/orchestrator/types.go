package orchestrator

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion

// #region event-type

// EventType classifies a generated orchestration event.
type EventType string

const (
	EventQuestSuggestion         EventType = "quest_suggestion"
	EventEncounterTrigger        EventType = "encounter_trigger"
	EventCharacterDevelopment    EventType = "character_development"
	EventPlotDevelopment         EventType = "plot_development"
	EventWorldEvent              EventType = "world_event"
	EventEmotionalMoment         EventType = "emotional_moment"
	EventRelationshipDevelopment EventType = "relationship_development"
	EventMysteryRevelation       EventType = "mystery_revelation"
	EventConflictEmergence       EventType = "conflict_emergence"
)

// #endregion

// #region priority

// Priority ranks how pressing an event is.
type Priority string

const (
	PriorityCritical   Priority = "critical"
	PriorityHigh       Priority = "high"
	PriorityMedium     Priority = "medium"
	PriorityLow        Priority = "low"
	PriorityBackground Priority = "background"
)

// #endregion

// #region category

// Category is the kind of narrative pressure behind a priority candidate.
type Category string

const (
	CategoryArcCompletion    Category = "arc_completion"
	CategoryThreadResolution Category = "thread_resolution"
	CategoryEmotionalMoment  Category = "emotional_moment"
	CategoryQuestSuggestion  Category = "quest_suggestion"
	CategoryEncounterTrigger Category = "encounter_trigger"
)

// #endregion

// #region conflict-type

// ConflictType classifies a detected conflict.
type ConflictType string

const (
	ConflictInternal       ConflictType = "internal"
	ConflictInterpersonal  ConflictType = "interpersonal"
	ConflictExternalThreat ConflictType = "external_threat"
)

// Urgency ranks how pressing a conflict is.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// #endregion

// #region candidate

// SourceData is the campaign record a candidate was derived from.
// Only the fields relevant to the candidate's category are set.
type SourceData struct {
	ArcID       string
	ThreadID    string
	CharacterID string
	Title       string
	Description string
	Location    string
	Emotion     string
	Intensity   float64
	Completion  float64
	Priority    int
}

// Candidate is one scored narrative priority.
type Candidate struct {
	Category Category
	Level    Priority
	TargetID string
	Weight   float64
	Source   SourceData
}

// #endregion

// #region event

// SuggestedResponse is a structured option offered to the player for an event.
type SuggestedResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description"`
}

// Event is a generated suggestion surfaced to the game driver.
// It is pending until ExecutedAt is set.
type Event struct {
	EventID            string              `json:"event_id"`
	EventType          EventType           `json:"event_type"`
	Priority           Priority            `json:"priority"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	SuggestedActions   []string            `json:"suggested_actions"`
	EmotionalContext   []string            `json:"emotional_context"`
	RelatedArcs        []string            `json:"related_arcs"`
	RelatedThreads     []string            `json:"related_threads"`
	TargetCharacters   []string            `json:"target_characters"`
	LocationHint       string              `json:"location_hint,omitempty"`
	TimingHint         string              `json:"timing_hint,omitempty"`
	Prerequisites      []string            `json:"prerequisites"`
	Consequences       []string            `json:"consequences"`
	CreatedAt          time.Time           `json:"created_at"`
	ExecutedAt         *time.Time          `json:"executed_at,omitempty"`
	Metadata           map[string]any      `json:"metadata,omitempty"`
	UrgencyLevel       string              `json:"urgency_level,omitempty"`
	Icon               string              `json:"icon,omitempty"`
	MemoryTieIns       []string            `json:"memory_tie_ins,omitempty"`
	ArcImpacts         map[string]string   `json:"arc_impacts,omitempty"`
	ThreadImpacts      map[string]string   `json:"thread_impacts,omitempty"`
	SuggestedResponses []SuggestedResponse `json:"suggested_responses,omitempty"`
}

// Pending reports whether the event has not been executed yet.
func (e *Event) Pending() bool {
	return e.ExecutedAt == nil
}

// #endregion

// #region conflict

// Resolution is one structured choice attached to a conflict. Which impact
// label is set depends on the conflict type.
type Resolution struct {
	ID                 string  `json:"id"`
	Text               string  `json:"text"`
	Description        string  `json:"description"`
	EmotionalImpact    string  `json:"emotional_impact,omitempty"`
	ArcImpact          string  `json:"arc_impact,omitempty"`
	RelationshipImpact string  `json:"relationship_impact,omitempty"`
	RiskLevel          string  `json:"risk_level,omitempty"`
	RelationshipDelta  float64 `json:"relationship_delta,omitempty"`
}

// ImpactPreview predicts what resolving a conflict will change.
type ImpactPreview struct {
	EmotionalChanges    map[string]float64 `json:"emotional_changes,omitempty"`
	ArcProgress         float64            `json:"arc_progress,omitempty"`
	RelationshipChanges map[string]float64 `json:"relationship_changes,omitempty"`
	WorldImplications   []string           `json:"world_implications,omitempty"`
}

// Conflict is a detected narrative tension. It is active until ResolvedAt is set.
type Conflict struct {
	ConflictID           string         `json:"conflict_id"`
	ConflictType         ConflictType   `json:"conflict_type"`
	Urgency              Urgency        `json:"urgency"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	InvolvedCharacters   []string       `json:"involved_characters"`
	RelatedArcs          []string       `json:"related_arcs"`
	RelatedThreads       []string       `json:"related_threads"`
	SuggestedResolutions []Resolution   `json:"suggested_resolutions"`
	ImpactPreview        ImpactPreview  `json:"impact_preview"`
	EmotionalContext     []string       `json:"emotional_context"`
	ValueContradictions  []string       `json:"value_contradictions"`
	CreatedAt            time.Time      `json:"created_at"`
	ResolvedAt           *time.Time     `json:"resolved_at,omitempty"`
	ChosenResolution     string         `json:"chosen_resolution,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	Icon                 string         `json:"icon,omitempty"`
}

// Active reports whether the conflict has not been resolved yet.
func (c *Conflict) Active() bool {
	return c.ResolvedAt == nil
}

// Resolution returns the suggested resolution with the given id.
func (c *Conflict) Resolution(id string) (Resolution, bool) {
	for _, r := range c.SuggestedResolutions {
		if r.ID == id {
			return r, true
		}
	}
	return Resolution{}, false
}

// #endregion

// #region decision

// Decision records one executed event in the in-process history.
type Decision struct {
	EventID    string
	Title      string
	EventType  EventType
	Priority   Priority
	Notes      string
	MemoryID   string
	ExecutedAt time.Time
}

// #endregion

// #region filters

// EventFilter narrows pending-event retrieval. Zero fields match everything.
type EventFilter struct {
	Priority    Priority
	EventType   EventType
	CharacterID string
	Urgency     string
}

// ConflictFilter narrows active-conflict retrieval. Zero fields match everything.
type ConflictFilter struct {
	ConflictType ConflictType
	Urgency      Urgency
	CharacterID  string
}

// ActionContext describes something the player just did.
type ActionContext struct {
	Action      string
	CharacterID string
	Location    string
	Emotion     string
}

// #endregion

// #region summaries

// EventSummary counts events by state, priority and type.
type EventSummary struct {
	Total      int
	Pending    int
	Executed   int
	ByPriority map[Priority]int
	ByType     map[EventType]int
}

// ConflictSummary counts conflicts by state, type and urgency.
type ConflictSummary struct {
	Total     int
	Active    int
	Resolved  int
	ByType    map[ConflictType]int
	ByUrgency map[Urgency]int
}

// Insights is a derived overview of where the campaign stands.
type Insights struct {
	CampaignID       string
	DominantEmotions []string
	StalledArcs      []string
	NearlyDoneArcs   []string
	UrgentThreads    []string
	PendingEvents    int
	ActiveConflicts  int
	Recommendations  []string
}

// #endregion

// #region collaborators

// MemoryStore is the external memory collaborator.
type MemoryStore interface {
	StoreMemory(content, memoryType string, metadata map[string]any, tags []string, primaryEmotion string, intensity float64) (string, error)
	RecallRelatedMemories(query string, maxResults int) ([]campaign.Memory, error)
}

// ArcStore is the external character-arc collaborator.
type ArcStore interface {
	GetCharacterArcs(characterID, status string) ([]campaign.Arc, error)
	AddArcMilestone(arcID, title, description string, memoryIDs, emotionalContext []string, completion *float64) error
}

// ThreadStore is the external plot-thread collaborator.
type ThreadStore interface {
	GetPlotThreads(status string) ([]campaign.Thread, error)
	AddThreadUpdate(threadID, title, description string, memoryIDs []string, statusChange string, priorityChange *int) error
}

// RelationshipStore adjusts directed character relationship scores.
type RelationshipStore interface {
	AdjustRelationship(fromID, toID string, delta float64) error
}

// DecisionLog persists executed events and resolved conflicts.
type DecisionLog interface {
	Record(kind, subjectID, choice, notes string) error
}

// #endregion
