package campaign

import "time"

// #region arc

// Arc summarizes one tracked character-development storyline.
type Arc struct {
	ArcID       string    `json:"arc_id" yaml:"arc_id"`
	CharacterID string    `json:"character_id" yaml:"character_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Status      string    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ArcType     string    `json:"arc_type" yaml:"arc_type"`
	Completion  float64   `json:"completion_percentage" yaml:"completion_percentage"` // 0..1
}

// Arc statuses understood by the orchestrator.
const (
	ArcActive    = "active"
	ArcCompleted = "completed"
	ArcPaused    = "paused"
)

// #endregion arc

// #region thread

// Thread summarizes one open plot line. Priority runs 1..10.
type Thread struct {
	ThreadID    string `json:"thread_id" yaml:"thread_id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
	Priority    int    `json:"priority" yaml:"priority"`
	ThreadType  string `json:"thread_type" yaml:"thread_type"`
}

// Thread statuses understood by the orchestrator.
const (
	ThreadActive   = "active"
	ThreadResolved = "resolved"
	ThreadDormant  = "dormant"
)

// #endregion thread

// #region memory

// Memory is a recalled campaign memory. Metadata carries emotional_context
// ([]string), emotional_intensity (float64) and free-form keys.
type Memory struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	Content   string         `json:"content" yaml:"content"`
	Type      string         `json:"memory_type,omitempty" yaml:"memory_type,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// #endregion memory

// #region world-event

// WorldEvent is something happening in the world independent of any arc.
// Urgency is one of "low", "medium", "high", "critical".
type WorldEvent struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Urgency     string `json:"urgency" yaml:"urgency"`
	Impact      string `json:"impact" yaml:"impact"`
}

// #endregion world-event

// #region state

// State is the read-only snapshot the orchestrator scores and scans.
// EmotionalContext values are additive and uncapped.
type State struct {
	CampaignID         string             `json:"campaign_id" yaml:"campaign_id"`
	ActiveArcs         []Arc              `json:"active_arcs" yaml:"active_arcs"`
	OpenThreads        []Thread           `json:"open_threads" yaml:"open_threads"`
	RecentMemories     []Memory           `json:"recent_memories" yaml:"recent_memories"`
	EmotionalContext   map[string]float64 `json:"emotional_context" yaml:"emotional_context"`
	CharacterLocations map[string]string  `json:"character_locations" yaml:"character_locations"`
	WorldEvents        []WorldEvent       `json:"world_events" yaml:"world_events"`
	SessionCount       int                `json:"session_count" yaml:"session_count"`
	CreatedAt          time.Time          `json:"created_at" yaml:"created_at"`
}

// #endregion state
