package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the decision_log table.
type DecisionEntry struct {
	CampaignID string
	Kind       string // "event" | "conflict"
	SubjectID  string // event or conflict id
	Choice     string // event type for executions, resolution id for conflicts
	Notes      string
	CreatedAt  time.Time
}

// #endregion decision-entry

// Entry kinds written by the orchestrator.
const (
	KindEvent    = "event"
	KindConflict = "conflict"
)
