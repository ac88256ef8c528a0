package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	campaign_id TEXT NOT NULL,
	kind        TEXT NOT NULL,
	subject_id  TEXT NOT NULL,
	choice      TEXT NOT NULL,
	notes       TEXT,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decision_log_campaign ON decision_log(campaign_id, id);
`

// #endregion schema

// #region log-decision
// LogDecision writes an entry to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (campaign_id, kind, subject_id, choice, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.CampaignID,
		entry.Kind,
		entry.SubjectID,
		entry.Choice,
		nullIfEmpty(entry.Notes),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region decision-log
// DecisionLog records one campaign's executions and resolutions.
type DecisionLog struct {
	db         *sql.DB
	campaignID string
}

// NewDecisionLog creates the decision_log table if needed.
func NewDecisionLog(db *sql.DB, campaignID string) (*DecisionLog, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("decision log schema: %w", err)
	}
	return &DecisionLog{db: db, campaignID: campaignID}, nil
}

// Record writes one decision for the log's campaign.
func (l *DecisionLog) Record(kind, subjectID, choice, notes string) error {
	return LogDecision(l.db, DecisionEntry{
		CampaignID: l.campaignID,
		Kind:       kind,
		SubjectID:  subjectID,
		Choice:     choice,
		Notes:      notes,
	})
}

// Recent returns up to limit entries for the log's campaign, newest first.
func (l *DecisionLog) Recent(limit int) ([]DecisionEntry, error) {
	rows, err := l.db.Query(
		`SELECT campaign_id, kind, subject_id, choice, notes, created_at
		 FROM decision_log WHERE campaign_id = ? ORDER BY id DESC LIMIT ?`,
		l.campaignID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var notes sql.NullString
		var createdAt string
		if err := rows.Scan(&e.CampaignID, &e.Kind, &e.SubjectID, &e.Choice, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.Notes = notes.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion decision-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
