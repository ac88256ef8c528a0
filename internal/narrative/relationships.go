package narrative

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const relationshipSchema = `
CREATE TABLE IF NOT EXISTS relationships (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    campaign_id TEXT NOT NULL,
    from_id     TEXT NOT NULL,
    to_id       TEXT NOT NULL,
    score       REAL NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    UNIQUE(campaign_id, from_id, to_id)
);
CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships(campaign_id, from_id);
`

// #endregion schema

// #region types
// Relationship is one directed score between two characters, in [-1, 1].
type Relationship struct {
	FromID    string
	ToID      string
	Score     float64
	UpdatedAt time.Time
}

// RelationshipStore manages one campaign's rows of the relationships table.
type RelationshipStore struct {
	db         *sql.DB
	campaignID string
}

// #endregion types

// #region constructor
// NewRelationshipStore creates tables and returns a RelationshipStore.
func NewRelationshipStore(db *sql.DB, campaignID string) (*RelationshipStore, error) {
	if _, err := db.Exec(relationshipSchema); err != nil {
		return nil, fmt.Errorf("relationship schema: %w", err)
	}
	return &RelationshipStore{db: db, campaignID: campaignID}, nil
}

// #endregion constructor

// #region adjust
// AdjustRelationship moves the score from fromID to toID by delta, clamped to
// [-1, 1]. A missing relationship starts at 0.
func (r *RelationshipStore) AdjustRelationship(fromID, toID string, delta float64) error {
	now := nowString()
	_, err := r.db.Exec(
		`INSERT INTO relationships (campaign_id, from_id, to_id, score, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(campaign_id, from_id, to_id) DO UPDATE SET
		   score = MAX(-1.0, MIN(1.0, relationships.score + ?)),
		   updated_at = ?`,
		r.campaignID, fromID, toID, clamp(delta, -1, 1), now, now,
		delta, now,
	)
	if err != nil {
		return fmt.Errorf("adjust relationship %s->%s: %w", fromID, toID, err)
	}
	return nil
}

// #endregion adjust

// #region query
// Score returns the score from fromID to toID.
func (r *RelationshipStore) Score(fromID, toID string) (float64, error) {
	var score float64
	err := r.db.QueryRow(
		`SELECT score FROM relationships WHERE campaign_id = ? AND from_id = ? AND to_id = ?`,
		r.campaignID, fromID, toID,
	).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("relationship %s->%s: %w", fromID, toID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get relationship: %w", err)
	}
	return score, nil
}

// Relationships returns every relationship from fromID, strongest first.
func (r *RelationshipStore) Relationships(fromID string) ([]Relationship, error) {
	rows, err := r.db.Query(
		`SELECT from_id, to_id, score, updated_at FROM relationships
		 WHERE campaign_id = ? AND from_id = ? ORDER BY score DESC, to_id`, r.campaignID, fromID,
	)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		var rel Relationship
		var updatedAt string
		if err := rows.Scan(&rel.FromID, &rel.ToID, &rel.Score, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		rel.UpdatedAt = parseTime(updatedAt)
		out = append(out, rel)
	}
	return out, rows.Err()
}

// #endregion query
