package narrative

// #region imports
import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion imports

// #region schema
const arcSchema = `
CREATE TABLE IF NOT EXISTS character_arcs (
	arc_id       TEXT PRIMARY KEY,
	campaign_id  TEXT NOT NULL,
	character_id TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	arc_type     TEXT NOT NULL DEFAULT '',
	completion   REAL NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS arc_milestones (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	arc_id            TEXT NOT NULL,
	title             TEXT NOT NULL,
	description       TEXT,
	memory_ids        TEXT NOT NULL,
	emotional_context TEXT NOT NULL,
	completion        REAL,
	created_at        TEXT NOT NULL,
	FOREIGN KEY (arc_id) REFERENCES character_arcs(arc_id)
);
CREATE INDEX IF NOT EXISTS idx_arcs_campaign ON character_arcs(campaign_id, character_id, status);
`

// #endregion schema

// #region types

// Milestone is one recorded step along an arc.
type Milestone struct {
	ArcID            string
	Title            string
	Description      string
	MemoryIDs        []string
	EmotionalContext []string
	Completion       *float64
	CreatedAt        time.Time
}

// ArcStore persists one campaign's character arcs and their milestones.
type ArcStore struct {
	db         *sql.DB
	campaignID string
}

// #endregion types

// #region constructor
// NewArcStore creates the arc tables if needed and returns a store scoped to
// campaignID.
func NewArcStore(db *sql.DB, campaignID string) (*ArcStore, error) {
	if _, err := db.Exec(arcSchema); err != nil {
		return nil, fmt.Errorf("arc schema: %w", err)
	}
	return &ArcStore{db: db, campaignID: campaignID}, nil
}

// #endregion constructor

// #region create
// CreateArc inserts an arc. A missing id, status or creation time is filled in.
func (s *ArcStore) CreateArc(arc campaign.Arc) (campaign.Arc, error) {
	if arc.ArcID == "" {
		arc.ArcID = uuid.New().String()
	}
	if arc.Status == "" {
		arc.Status = campaign.ArcActive
	}
	if arc.CreatedAt.IsZero() {
		arc.CreatedAt = time.Now().UTC()
	}
	arc.Completion = clamp(arc.Completion, 0, 1)

	now := nowString()
	_, err := s.db.Exec(
		`INSERT INTO character_arcs (arc_id, campaign_id, character_id, title, description, status, arc_type, completion, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arc.ArcID, s.campaignID, arc.CharacterID, arc.Title, arc.Description, arc.Status, arc.ArcType,
		arc.Completion, arc.CreatedAt.UTC().Format(timeLayout), now,
	)
	if err != nil {
		return campaign.Arc{}, fmt.Errorf("insert arc: %w", err)
	}
	return arc, nil
}

// #endregion create

// #region query
// GetCharacterArcs returns arcs in creation order. Empty filters match all.
func (s *ArcStore) GetCharacterArcs(characterID, status string) ([]campaign.Arc, error) {
	rows, err := s.db.Query(
		`SELECT arc_id, character_id, title, description, status, arc_type, completion, created_at
		 FROM character_arcs
		 WHERE campaign_id = ? AND (? = '' OR character_id = ?) AND (? = '' OR status = ?)
		 ORDER BY created_at, rowid`,
		s.campaignID, characterID, characterID, status, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list arcs: %w", err)
	}
	defer rows.Close()

	arcs := []campaign.Arc{}
	for rows.Next() {
		var a campaign.Arc
		var createdAt string
		if err := rows.Scan(&a.ArcID, &a.CharacterID, &a.Title, &a.Description, &a.Status, &a.ArcType, &a.Completion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan arc: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		arcs = append(arcs, a)
	}
	return arcs, rows.Err()
}

// Milestones returns the milestones of an arc, oldest first.
func (s *ArcStore) Milestones(arcID string) ([]Milestone, error) {
	rows, err := s.db.Query(
		`SELECT arc_id, title, description, memory_ids, emotional_context, completion, created_at
		 FROM arc_milestones WHERE arc_id = ? ORDER BY id`, arcID,
	)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var out []Milestone
	for rows.Next() {
		var m Milestone
		var desc sql.NullString
		var memIDs, emotions, createdAt string
		var completion sql.NullFloat64
		if err := rows.Scan(&m.ArcID, &m.Title, &desc, &memIDs, &emotions, &completion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.Description = desc.String
		m.MemoryIDs = decodeList(memIDs)
		m.EmotionalContext = decodeList(emotions)
		if completion.Valid {
			c := completion.Float64
			m.Completion = &c
		}
		m.CreatedAt = parseTime(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// #endregion query

// #region milestone
// AddArcMilestone records a milestone. A non-nil completion also moves the
// arc's completion, and reaching 1.0 marks the arc completed.
func (s *ArcStore) AddArcMilestone(arcID, title, description string, memoryIDs, emotionalContext []string, completion *float64) error {
	memJSON, err := encodeList(memoryIDs)
	if err != nil {
		return err
	}
	emoJSON, err := encodeList(emotionalContext)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM character_arcs WHERE arc_id = ? AND campaign_id = ?`, arcID, s.campaignID).Scan(&exists); err != nil {
		return fmt.Errorf("check arc: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("arc %s: %w", arcID, ErrNotFound)
	}

	var completionPtr any
	if completion != nil {
		completionPtr = clamp(*completion, 0, 1)
	}
	now := nowString()
	_, err = tx.Exec(
		`INSERT INTO arc_milestones (arc_id, title, description, memory_ids, emotional_context, completion, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arcID, title, description, memJSON, emoJSON, completionPtr, now,
	)
	if err != nil {
		return fmt.Errorf("insert milestone: %w", err)
	}

	if completion != nil {
		c := clamp(*completion, 0, 1)
		status := campaign.ArcActive
		if c >= 1 {
			status = campaign.ArcCompleted
			log.Printf("[NARRATIVE] arc %s completed", arcID)
		}
		_, err = tx.Exec(
			`UPDATE character_arcs SET completion = ?, status = ?, updated_at = ? WHERE arc_id = ?`,
			c, status, now, arcID,
		)
		if err != nil {
			return fmt.Errorf("update arc: %w", err)
		}
	} else {
		if _, err := tx.Exec(`UPDATE character_arcs SET updated_at = ? WHERE arc_id = ?`, now, arcID); err != nil {
			return fmt.Errorf("touch arc: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion milestone
