package narrative

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/keywords"
)

// #endregion imports

// #region schema
const memorySchema = `
CREATE TABLE IF NOT EXISTS memories (
	memory_id       TEXT PRIMARY KEY,
	campaign_id     TEXT NOT NULL,
	content         TEXT NOT NULL,
	memory_type     TEXT NOT NULL,
	metadata_json   TEXT NOT NULL,
	tags            TEXT NOT NULL,
	primary_emotion TEXT,
	intensity       REAL NOT NULL DEFAULT 0.5,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_campaign ON memories(campaign_id, created_at);
`

// searchWindow bounds how many recent memories a keyword recall scans.
const searchWindow = 500

// #endregion schema

// #region store

// MemoryStore persists one campaign's memories in SQLite.
type MemoryStore struct {
	db         *sql.DB
	campaignID string
}

// NewMemoryStore creates the memories table if needed and returns a store
// scoped to campaignID.
func NewMemoryStore(db *sql.DB, campaignID string) (*MemoryStore, error) {
	if _, err := db.Exec(memorySchema); err != nil {
		return nil, fmt.Errorf("memory schema: %w", err)
	}
	return &MemoryStore{db: db, campaignID: campaignID}, nil
}

// StoreMemory saves a memory and returns its id. The primary emotion and
// intensity are folded into metadata as emotional_context and
// emotional_intensity unless the caller already set them.
func (s *MemoryStore) StoreMemory(content, memoryType string, metadata map[string]any, tags []string, primaryEmotion string, intensity float64) (string, error) {
	meta := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta["emotional_context"]; !ok && primaryEmotion != "" {
		meta["emotional_context"] = []string{primaryEmotion}
	}
	if _, ok := meta["emotional_intensity"]; !ok {
		meta["emotional_intensity"] = intensity
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	tagJSON, err := encodeList(tags)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = s.db.Exec(
		`INSERT INTO memories (memory_id, campaign_id, content, memory_type, metadata_json, tags, primary_emotion, intensity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.campaignID, content, memoryType, string(metaJSON), tagJSON, primaryEmotion, intensity, nowString(),
	)
	if err != nil {
		return "", fmt.Errorf("insert memory: %w", err)
	}
	return id, nil
}

// Memory returns one memory by id.
func (s *MemoryStore) Memory(id string) (campaign.Memory, error) {
	row := s.db.QueryRow(
		`SELECT memory_id, content, memory_type, metadata_json, tags, created_at
		 FROM memories WHERE memory_id = ? AND campaign_id = ?`, id, s.campaignID,
	)
	m, _, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return campaign.Memory{}, fmt.Errorf("memory %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return campaign.Memory{}, fmt.Errorf("get memory %s: %w", id, err)
	}
	return m, nil
}

// RecallRelatedMemories returns up to maxResults memories. An empty query
// returns the most recent ones; otherwise memories are ranked by keywords
// shared between the query and their content and tags, newest first on ties.
func (s *MemoryStore) RecallRelatedMemories(query string, maxResults int) ([]campaign.Memory, error) {
	if maxResults <= 0 {
		return []campaign.Memory{}, nil
	}
	queryTokens := keywords.Tokenize(query)
	limit := maxResults
	if len(queryTokens) > 0 {
		limit = searchWindow
	}

	rows, err := s.db.Query(
		`SELECT memory_id, content, memory_type, metadata_json, tags, created_at
		 FROM memories WHERE campaign_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, s.campaignID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recall memories: %w", err)
	}
	defer rows.Close()

	type scored struct {
		mem   campaign.Memory
		score int
	}
	var hits []scored
	for rows.Next() {
		m, tags, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		if len(queryTokens) == 0 {
			hits = append(hits, scored{mem: m})
			continue
		}
		text := m.Content + " " + strings.Join(tags, " ")
		if n := keywords.Shared(queryTokens, keywords.Tokenize(text)); n > 0 {
			hits = append(hits, scored{mem: m, score: n})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	out := make([]campaign.Memory, 0, maxResults)
	for i := 0; i < len(hits) && i < maxResults; i++ {
		out = append(out, hits[i].mem)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(r rowScanner) (campaign.Memory, []string, error) {
	var m campaign.Memory
	var metaJSON, tagJSON, createdAt string
	if err := r.Scan(&m.ID, &m.Content, &m.Type, &metaJSON, &tagJSON, &createdAt); err != nil {
		return campaign.Memory{}, nil, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &m.Metadata); err != nil {
		return campaign.Memory{}, nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	m.CreatedAt = parseTime(createdAt)
	return m, decodeList(tagJSON), nil
}

// #endregion store
