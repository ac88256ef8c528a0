package narrative

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

// #endregion imports

// #region schema
const threadSchema = `
CREATE TABLE IF NOT EXISTS plot_threads (
	thread_id   TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	priority    INTEGER NOT NULL DEFAULT 5,
	thread_type TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS thread_updates (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_id       TEXT NOT NULL,
	title           TEXT NOT NULL,
	description     TEXT,
	memory_ids      TEXT NOT NULL,
	status_change   TEXT,
	priority_change INTEGER,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (thread_id) REFERENCES plot_threads(thread_id)
);
CREATE INDEX IF NOT EXISTS idx_threads_campaign ON plot_threads(campaign_id, status);
`

const (
	minThreadPriority = 1
	maxThreadPriority = 10
)

// #endregion schema

// #region types

// ThreadUpdate is one recorded change to a plot thread.
type ThreadUpdate struct {
	ThreadID       string
	Title          string
	Description    string
	MemoryIDs      []string
	StatusChange   string
	PriorityChange *int
	CreatedAt      time.Time
}

// ThreadStore persists one campaign's plot threads and their updates.
type ThreadStore struct {
	db         *sql.DB
	campaignID string
}

// #endregion types

// #region constructor
// NewThreadStore creates the thread tables if needed and returns a store
// scoped to campaignID.
func NewThreadStore(db *sql.DB, campaignID string) (*ThreadStore, error) {
	if _, err := db.Exec(threadSchema); err != nil {
		return nil, fmt.Errorf("thread schema: %w", err)
	}
	return &ThreadStore{db: db, campaignID: campaignID}, nil
}

// #endregion constructor

// #region create
// CreateThread inserts a thread. A missing id or status is filled in and the
// priority is clamped to 1..10.
func (s *ThreadStore) CreateThread(th campaign.Thread) (campaign.Thread, error) {
	if th.ThreadID == "" {
		th.ThreadID = uuid.New().String()
	}
	if th.Status == "" {
		th.Status = campaign.ThreadActive
	}
	th.Priority = clampPriority(th.Priority)

	now := nowString()
	_, err := s.db.Exec(
		`INSERT INTO plot_threads (thread_id, campaign_id, title, description, status, priority, thread_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		th.ThreadID, s.campaignID, th.Title, th.Description, th.Status, th.Priority, th.ThreadType, now, now,
	)
	if err != nil {
		return campaign.Thread{}, fmt.Errorf("insert thread: %w", err)
	}
	return th, nil
}

// #endregion create

// #region query
// GetPlotThreads returns threads by descending priority. An empty status matches all.
func (s *ThreadStore) GetPlotThreads(status string) ([]campaign.Thread, error) {
	rows, err := s.db.Query(
		`SELECT thread_id, title, description, status, priority, thread_type
		 FROM plot_threads WHERE campaign_id = ? AND (? = '' OR status = ?)
		 ORDER BY priority DESC, created_at, rowid`,
		s.campaignID, status, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	threads := []campaign.Thread{}
	for rows.Next() {
		var th campaign.Thread
		if err := rows.Scan(&th.ThreadID, &th.Title, &th.Description, &th.Status, &th.Priority, &th.ThreadType); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, th)
	}
	return threads, rows.Err()
}

// Updates returns a thread's updates, oldest first.
func (s *ThreadStore) Updates(threadID string) ([]ThreadUpdate, error) {
	rows, err := s.db.Query(
		`SELECT thread_id, title, description, memory_ids, status_change, priority_change, created_at
		 FROM thread_updates WHERE thread_id = ? ORDER BY id`, threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list thread updates: %w", err)
	}
	defer rows.Close()

	var out []ThreadUpdate
	for rows.Next() {
		var u ThreadUpdate
		var desc, status sql.NullString
		var memIDs, createdAt string
		var prio sql.NullInt64
		if err := rows.Scan(&u.ThreadID, &u.Title, &desc, &memIDs, &status, &prio, &createdAt); err != nil {
			return nil, fmt.Errorf("scan thread update: %w", err)
		}
		u.Description = desc.String
		u.StatusChange = status.String
		u.MemoryIDs = decodeList(memIDs)
		if prio.Valid {
			p := int(prio.Int64)
			u.PriorityChange = &p
		}
		u.CreatedAt = parseTime(createdAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

// #endregion query

// #region update
// AddThreadUpdate records an update. A non-empty statusChange replaces the
// thread's status; a non-nil priorityChange replaces its priority.
func (s *ThreadStore) AddThreadUpdate(threadID, title, description string, memoryIDs []string, statusChange string, priorityChange *int) error {
	memJSON, err := encodeList(memoryIDs)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM plot_threads WHERE thread_id = ? AND campaign_id = ?`, threadID, s.campaignID).Scan(&exists); err != nil {
		return fmt.Errorf("check thread: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}

	var statusPtr, prioPtr any
	if statusChange != "" {
		statusPtr = statusChange
	}
	if priorityChange != nil {
		prioPtr = clampPriority(*priorityChange)
	}
	now := nowString()
	_, err = tx.Exec(
		`INSERT INTO thread_updates (thread_id, title, description, memory_ids, status_change, priority_change, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		threadID, title, description, memJSON, statusPtr, prioPtr, now,
	)
	if err != nil {
		return fmt.Errorf("insert thread update: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE plot_threads SET
		   status = COALESCE(?, status),
		   priority = COALESCE(?, priority),
		   updated_at = ?
		 WHERE thread_id = ?`,
		statusPtr, prioPtr, now, threadID,
	)
	if err != nil {
		return fmt.Errorf("update thread: %w", err)
	}
	return tx.Commit()
}

func clampPriority(p int) int {
	if p < minThreadPriority {
		return minThreadPriority
	}
	if p > maxThreadPriority {
		return maxThreadPriority
	}
	return p
}

// #endregion update
