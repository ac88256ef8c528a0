package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// #endregion helpers

func TestLogDecision_Success(t *testing.T) {
	db := setupDB(t)
	if _, err := NewDecisionLog(db, "c1"); err != nil {
		t.Fatal(err)
	}

	entry := DecisionEntry{
		CampaignID: "c1",
		Kind:       KindConflict,
		SubjectID:  "external_t1_1",
		Choice:     "confront",
		Notes:      "charged the gate",
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogDecision(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM decision_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var createdAt string
	db.QueryRow("SELECT created_at FROM decision_log").Scan(&createdAt)
	if createdAt != "2026-01-01T00:00:00Z" {
		t.Errorf("created_at: got %q", createdAt)
	}
}

func TestLogDecision_NullNotes(t *testing.T) {
	db := setupDB(t)
	NewDecisionLog(db, "c1")

	if err := LogDecision(db, DecisionEntry{CampaignID: "c1", Kind: KindEvent, SubjectID: "e1", Choice: "quest_suggestion"}); err != nil {
		t.Fatal(err)
	}
	var notes sql.NullString
	db.QueryRow("SELECT notes FROM decision_log").Scan(&notes)
	if notes.Valid {
		t.Errorf("expected NULL notes, got %q", notes.String)
	}
}

func TestLogDecision_MissingTable(t *testing.T) {
	db := setupDB(t)
	if err := LogDecision(db, DecisionEntry{Kind: KindEvent}); err == nil {
		t.Error("expected error without table")
	}
}

func TestDecisionLog_RecordAndRecent(t *testing.T) {
	db := setupDB(t)
	a, err := NewDecisionLog(db, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewDecisionLog(db, "beta")

	a.Record(KindEvent, "e1", "quest_suggestion", "")
	a.Record(KindConflict, "c1", "mediate", "talked it out")
	b.Record(KindEvent, "e9", "world_event", "")

	got, err := a.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].SubjectID != "c1" || got[0].Notes != "talked it out" || got[1].Notes != "" {
		t.Errorf("entries: %+v", got)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}

	one, _ := a.Recent(1)
	if len(one) != 1 {
		t.Errorf("limit: got %d", len(one))
	}
}
