package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func TestJSONLRepository_MissingFile(t *testing.T) {
	repo := NewJSONLRepository[record](filepath.Join(t.TempDir(), "none.jsonl"))
	recs, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty, got %v", recs)
	}
}

func TestJSONLRepository_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "recs.jsonl")
	repo := NewJSONLRepository[record](path)
	for i := 1; i <= 3; i++ {
		if err := repo.Append(record{ID: "r", Value: i}); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 || recs[2].Value != 3 {
		t.Errorf("got %v", recs)
	}
}

func TestJSONLRepository_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.jsonl")
	data := `{"id":"a","value":1}
not json at all

{"id":"b","value":2}
{"id":"c","value":
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	recs, err := NewJSONLRepository[record](path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].ID != "a" || recs[1].ID != "b" {
		t.Errorf("got %v", recs)
	}
}

func TestJSONLRepository_Rewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.jsonl")
	repo := NewJSONLRepository[record](path)
	repo.Append(record{ID: "a", Value: 1})
	repo.Append(record{ID: "b", Value: 2})

	if err := repo.Rewrite([]record{{ID: "z", Value: 9}}); err != nil {
		t.Fatal(err)
	}
	recs, _ := repo.Load()
	if len(recs) != 1 || recs[0].ID != "z" {
		t.Errorf("got %v", recs)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestOrchestrator_LastRecordWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	repo := NewJSONLRepository[*Event](path)
	repo.Append(&Event{EventID: "e1", Title: "old"})
	repo.Append(&Event{EventID: "e2", Title: "other"})
	repo.Append(&Event{EventID: "e1", Title: "new"})

	o := newTestOrchestrator(t, path)
	ev, ok := o.Event("e1")
	if !ok || ev.Title != "new" {
		t.Errorf("expected last record for e1, got %+v", ev)
	}
	if n := len(o.PendingEvents(EventFilter{})); n != 2 {
		t.Errorf("expected 2 distinct events, got %d", n)
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository[record]()
	repo.Append(record{ID: "a"})
	recs, _ := repo.Load()
	recs[0].ID = "mutated"
	again, _ := repo.Load()
	if again[0].ID != "a" {
		t.Error("Load should return a copy")
	}
}
