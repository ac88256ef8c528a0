package narrative

import (
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_File(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "narrative.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := NewMemoryStore(db, "c1"); err != nil {
		t.Fatal(err)
	}
}

// #region memories

func TestMemoryStore_StoreAndGet(t *testing.T) {
	s, err := NewMemoryStore(newTestDB(t), "c1")
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.StoreMemory("Mira found the crown", "discovery",
		map[string]any{"location": "the ruins"}, []string{"crown"}, "joy", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected an id")
	}

	m, err := s.Memory(id)
	if err != nil {
		t.Fatal(err)
	}
	if m.Content != "Mira found the crown" || m.Type != "discovery" {
		t.Errorf("got %+v", m)
	}
	if m.Metadata["location"] != "the ruins" {
		t.Errorf("metadata: %v", m.Metadata)
	}
	if ctx, _ := m.Metadata["emotional_context"].([]any); len(ctx) != 1 || ctx[0] != "joy" {
		t.Errorf("emotional_context: %v", m.Metadata["emotional_context"])
	}
	if v, _ := m.Metadata["emotional_intensity"].(float64); v != 0.9 {
		t.Errorf("emotional_intensity: %v", m.Metadata["emotional_intensity"])
	}
	if m.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	if _, err := s.Memory("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_RecallRecent(t *testing.T) {
	s, _ := NewMemoryStore(newTestDB(t), "c1")
	for _, c := range []string{"first", "second", "third"} {
		if _, err := s.StoreMemory(c, "note", nil, nil, "", 0.5); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.RecallRelatedMemories("", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Content != "third" || got[1].Content != "second" {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStore_RecallByKeyword(t *testing.T) {
	s, _ := NewMemoryStore(newTestDB(t), "c1")
	s.StoreMemory("The smugglers moved crates at the docks", "note", nil, nil, "", 0.5)
	s.StoreMemory("A quiet dinner with Tobin", "note", nil, []string{"docks"}, "", 0.5)
	s.StoreMemory("Nothing relevant here", "note", nil, nil, "", 0.5)

	got, err := s.RecallRelatedMemories("smugglers at the docks", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Content != "The smugglers moved crates at the docks" {
		t.Errorf("best match: got %q", got[0].Content)
	}

	none, _ := s.RecallRelatedMemories("dragons", 10)
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
	zero, _ := s.RecallRelatedMemories("", 0)
	if zero == nil || len(zero) != 0 {
		t.Errorf("expected empty slice, got %v", zero)
	}
}

// #endregion memories

// #region arcs

func TestArcStore_CreateAndQuery(t *testing.T) {
	s, err := NewArcStore(newTestDB(t), "c1")
	if err != nil {
		t.Fatal(err)
	}
	a1, err := s.CreateArc(campaign.Arc{CharacterID: "mira", Title: "The Lost Crown", Completion: 1.4})
	if err != nil {
		t.Fatal(err)
	}
	if a1.ArcID == "" || a1.Status != campaign.ArcActive || a1.Completion != 1 {
		t.Errorf("defaults not applied: %+v", a1)
	}
	s.CreateArc(campaign.Arc{CharacterID: "tobin", Title: "Oath", CreatedAt: time.Now().Add(time.Second)})
	s.CreateArc(campaign.Arc{CharacterID: "mira", Title: "Old Wound", Status: campaign.ArcPaused})

	all, _ := s.GetCharacterArcs("", "")
	if len(all) != 3 {
		t.Errorf("all: got %d", len(all))
	}
	mira, _ := s.GetCharacterArcs("mira", "")
	if len(mira) != 2 {
		t.Errorf("mira: got %d", len(mira))
	}
	active, _ := s.GetCharacterArcs("", campaign.ArcActive)
	if len(active) != 2 {
		t.Errorf("active: got %d", len(active))
	}
	if active[0].ArcID != a1.ArcID {
		t.Errorf("expected creation order, got %q first", active[0].Title)
	}
}

func TestArcStore_Milestones(t *testing.T) {
	s, _ := NewArcStore(newTestDB(t), "c1")
	arc, _ := s.CreateArc(campaign.Arc{CharacterID: "mira", Title: "The Lost Crown", Completion: 0.4})

	if err := s.AddArcMilestone(arc.ArcID, "Found a map", "", []string{"m1"}, []string{"hope"}, nil); err != nil {
		t.Fatal(err)
	}
	done := 1.0
	if err := s.AddArcMilestone(arc.ArcID, "Crowned", "the end", nil, nil, &done); err != nil {
		t.Fatal(err)
	}

	ms, err := s.Milestones(arc.ArcID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 2 || ms[0].MemoryIDs[0] != "m1" || ms[0].Completion != nil || *ms[1].Completion != 1 {
		t.Errorf("milestones: %+v", ms)
	}

	arcs, _ := s.GetCharacterArcs("mira", "")
	if arcs[0].Status != campaign.ArcCompleted || arcs[0].Completion != 1 {
		t.Errorf("arc not completed: %+v", arcs[0])
	}

	if err := s.AddArcMilestone("missing", "x", "", nil, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// #endregion arcs

// #region threads

func TestThreadStore(t *testing.T) {
	s, err := NewThreadStore(newTestDB(t), "c1")
	if err != nil {
		t.Fatal(err)
	}
	low, _ := s.CreateThread(campaign.Thread{Title: "Harvest", Priority: 0})
	high, _ := s.CreateThread(campaign.Thread{Title: "Dragon", Priority: 15})
	if low.Priority != 1 || high.Priority != 10 {
		t.Errorf("priorities not clamped: %d, %d", low.Priority, high.Priority)
	}

	threads, _ := s.GetPlotThreads(campaign.ThreadActive)
	if len(threads) != 2 || threads[0].Title != "Dragon" {
		t.Errorf("expected Dragon first, got %+v", threads)
	}

	p := 3
	if err := s.AddThreadUpdate(high.ThreadID, "Slain", "", []string{"m1"}, campaign.ThreadResolved, &p); err != nil {
		t.Fatal(err)
	}
	if err := s.AddThreadUpdate(low.ThreadID, "Rain", "more rain", nil, "", nil); err != nil {
		t.Fatal(err)
	}

	active, _ := s.GetPlotThreads(campaign.ThreadActive)
	if len(active) != 1 || active[0].ThreadID != low.ThreadID {
		t.Errorf("active: %+v", active)
	}
	resolved, _ := s.GetPlotThreads(campaign.ThreadResolved)
	if len(resolved) != 1 || resolved[0].Priority != 3 {
		t.Errorf("resolved: %+v", resolved)
	}

	ups, _ := s.Updates(high.ThreadID)
	if len(ups) != 1 || ups[0].StatusChange != campaign.ThreadResolved || *ups[0].PriorityChange != 3 {
		t.Errorf("updates: %+v", ups)
	}
	ups, _ = s.Updates(low.ThreadID)
	if len(ups) != 1 || ups[0].StatusChange != "" || ups[0].PriorityChange != nil {
		t.Errorf("updates: %+v", ups)
	}

	if err := s.AddThreadUpdate("missing", "x", "", nil, "", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// #endregion threads

// #region campaigns

func TestStores_ScopedByCampaign(t *testing.T) {
	db := newTestDB(t)
	memA, _ := NewMemoryStore(db, "north")
	memB, _ := NewMemoryStore(db, "south")
	arcA, _ := NewArcStore(db, "north")
	arcB, _ := NewArcStore(db, "south")
	thA, _ := NewThreadStore(db, "north")
	thB, _ := NewThreadStore(db, "south")

	idA, err := memA.StoreMemory("Snow on the pass", "note", nil, []string{"snow"}, "", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	memB.StoreMemory("Sun over the dunes", "note", nil, nil, "", 0.5)
	arc, _ := arcA.CreateArc(campaign.Arc{CharacterID: "mira", Title: "The Lost Crown"})
	arcB.CreateArc(campaign.Arc{CharacterID: "tobin", Title: "Oath"})
	th, _ := thA.CreateThread(campaign.Thread{Title: "Dragon", Priority: 9})
	relA, _ := NewRelationshipStore(db, "north")
	relB, _ := NewRelationshipStore(db, "south")
	relA.AdjustRelationship("mira", "tobin", 0.4)

	recent, _ := memB.RecallRelatedMemories("", 10)
	if len(recent) != 1 || recent[0].Content != "Sun over the dunes" {
		t.Errorf("south recall: %+v", recent)
	}
	if hits, _ := memB.RecallRelatedMemories("snow pass", 10); len(hits) != 0 {
		t.Errorf("south sees north memories: %+v", hits)
	}
	if _, err := memB.Memory(idA); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across campaigns, got %v", err)
	}

	if arcs, _ := arcA.GetCharacterArcs("", ""); len(arcs) != 1 || arcs[0].Title != "The Lost Crown" {
		t.Errorf("north arcs: %+v", arcs)
	}
	if err := arcB.AddArcMilestone(arc.ArcID, "x", "", nil, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("milestone across campaigns: %v", err)
	}

	if threads, _ := thB.GetPlotThreads(""); len(threads) != 0 {
		t.Errorf("south threads: %+v", threads)
	}
	if err := thB.AddThreadUpdate(th.ThreadID, "x", "", nil, "", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("thread update across campaigns: %v", err)
	}

	if _, err := relB.Score("mira", "tobin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("relationship across campaigns: %v", err)
	}
}

// #endregion campaigns

// #region relationships

func TestRelationshipStore(t *testing.T) {
	s, err := NewRelationshipStore(newTestDB(t), "c1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Score("a", "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	steps := []struct {
		delta float64
		want  float64
	}{
		{0.3, 0.3},
		{0.5, 0.8},
		{0.5, 1.0},
		{-2.5, -1.0},
		{0.25, -0.75},
	}
	for i, st := range steps {
		if err := s.AdjustRelationship("a", "b", st.delta); err != nil {
			t.Fatal(err)
		}
		got, err := s.Score("a", "b")
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-st.want) > 1e-9 {
			t.Errorf("step %d: got %v, want %v", i, got, st.want)
		}
	}

	s.AdjustRelationship("a", "c", 0.9)
	rels, _ := s.Relationships("a")
	if len(rels) != 2 || rels[0].ToID != "c" {
		t.Errorf("relationships: %+v", rels)
	}
	if rev, _ := s.Relationships("b"); len(rev) != 0 {
		t.Error("relationships are directed")
	}
}

// #endregion relationships
