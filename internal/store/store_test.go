package store

import (
	"testing"
	"time"

	"ideaforge/internal/core"
)

func testIdea(id string, generatedAt time.Time) core.VideoIdea {
	return core.VideoIdea{
		ID:            id,
		Trend:         "habit building",
		TitanName:     "James Clear",
		Methodology:   "Atomic Habit Stacking",
		Titles:        []string{"One title"},
		ThumbnailText: "1% better",
		HookingPhrase: "What if one minute was enough?",
		ToolConcept:   core.ToolConcept{Name: "Stacker", Level: 2},
		GeneratedAt:   generatedAt,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListIdeas(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	if err := s.SaveIdea(testIdea("id-1", base)); err != nil {
		t.Fatalf("SaveIdea failed: %v", err)
	}
	if err := s.SaveIdea(testIdea("id-2", base.Add(time.Minute))); err != nil {
		t.Fatalf("SaveIdea failed: %v", err)
	}

	ideas, err := s.ListIdeas()
	if err != nil {
		t.Fatalf("ListIdeas failed: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("Expected 2 ideas, got %d", len(ideas))
	}
	if ideas[0].ID != "id-2" {
		t.Errorf("Expected newest idea first, got %s", ideas[0].ID)
	}
	if ideas[0].TitanName != "James Clear" {
		t.Errorf("Expected payload round-trip, got titan '%s'", ideas[0].TitanName)
	}
}

func TestDeleteAndRestoreIdea(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveIdea(testIdea("id-1", time.Now().UTC())); err != nil {
		t.Fatalf("SaveIdea failed: %v", err)
	}

	if err := s.DeleteIdea("id-1"); err != nil {
		t.Fatalf("DeleteIdea failed: %v", err)
	}
	ideas, _ := s.ListIdeas()
	if len(ideas) != 0 {
		t.Errorf("Expected soft-deleted idea to be hidden, got %d ideas", len(ideas))
	}

	if err := s.RestoreIdea("id-1"); err != nil {
		t.Fatalf("RestoreIdea failed: %v", err)
	}
	ideas, _ = s.ListIdeas()
	if len(ideas) != 1 {
		t.Errorf("Expected restored idea to reappear, got %d ideas", len(ideas))
	}

	if err := s.DeleteIdea("missing"); err == nil {
		t.Error("Expected an error deleting an unknown idea")
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		idea := testIdea("id-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveIdea(idea); err != nil {
			t.Fatalf("SaveIdea failed: %v", err)
		}
	}

	if err := s.Prune(2); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	ideas, err := s.ListIdeas()
	if err != nil {
		t.Fatalf("ListIdeas failed: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("Expected 2 ideas after prune, got %d", len(ideas))
	}
	if ideas[0].ID != "id-e" || ideas[1].ID != "id-d" {
		t.Errorf("Expected the two newest ideas, got %s, %s", ideas[0].ID, ideas[1].ID)
	}
}

func TestConsumedKeysRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkConsumed("A|M1"); err != nil {
		t.Fatalf("MarkConsumed failed: %v", err)
	}
	if err := s.MarkConsumed("B|M2"); err != nil {
		t.Fatalf("MarkConsumed failed: %v", err)
	}

	keys, err := s.ConsumedKeys()
	if err != nil {
		t.Fatalf("ConsumedKeys failed: %v", err)
	}
	if !keys["A|M1"] || !keys["B|M2"] {
		t.Errorf("Expected both keys consumed, got %v", keys)
	}

	if err := s.UnmarkConsumed("A|M1"); err != nil {
		t.Fatalf("UnmarkConsumed failed: %v", err)
	}
	keys, _ = s.ConsumedKeys()
	if keys["A|M1"] {
		t.Error("Expected A|M1 to be released")
	}
	if !keys["B|M2"] {
		t.Error("Expected B|M2 to remain consumed")
	}
}

func TestMemoryStoreMatchesSQLiteBehavior(t *testing.T) {
	m := NewMemoryStore()

	base := time.Now().UTC()
	if err := m.SaveIdea(testIdea("id-1", base)); err != nil {
		t.Fatalf("SaveIdea failed: %v", err)
	}
	if err := m.DeleteIdea("id-1"); err != nil {
		t.Fatalf("DeleteIdea failed: %v", err)
	}
	ideas, _ := m.ListIdeas()
	if len(ideas) != 0 {
		t.Errorf("Expected deleted idea hidden, got %d", len(ideas))
	}
	if err := m.RestoreIdea("id-1"); err != nil {
		t.Fatalf("RestoreIdea failed: %v", err)
	}
	ideas, _ = m.ListIdeas()
	if len(ideas) != 1 {
		t.Errorf("Expected restored idea back, got %d", len(ideas))
	}

	if err := m.MarkConsumed("k"); err != nil {
		t.Fatalf("MarkConsumed failed: %v", err)
	}
	keys, _ := m.ConsumedKeys()
	if !keys["k"] {
		t.Error("Expected key consumed")
	}
	if err := m.UnmarkConsumed("k"); err != nil {
		t.Fatalf("UnmarkConsumed failed: %v", err)
	}
	keys, _ = m.ConsumedKeys()
	if keys["k"] {
		t.Error("Expected key released")
	}
}
