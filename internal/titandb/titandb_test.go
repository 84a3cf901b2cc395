package titandb

import (
	"testing"

	"ideaforge/internal/core"
)

func TestLoadEmbeddedSeedData(t *testing.T) {
	titans, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(titans) == 0 {
		t.Fatal("Expected seed titans")
	}

	for _, titan := range titans {
		if titan.ID == "" || titan.Name == "" || titan.Methodology == "" {
			t.Errorf("Titan %q is missing required fields", titan.Name)
		}
		if titan.Source != core.TitanSourceSeedDB {
			t.Errorf("Titan %q: expected seed_db source, got %s", titan.Name, titan.Source)
		}
		if titan.ToolLevel != 1 && titan.ToolLevel != 2 {
			t.Errorf("Titan %q: tool level must be 1 or 2, got %d", titan.Name, titan.ToolLevel)
		}
		if len(titan.Categories) == 0 || len(titan.Keywords) == 0 {
			t.Errorf("Titan %q: expected categories and keywords", titan.Name)
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	titans, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	productivity := FilterByCategory(titans, "Productivity")
	if len(productivity) == 0 {
		t.Fatal("Expected productivity titans in the seed data")
	}
	for _, titan := range productivity {
		found := false
		for _, c := range titan.Categories {
			if c == "Productivity" {
				found = true
			}
		}
		if !found {
			t.Errorf("Titan %q lacks the filtered category", titan.Name)
		}
	}

	if got := FilterByCategory(titans, "No Such Category"); len(got) != 0 {
		t.Errorf("Expected no titans for an unknown category, got %d", len(got))
	}
}

func TestSearchMatchesKeywordsAndMethodology(t *testing.T) {
	titans, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	byKeyword := Search(titans, "habit")
	if len(byKeyword) == 0 {
		t.Error("Expected a hit on the 'habit' keyword")
	}

	byMethodology := Search(titans, "deep work")
	if len(byMethodology) != 1 || byMethodology[0].Name != "Cal Newport" {
		t.Errorf("Expected exactly Cal Newport for 'deep work', got %v", byMethodology)
	}

	if got := Search(titans, "zzzz-nothing"); len(got) != 0 {
		t.Errorf("Expected no hits, got %d", len(got))
	}
}
