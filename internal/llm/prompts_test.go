package llm

import (
	"strings"
	"testing"

	"ideaforge/internal/core"
)

func promptMatch() core.MatchResult {
	return core.MatchResult{
		Trend: core.TrendItem{Keyword: "miracle morning", Category: "Mental/Self-care", Score: 92},
		Titan: core.Titan{
			Name:          "Andrew Huberman",
			NameEn:        "Andrew Huberman",
			Methodology:   "Morning Light Protocol",
			MethodologyEn: "Morning Light Protocol",
			ToolLevel:     2,
		},
		RelevanceScore: 88,
		Reasoning:      "Morning routines map directly to light exposure research.",
	}
}

func TestBuildIdeaPromptUsesDefaultInstruction(t *testing.T) {
	prompt := buildIdeaPrompt(promptMatch(), "")

	if !strings.Contains(prompt, "YouTube content planner") {
		t.Error("Expected the default instruction template")
	}
	if !strings.Contains(prompt, "toolLevel 2") {
		t.Error("Expected the match's tool level in the instruction")
	}
	if !strings.Contains(prompt, `"miracle morning"`) {
		t.Error("Expected the trend keyword in the prompt body")
	}
}

func TestBuildIdeaPromptCustomInstructionReplacesDefault(t *testing.T) {
	custom := "Write everything as haiku. Ignore view-count optimization."
	prompt := buildIdeaPrompt(promptMatch(), custom)

	if !strings.Contains(prompt, custom) {
		t.Error("Expected the custom instructions verbatim")
	}
	if !strings.Contains(prompt, "TOP-PRIORITY INSTRUCTIONS FROM THE USER") {
		t.Error("Expected the custom instructions to be marked top priority")
	}
	if strings.Contains(prompt, "YouTube content planner") {
		t.Error("Expected the default instruction to be omitted entirely")
	}
	// The match context and response contract stay regardless of instruction.
	if !strings.Contains(prompt, "Andrew Huberman") || !strings.Contains(prompt, "RESPONSE FORMAT") {
		t.Error("Expected the match context and response contract to remain")
	}
}

func TestBuildIdeaPromptListsEvidence(t *testing.T) {
	match := promptMatch()
	match.Papers = []core.AcademicPaper{{Title: "Light and circadian health", Year: 2019, CitationCount: 812, Venue: "Sleep"}}

	prompt := buildIdeaPrompt(match, "")
	if !strings.Contains(prompt, "Light and circadian health") {
		t.Error("Expected the paper title in the evidence section")
	}
	if strings.Contains(prompt, "none collected") {
		t.Error("Expected the empty-evidence marker to be absent")
	}

	bare := buildIdeaPrompt(promptMatch(), "")
	if !strings.Contains(bare, "none collected") {
		t.Error("Expected the empty-evidence marker without papers or news")
	}
}

func TestBuildAnalyzePromptCapsDescription(t *testing.T) {
	video := core.Video{
		Title:        "Ohtani's mandala chart",
		ChannelTitle: "Sports Docs",
		ViewCount:    1_000_000,
		Description:  strings.Repeat("x", 2000),
	}

	prompt := buildAnalyzePrompt(video)
	if strings.Contains(prompt, strings.Repeat("x", 501)) {
		t.Error("Expected the description capped at 500 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 500)) {
		t.Error("Expected the first 500 characters to remain")
	}
}

func TestFallbackHabitsShapesOutput(t *testing.T) {
	habits := FallbackHabits()
	if len(habits) != 10 {
		t.Fatalf("Expected 10 suggestions, got %d", len(habits))
	}

	seen := make(map[string]bool)
	for _, h := range habits {
		if h.ID == "" {
			t.Error("Expected every suggestion to carry a fresh id")
		}
		if seen[h.ID] {
			t.Errorf("Duplicate id %s", h.ID)
		}
		seen[h.ID] = true

		switch h.Difficulty {
		case "Easy", "Medium", "Hard":
		default:
			t.Errorf("Unexpected difficulty %q", h.Difficulty)
		}
	}
}
