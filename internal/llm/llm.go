package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for matching and generation.
	DefaultModel = "gemini-2.0-flash"
)

// ErrNotConfigured is returned when no Gemini API key is available. Read-only
// surfaces degrade to static data on this error; matching and generation
// surface it to the route boundary.
var ErrNotConfigured = errors.New("gemini API key is not configured")

// Client represents a client for interacting with the Gemini LLM.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// NewClient creates a new LLM client.
// It supports multiple ways to get the API key (in order of preference):
// 1. Environment variable: GEMINI_API_KEY (or alternatives)
// 2. Viper configuration: ai.gemini.api_key
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// generateContent is a helper that wraps the SDK's GenerateContent call
func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// rawMatch is the shape the matching prompt instructs the model to emit.
type rawMatch struct {
	TrendKeyword   string     `json:"trendKeyword"`
	Titan          core.Titan `json:"titan"`
	RelevanceScore int        `json:"relevanceScore"`
	Reasoning      string     `json:"reasoning"`
}

// MatchTrends sends a batch of trends plus the seed knowledge base to the
// model and returns resolved MatchResults. Rows whose trendKeyword does not
// resolve to an input trend are dropped with a warning rather than being
// attributed to the wrong trend.
func (c *Client) MatchTrends(ctx context.Context, trends []core.TrendItem, titans []core.Titan) ([]core.MatchResult, error) {
	if len(trends) == 0 {
		return nil, fmt.Errorf("no trends provided")
	}

	prompt := buildMatchPrompt(trends, titans)

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("matching call failed: %w", err)
	}

	raw, err := ParseJSON[[]rawMatch](text)
	if err != nil {
		return nil, err
	}

	byKeyword := make(map[string]core.TrendItem, len(trends))
	for _, t := range trends {
		byKeyword[t.Keyword] = t
	}

	matches := make([]core.MatchResult, 0, len(raw))
	for _, r := range raw {
		trend, ok := byKeyword[r.TrendKeyword]
		if !ok {
			logger.Warn("dropping match with unresolvable trend keyword",
				"trendKeyword", r.TrendKeyword, "titan", r.Titan.Name)
			continue
		}

		titan := r.Titan
		if titan.Source != core.TitanSourceSeedDB && titan.Source != core.TitanSourceAIDiscovered {
			titan.Source = core.TitanSourceAIDiscovered
		}
		if titan.ToolLevel != 1 && titan.ToolLevel != 2 {
			titan.ToolLevel = 1
		}
		if titan.ID == "" {
			titan.ID = uuid.NewString()
		}

		matches = append(matches, core.MatchResult{
			Trend:          trend,
			Titan:          titan,
			RelevanceScore: clamp(r.RelevanceScore, 0, 100),
			Reasoning:      r.Reasoning,
		})
	}

	return matches, nil
}

// rawIdea mirrors the generation prompt's response schema before validation.
type rawIdea struct {
	Titles         []string         `json:"titles"`
	ThumbnailText  string           `json:"thumbnailText"`
	HookingPhrase  string           `json:"hookingPhrase"`
	PaperCitation  string           `json:"paperCitation"`
	RelatedYouTube *core.MediaRef   `json:"relatedYoutube"`
	RelatedBook    *core.BookRef    `json:"relatedBook"`
	ToolConcept    core.ToolConcept `json:"toolConcept"`
}

// GenerateIdea produces a video-idea artifact for one confirmed match. When
// customPrompt is non-empty it replaces the default instruction template
// verbatim and with highest priority. An unparseable model response is a hard
// failure; there is no partial-idea fallback.
func (c *Client) GenerateIdea(ctx context.Context, match core.MatchResult, customPrompt string) (core.VideoIdea, error) {
	prompt := buildIdeaPrompt(match, customPrompt)

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		return core.VideoIdea{}, fmt.Errorf("idea generation failed for %s: %w", match.Key(), err)
	}

	raw, err := ParseJSON[rawIdea](text)
	if err != nil {
		return core.VideoIdea{}, err
	}
	if len(raw.Titles) == 0 || raw.HookingPhrase == "" {
		return core.VideoIdea{}, &ParseFailure{Raw: text, Err: fmt.Errorf("idea response missing titles or hooking phrase")}
	}

	idea := core.VideoIdea{
		ID:             uuid.NewString(),
		Trend:          match.Trend.Keyword,
		TitanName:      match.Titan.Name,
		Methodology:    match.Titan.Methodology,
		Titles:         raw.Titles,
		ThumbnailText:  raw.ThumbnailText,
		HookingPhrase:  raw.HookingPhrase,
		PaperCitation:  raw.PaperCitation,
		RelatedYouTube: raw.RelatedYouTube,
		RelatedBook:    raw.RelatedBook,
		ToolConcept:    raw.ToolConcept,
		GeneratedAt:    time.Now().UTC(),
	}
	if idea.ToolConcept.Level != 1 && idea.ToolConcept.Level != 2 {
		idea.ToolConcept.Level = match.Titan.ToolLevel
	}

	return idea, nil
}

// rawHabitAnalysis mirrors the analyze prompt's response schema.
type rawHabitAnalysis struct {
	Analysis   core.HabitAnalysis  `json:"analysis"`
	VibeCoding core.VibeCodingIdea `json:"vibeCoding"`
}

// AnalyzeHabit breaks down the habit covered by a video into a structured
// analysis plus a companion app concept.
func (c *Client) AnalyzeHabit(ctx context.Context, video core.Video) (core.HabitAnalysis, core.VibeCodingIdea, error) {
	prompt := buildAnalyzePrompt(video)

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		return core.HabitAnalysis{}, core.VibeCodingIdea{}, fmt.Errorf("habit analysis failed for %s: %w", video.VideoID, err)
	}

	raw, err := ParseJSON[rawHabitAnalysis](text)
	if err != nil {
		return core.HabitAnalysis{}, core.VibeCodingIdea{}, err
	}
	if raw.Analysis.PersonName == "" {
		return core.HabitAnalysis{}, core.VibeCodingIdea{}, &ParseFailure{Raw: text, Err: fmt.Errorf("analysis response missing person name")}
	}

	vibe := raw.VibeCoding
	vibe.DifficultyLevel = clamp(vibe.DifficultyLevel, 1, 5)

	return raw.Analysis, vibe, nil
}

// FilterFamous keeps only videos featuring world-famous people, judged by the
// model. Best effort: on any failure the first five input videos are returned
// unfiltered, matching the provider's behavior.
func (c *Client) FilterFamous(ctx context.Context, videos []core.Video) []core.Video {
	if len(videos) == 0 {
		return nil
	}

	prompt := buildFamousFilterPrompt(videos)

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		logger.Warn("famous-person filter call failed, returning unfiltered head", "error", err.Error())
		return head(videos, 5)
	}

	indices, err := ParseJSON[[]int](text)
	if err != nil {
		logger.Warn("famous-person filter response unparseable, returning unfiltered head")
		return head(videos, 5)
	}

	filtered := make([]core.Video, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(videos) {
			filtered = append(filtered, videos[i])
		}
	}
	if len(filtered) == 0 {
		return head(videos, 5)
	}
	return filtered
}

func head(videos []core.Video, n int) []core.Video {
	if len(videos) <= n {
		return videos
	}
	return videos[:n]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// summarizeTitans renders the seed knowledge base for the matching prompt.
func summarizeTitans(titans []core.Titan) string {
	var b strings.Builder
	for _, t := range titans {
		fmt.Fprintf(&b, "- id=%s | %s (%s) | methodology: %s (%s) | toolLevel: %d | categories: %s | keywords: %s\n",
			t.ID, t.Name, t.NameEn, t.Methodology, t.MethodologyEn, t.ToolLevel,
			strings.Join(t.Categories, ", "), strings.Join(t.Keywords, ", "))
	}
	return b.String()
}

// summarizeTrends renders the trend batch for the matching prompt.
func summarizeTrends(trends []core.TrendItem) string {
	var b strings.Builder
	for _, t := range trends {
		fmt.Fprintf(&b, "- keyword: %q | category: %s | score: %d | %s\n",
			t.Keyword, t.Category, t.Score, t.Description)
	}
	return b.String()
}
