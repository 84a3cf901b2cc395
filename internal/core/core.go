package core

import "time"

// TrendSource identifies which provider produced a trend keyword.
type TrendSource string

const (
	TrendSourceNaver  TrendSource = "naver"
	TrendSourceGoogle TrendSource = "google"
)

// TitanSource distinguishes curated knowledge-base entries from ones the model
// invented during a matching call.
type TitanSource string

const (
	TitanSourceSeedDB       TitanSource = "seed_db"
	TitanSourceAIDiscovered TitanSource = "ai_discovered"
)

// TrendItem represents a single trend keyword collected from a provider.
type TrendItem struct {
	Keyword     string      `json:"keyword"`               // The trending keyword or keyword-group name
	Source      TrendSource `json:"source"`                // Provider that produced this item
	Category    string      `json:"category"`              // Coarse content category
	Score       int         `json:"score"`                 // Relative search-volume score
	Description string      `json:"description,omitempty"` // Short provider-supplied context
}

// Titan is a methodology expert: a named person plus their named method.
// Seed entries come from the knowledge base; ai_discovered entries are
// synthesized per request and never persisted back.
type Titan struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`          // Expert name (localized)
	NameEn        string      `json:"nameEn"`        // Expert name (English)
	Methodology   string      `json:"methodology"`   // Method name (localized)
	MethodologyEn string      `json:"methodologyEn"` // Method name (English)
	Description   string      `json:"description"`
	Categories    []string    `json:"categories"`
	ToolLevel     int         `json:"toolLevel"` // 1 = advice-only, 2 = systematizable into a tool
	Keywords      []string    `json:"keywords"`
	Source        TitanSource `json:"source"`
}

// AcademicPaper is a single academic search result attached to a match.
type AcademicPaper struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year"`
	CitationCount int      `json:"citationCount"`
	URL           string   `json:"url"`
	Abstract      string   `json:"abstract"`
	Venue         string   `json:"venue"`
}

// NewsArticle is a news search result used as fallback evidence when no
// papers were found for a match.
type NewsArticle struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// MatchResult pairs a trend with a titan. Papers and News are filled in by the
// enrichment stage; by construction at most one of them is non-empty.
type MatchResult struct {
	Trend          TrendItem       `json:"trend"`
	Titan          Titan           `json:"titan"`
	RelevanceScore int             `json:"relevanceScore"` // 0-100, assigned by the model
	Reasoning      string          `json:"reasoning"`
	Papers         []AcademicPaper `json:"papers,omitempty"`
	News           []NewsArticle   `json:"news,omitempty"`
}

// Key returns the identity key used for dedup and consumption tracking.
// It is deliberately not trend-qualified: the same titan matched against two
// trends collapses to one entry.
func (m MatchResult) Key() string {
	return m.Titan.Name + "|" + m.Titan.Methodology
}

// ToolConcept describes the interactive tool (or advice sheet, for level 1)
// proposed alongside a video idea.
type ToolConcept struct {
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// MediaRef points at an illustrative external video.
type MediaRef struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
	URL     string `json:"url"`
}

// BookRef points at a related book.
type BookRef struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// VideoIdea is the generated content-idea artifact for one confirmed match.
// Immutable once created; deletable and restorable through the history store.
type VideoIdea struct {
	ID             string      `json:"id"`
	Trend          string      `json:"trend"`
	TitanName      string      `json:"titanName"`
	Methodology    string      `json:"methodology"`
	Titles         []string    `json:"titles"`
	ThumbnailText  string      `json:"thumbnailText"`
	HookingPhrase  string      `json:"hookingPhrase"`
	PaperCitation  string      `json:"paperCitation,omitempty"`
	RelatedYouTube *MediaRef   `json:"relatedYoutube,omitempty"`
	RelatedBook    *BookRef    `json:"relatedBook,omitempty"`
	ToolConcept    ToolConcept `json:"toolConcept"`
	GeneratedAt    time.Time   `json:"generatedAt"`
}

// Key returns the methodology key this idea consumed.
func (v VideoIdea) Key() string {
	return v.TitanName + "|" + v.Methodology
}

// Video is a YouTube search result from the habit-analysis lineage.
type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Description  string `json:"description"`
	ViewCount    int64  `json:"viewCount"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl"`
	YouTubeURL   string `json:"youtubeUrl"`
}

// HabitAnalysis is the structured breakdown of a famous person's habit
// extracted from a video.
type HabitAnalysis struct {
	PersonName  string   `json:"personName"`
	PersonTitle string   `json:"personTitle"`
	CoreMessage string   `json:"coreMessage"`
	Description string   `json:"description"`
	ActionGuide []string `json:"actionGuide"` // Three escalating implementation steps
	Example     string   `json:"example"`
}

// VibeCodingIdea is the companion app concept for a habit analysis.
type VibeCodingIdea struct {
	AppName         string   `json:"appName"`
	Description     string   `json:"description"`
	Features        []string `json:"features"`
	TechStack       []string `json:"techStack"`
	DifficultyLevel int      `json:"difficultyLevel"` // 1 (static page) through 5 (AI/ML)
	Prompt          string   `json:"prompt"`
}

// HabitSuggestion is one entry of the standalone habit-recommendation surface.
type HabitSuggestion struct {
	ID          string `json:"id"`
	Person      string `json:"person"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"` // Easy, Medium, Hard
}
