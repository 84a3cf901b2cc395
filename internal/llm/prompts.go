package llm

import (
	"fmt"
	"strings"

	"ideaforge/internal/core"
)

// MatchPromptTemplate instructs the model to pair each trend with the best
// seed titan and to additionally discover 1-2 real-world experts not in the
// seed DB. The response contract is a bare JSON array.
const MatchPromptTemplate = `You are a content strategist matching trending search keywords to "titans": well-known experts and their named methodologies.

TRENDS (match every one of them):
%s

SEED KNOWLEDGE BASE:
%s

TASK:
1. For each trend, pick the single best-fitting titan from the seed knowledge base. Copy the titan fields verbatim and set "source" to "seed_db".
2. Additionally invent 1-2 real-world methodology experts that are NOT in the seed knowledge base but genuinely fit one of the trends. For those, fill in every titan field yourself and set "source" to "ai_discovered".
3. For every titan you emit, assign "toolLevel" by judgment: 1 if the methodology is advice that can be practiced with pen and paper, 2 if it can be systematized into an interactive tool or calculator.
4. Score each pairing 0-100 in "relevanceScore" and justify it in one or two sentences in "reasoning".

RESPONSE FORMAT — a JSON array only, no prose, no markdown fences:
[
  {
    "trendKeyword": "<exact keyword from the trends list>",
    "titan": {"id": "...", "name": "...", "nameEn": "...", "methodology": "...", "methodologyEn": "...", "description": "...", "categories": ["..."], "toolLevel": 1, "keywords": ["..."], "source": "seed_db"},
    "relevanceScore": 85,
    "reasoning": "..."
  }
]`

// IdeaPromptTemplate is the default generation instruction. When the caller
// supplies custom instructions they replace this template entirely.
const IdeaPromptTemplate = `You are a YouTube content planner. Produce one video-idea package for the matched trend and expert below. The tool concept must match toolLevel %d (1 = a printable advice routine, 2 = an interactive tool or calculator concept with concrete features).`

// buildMatchPrompt assembles the matching request for a trend batch.
func buildMatchPrompt(trends []core.TrendItem, titans []core.Titan) string {
	return fmt.Sprintf(MatchPromptTemplate, summarizeTrends(trends), summarizeTitans(titans))
}

// buildIdeaPrompt assembles the generation request for one confirmed match.
// A non-empty customPrompt is used verbatim as the instruction, with highest
// priority, and the default template text is omitted.
func buildIdeaPrompt(match core.MatchResult, customPrompt string) string {
	instruction := fmt.Sprintf(IdeaPromptTemplate, match.Titan.ToolLevel)
	if strings.TrimSpace(customPrompt) != "" {
		instruction = "TOP-PRIORITY INSTRUCTIONS FROM THE USER (follow these over everything else):\n" + customPrompt
	}

	var evidence strings.Builder
	for _, p := range match.Papers {
		fmt.Fprintf(&evidence, "- paper: %q (%d, cited %d times, %s)\n", p.Title, p.Year, p.CitationCount, p.Venue)
	}
	for _, n := range match.News {
		fmt.Fprintf(&evidence, "- news: %q (%s)\n", n.Title, n.PubDate)
	}
	if evidence.Len() == 0 {
		evidence.WriteString("- none collected\n")
	}

	return fmt.Sprintf(`%s

MATCH:
- trend: %q (category: %s, score: %d)
- expert: %s (%s)
- methodology: %s (%s)
- why they match: %s

SUPPORTING EVIDENCE:
%s
REQUIREMENTS:
- 3 candidate video titles.
- One short thumbnail text and one hooking phrase.
- A one-line paper citation if a paper was listed above, otherwise an empty string.
- One REAL illustrative YouTube video (title, channel, url) and one REAL book (title, author) related to the methodology. Use your best factual knowledge; do not fabricate URLs you are unsure of — set the field to null instead.
- A tool concept: name, level, one-line description, and a features list.

RESPONSE FORMAT — a single JSON object only, no prose, no markdown fences:
{
  "titles": ["...", "...", "..."],
  "thumbnailText": "...",
  "hookingPhrase": "...",
  "paperCitation": "...",
  "relatedYoutube": {"title": "...", "channel": "...", "url": "..."} ,
  "relatedBook": {"title": "...", "author": "..."},
  "toolConcept": {"name": "...", "level": %d, "description": "...", "features": ["..."]}
}`,
		instruction,
		match.Trend.Keyword, match.Trend.Category, match.Trend.Score,
		match.Titan.Name, match.Titan.NameEn,
		match.Titan.Methodology, match.Titan.MethodologyEn,
		match.Reasoning,
		evidence.String(),
		match.Titan.ToolLevel,
	)
}

// buildAnalyzePrompt assembles the habit-analysis request for one video.
func buildAnalyzePrompt(video core.Video) string {
	description := video.Description
	if len(description) > 500 {
		description = description[:500]
	}

	return fmt.Sprintf(`Analyze the habit, study method, or self-management practice of the famous person covered by this video.

VIDEO:
- title: %s
- channel: %s
- views: %d
- description: %s

Difficulty scale for the companion app concept (vibeCoding.difficultyLevel):
1 = static page (HTML/CSS only), 2 = needs JavaScript (timer, calculator, local storage), 3 = API integration, 4 = backend server, 5 = AI/ML or a complex system.

The actionGuide must contain exactly three steps: an immediate starter step, a deepening step after one week, and a habit-forming step after one month.

RESPONSE FORMAT — a single JSON object only, no prose outside it:
{
  "analysis": {
    "personName": "...",
    "personTitle": "...",
    "coreMessage": "...",
    "description": "...",
    "actionGuide": ["...", "...", "..."],
    "example": "..."
  },
  "vibeCoding": {
    "appName": "...",
    "description": "...",
    "features": ["...", "...", "..."],
    "techStack": ["..."],
    "difficultyLevel": 2,
    "prompt": "..."
  }
}`, video.Title, video.ChannelTitle, video.ViewCount, description)
}

// buildFamousFilterPrompt asks the model which videos feature world-famous
// people, by index.
func buildFamousFilterPrompt(videos []core.Video) string {
	var list strings.Builder
	for i, v := range videos {
		fmt.Fprintf(&list, "%d. %q (channel: %s)\n", i, v.Title, v.ChannelTitle)
	}

	return fmt.Sprintf(`From the YouTube videos below, select only the ones whose main subject is a WORLD-FAMOUS person.

Strict inclusion bar: the person must be famous enough to have a standalone Wikipedia article (e.g. Elon Musk, Warren Buffett, Jensen Huang, Bill Gates, Ray Dalio, Andrew Huberman, Tim Ferriss, Oprah Winfrey, Barack Obama).
Always exclude: ordinary vloggers, student day-in-the-life videos, channels under a million subscribers, and generic self-improvement tips with no named famous subject.

VIDEOS:
%s
RESPONSE FORMAT — a JSON array of the selected indices only, e.g. [0, 3, 7]. Return [] if none qualify. No explanation.`, list.String())
}
