package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

const defaultGoogleBaseURL = "https://trends.google.com/trends/api/dailytrends"

// GoogleProvider reads Google's daily-trends feed. The endpoint needs no API
// key but prefixes its JSON with an anti-hijacking sentinel that must be
// stripped before decoding.
type GoogleProvider struct {
	Geo        string
	BaseURL    string
	HTTPClient *http.Client
}

// NewGoogleProvider creates a daily-trends provider for the given geo.
func NewGoogleProvider(geo string) *GoogleProvider {
	if geo == "" {
		geo = "KR"
	}
	return &GoogleProvider{
		Geo:        geo,
		BaseURL:    defaultGoogleBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

type dailyTrendsResponse struct {
	Default struct {
		TrendingSearchesDays []struct {
			TrendingSearches []struct {
				Title struct {
					Query string `json:"query"`
				} `json:"title"`
				FormattedTraffic string `json:"formattedTraffic"`
			} `json:"trendingSearches"`
		} `json:"trendingSearchesDays"`
	} `json:"default"`
}

// Fetch implements Provider. Upstream failure falls back to demo data.
func (p *GoogleProvider) Fetch(ctx context.Context) ([]core.TrendItem, error) {
	url := fmt.Sprintf("%s?hl=en&geo=%s&tz=-540", p.BaseURL, p.Geo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		logger.Warn("google trends fetch failed, using demo trends", "error", err.Error())
		return DemoGoogleTrends(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("google trends returned non-OK status, using demo trends", "status", resp.StatusCode)
		return DemoGoogleTrends(), nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return DemoGoogleTrends(), nil
	}

	// The feed opens with the ")]}'," sentinel before the JSON body.
	body := strings.TrimPrefix(strings.TrimSpace(string(raw)), ")]}',")

	var parsed dailyTrendsResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		logger.Warn("google trends response unparseable, using demo trends", "error", err.Error())
		return DemoGoogleTrends(), nil
	}

	days := parsed.Default.TrendingSearchesDays
	if len(days) == 0 || len(days[0].TrendingSearches) == 0 {
		return DemoGoogleTrends(), nil
	}

	searches := days[0].TrendingSearches
	if len(searches) > 10 {
		searches = searches[:10]
	}

	items := make([]core.TrendItem, 0, len(searches))
	for i, s := range searches {
		traffic := s.FormattedTraffic
		if traffic == "" {
			traffic = "10K+"
		}
		trafficNum := parseTrafficNumber(traffic)

		score := 100 - i*8 + trafficNum/10
		if score > 100 {
			score = 100
		}

		items = append(items, core.TrendItem{
			Keyword:     s.Title.Query,
			Source:      core.TrendSourceGoogle,
			Category:    classifyKeyword(s.Title.Query),
			Score:       score,
			Description: fmt.Sprintf("Google daily trend — search volume: %s", traffic),
		})
	}

	return items, nil
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

func parseTrafficNumber(traffic string) int {
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(traffic, ""))
	if err != nil {
		return 10
	}
	return n
}

var categoryPatterns = []struct {
	re       *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)exam|study|learning|university|certification`), "Study/Exams"},
	{regexp.MustCompile(`(?i)job|career|interview|salary|hiring`), "Career/Decisions"},
	{regexp.MustCompile(`(?i)startup|invest|stock|real estate|business|money`), "Business/Startup"},
	{regexp.MustCompile(`(?i)health|workout|diet|mental|stress`), "Mental/Self-care"},
	{regexp.MustCompile(`(?i)\bai\b|productivity|efficiency|tech|app`), "Productivity"},
	{regexp.MustCompile(`(?i)habit|routine|goal`), "Habit building"},
}

// classifyKeyword maps a raw query onto a coarse content category.
func classifyKeyword(keyword string) string {
	for _, p := range categoryPatterns {
		if p.re.MatchString(keyword) {
			return p.category
		}
	}
	return "Other"
}

// DemoGoogleTrends is the static fallback for the Google provider.
func DemoGoogleTrends() []core.TrendItem {
	return []core.TrendItem{
		{Keyword: "ChatGPT power user tips", Source: core.TrendSourceGoogle, Category: "Productivity", Score: 92, Description: "[demo] Surge in AI tool usage searches"},
		{Keyword: "66-day habit building", Source: core.TrendSourceGoogle, Category: "Habit building", Score: 85, Description: "[demo] Rising interest in habit formation"},
		{Keyword: "Beginner investing guide", Source: core.TrendSourceGoogle, Category: "Business/Startup", Score: 80, Description: "[demo] Growing first-time investor searches"},
	}
}
