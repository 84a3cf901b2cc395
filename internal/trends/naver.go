package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

const defaultNaverBaseURL = "https://openapi.naver.com/v1/datalab/search"

// keywordGroup is one monitored DataLab keyword group. The curated set aims
// for roughly 70% self-improvement and 30% economy/current-affairs coverage.
type keywordGroup struct {
	GroupName string
	Keywords  []string
	Category  string
}

var naverKeywordGroups = []keywordGroup{
	{GroupName: "Jobs & career moves", Keywords: []string{"job change", "interview", "resume", "salary negotiation", "career path"}, Category: "Career/Decisions"},
	{GroupName: "Study & exams", Keywords: []string{"civil service exam", "TOEIC", "certification", "study method", "note taking"}, Category: "Study/Exams"},
	{GroupName: "Startups & side income", Keywords: []string{"startup", "side hustle", "e-book", "personal branding", "solopreneur"}, Category: "Business/Startup"},
	{GroupName: "Self-care & mindset", Keywords: []string{"diet", "workout routine", "miracle morning", "meditation", "self-esteem"}, Category: "Mental/Self-care"},
	{GroupName: "Productivity tools", Keywords: []string{"time management", "notion", "AI tools", "work efficiency", "planner"}, Category: "Productivity"},
	{GroupName: "Investing & money", Keywords: []string{"investing", "real estate", "stocks", "bitcoin", "tax saving"}, Category: "Economy/Investing"},
	{GroupName: "Policy & current affairs", Keywords: []string{"policy", "subsidies", "AI trend", "aging society", "electric cars"}, Category: "Current affairs"},
}

// NaverProvider polls the Naver DataLab search-trend API, one request per
// keyword group, and scores each group by how far its latest search volume
// sits above its 7-day average.
type NaverProvider struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client
}

// NewNaverProvider creates a DataLab provider with the default endpoint.
func NewNaverProvider(clientID, clientSecret string) *NaverProvider {
	return &NaverProvider{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      defaultNaverBaseURL,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Provider.
func (p *NaverProvider) Name() string { return "naver" }

type datalabRequest struct {
	StartDate     string                `json:"startDate"`
	EndDate       string                `json:"endDate"`
	TimeUnit      string                `json:"timeUnit"`
	KeywordGroups []datalabKeywordGroup `json:"keywordGroups"`
}

type datalabKeywordGroup struct {
	GroupName string   `json:"groupName"`
	Keywords  []string `json:"keywords"`
}

type datalabResponse struct {
	Results []struct {
		Data []struct {
			Ratio float64 `json:"ratio"`
		} `json:"data"`
	} `json:"results"`
}

// Fetch implements Provider. Missing credentials or a fully failed poll fall
// back to demo data so the trends route stays alive without keys.
func (p *NaverProvider) Fetch(ctx context.Context) ([]core.TrendItem, error) {
	if p.ClientID == "" || p.ClientSecret == "" {
		logger.Warn("naver credentials are not set, using demo trends")
		return DemoNaverTrends(), nil
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -7)

	var results []core.TrendItem
	for _, group := range naverKeywordGroups {
		item, err := p.fetchGroup(ctx, group, startDate, endDate)
		if err != nil {
			logger.Warn("naver group poll failed", "group", group.GroupName, "error", err.Error())
			continue
		}
		results = append(results, item)
	}

	if len(results) == 0 {
		return DemoNaverTrends(), nil
	}
	return results, nil
}

func (p *NaverProvider) fetchGroup(ctx context.Context, group keywordGroup, startDate, endDate time.Time) (core.TrendItem, error) {
	body := datalabRequest{
		StartDate: startDate.Format("2006-01-02"),
		EndDate:   endDate.Format("2006-01-02"),
		TimeUnit:  "date",
		KeywordGroups: []datalabKeywordGroup{
			{GroupName: group.GroupName, Keywords: group.Keywords},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return core.TrendItem{}, fmt.Errorf("failed to encode datalab request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return core.TrendItem{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Naver-Client-Id", p.ClientID)
	req.Header.Set("X-Naver-Client-Secret", p.ClientSecret)

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return core.TrendItem{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.TrendItem{}, fmt.Errorf("datalab returned status %d", resp.StatusCode)
	}

	var parsed datalabResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return core.TrendItem{}, fmt.Errorf("failed to decode datalab response: %w", err)
	}
	if len(parsed.Results) == 0 || len(parsed.Results[0].Data) == 0 {
		return core.TrendItem{}, fmt.Errorf("datalab returned no data points")
	}

	return core.TrendItem{
		Keyword:     group.GroupName,
		Source:      core.TrendSourceNaver,
		Category:    group.Category,
		Score:       scoreRatios(parsed.Results[0].Data),
		Description: fmt.Sprintf("Search volume surge over the last 7 days (%s)", group.GroupName),
	}, nil
}

// scoreRatios scores a group by latest-vs-average search volume, clamped to
// the 60-99 band so demo and live data stay comparable.
func scoreRatios(points []struct {
	Ratio float64 `json:"ratio"`
}) int {
	var sum float64
	for _, p := range points {
		sum += p.Ratio
	}
	avg := sum / float64(len(points))
	latest := points[len(points)-1].Ratio

	score := 50
	if avg > 0 {
		score = int(latest/avg*100 + 0.5)
	}
	if score < 60 {
		score = 60
	}
	if score > 99 {
		score = 99
	}
	return score
}

// DemoNaverTrends is the static fallback served when DataLab is unreachable
// or unconfigured.
func DemoNaverTrends() []core.TrendItem {
	return []core.TrendItem{
		{Keyword: "Preparing a job change", Source: core.TrendSourceNaver, Category: "Career/Decisions", Score: 88, Description: "[demo] Hiring-season interest in switching jobs"},
		{Keyword: "Miracle morning challenge", Source: core.TrendSourceNaver, Category: "Mental/Self-care", Score: 92, Description: "[demo] New-year morning routine boom"},
		{Keyword: "Notion portfolio", Source: core.TrendSourceNaver, Category: "Productivity", Score: 85, Description: "[demo] Building distinctive portfolios with Notion"},
		{Keyword: "AI side hustle", Source: core.TrendSourceNaver, Category: "Business/Startup", Score: 95, Description: "[demo] Automated income models built on chat assistants"},
		{Keyword: "Civil service exam 2026", Source: core.TrendSourceNaver, Category: "Study/Exams", Score: 82, Description: "[demo] Exam schedule announcement traffic"},
		{Keyword: "Self-taught conversational English", Source: core.TrendSourceNaver, Category: "Study/Exams", Score: 78, Description: "[demo] Practical language learning demand"},
		{Keyword: "Daily writing routine", Source: core.TrendSourceNaver, Category: "Habit building", Score: 75, Description: "[demo] Daily writing for personal branding"},
		{Keyword: "Bitcoin all-time high", Source: core.TrendSourceNaver, Category: "Economy/Investing", Score: 98, Description: "[demo] Crypto rally investment fever"},
		{Keyword: "Housing subscription rules eased", Source: core.TrendSourceNaver, Category: "Economy/Investing", Score: 91, Description: "[demo] Search spike after deregulation news"},
		{Keyword: "Birth-rate policy package", Source: core.TrendSourceNaver, Category: "Current affairs", Score: 84, Description: "[demo] Attention on a social policy announcement"},
	}
}
