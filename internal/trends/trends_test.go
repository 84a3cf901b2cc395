package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ideaforge/internal/core"
)

type staticProvider struct {
	name  string
	items []core.TrendItem
	err   error
}

func (p *staticProvider) Name() string { return p.name }
func (p *staticProvider) Fetch(ctx context.Context) ([]core.TrendItem, error) {
	return p.items, p.err
}

func TestCollectMergesAndSortsByScore(t *testing.T) {
	a := &staticProvider{name: "a", items: []core.TrendItem{
		{Keyword: "low", Score: 10},
		{Keyword: "high", Score: 95},
	}}
	b := &staticProvider{name: "b", items: []core.TrendItem{
		{Keyword: "mid", Score: 50},
	}}

	merged := Collect(context.Background(), a, b)
	if len(merged) != 3 {
		t.Fatalf("Expected 3 merged items, got %d", len(merged))
	}
	if merged[0].Keyword != "high" || merged[1].Keyword != "mid" || merged[2].Keyword != "low" {
		t.Errorf("Expected score-descending order, got %v", merged)
	}
}

func TestCollectSkipsFailingProvider(t *testing.T) {
	ok := &staticProvider{name: "ok", items: []core.TrendItem{{Keyword: "x", Score: 1}}}
	broken := &staticProvider{name: "broken", err: fmt.Errorf("upstream down")}

	merged := Collect(context.Background(), ok, broken)
	if len(merged) != 1 {
		t.Fatalf("Expected the failing provider to contribute nothing, got %d items", len(merged))
	}
}

func TestNaverFetchWithoutCredentialsUsesDemoData(t *testing.T) {
	p := NewNaverProvider("", "")

	items, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("Expected demo trends without credentials")
	}
	for _, item := range items {
		if item.Source != core.TrendSourceNaver {
			t.Errorf("Expected naver source, got %s", item.Source)
		}
	}
}

func TestNaverFetchParsesDatalabResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") != "id" || r.Header.Get("X-Naver-Client-Secret") != "secret" {
			t.Error("Expected Naver credential headers on every request")
		}
		// Latest ratio double the average of the earlier points.
		fmt.Fprint(w, `{"results":[{"data":[{"ratio":50},{"ratio":50},{"ratio":200}]}]}`)
	}))
	defer srv.Close()

	p := NewNaverProvider("id", "secret")
	p.BaseURL = srv.URL

	items, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != len(naverKeywordGroups) {
		t.Fatalf("Expected one item per keyword group, got %d", len(items))
	}
	// latest/avg = 200/100 => 200, clamped to the 60-99 band.
	if items[0].Score != 99 {
		t.Errorf("Expected surge score clamped to 99, got %d", items[0].Score)
	}
}

func TestScoreRatiosClampsLowEnd(t *testing.T) {
	points := []struct {
		Ratio float64 `json:"ratio"`
	}{{100}, {100}, {10}}

	if score := scoreRatios(points); score != 60 {
		t.Errorf("Expected a collapsing trend clamped to 60, got %d", score)
	}
}

func TestGoogleFetchStripsSentinelAndScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}',
{"default":{"trendingSearchesDays":[{"trendingSearches":[
  {"title":{"query":"AI productivity tools"},"formattedTraffic":"200K+"},
  {"title":{"query":"random celebrity"},"formattedTraffic":"50K+"}
]}]}}`)
	}))
	defer srv.Close()

	p := NewGoogleProvider("KR")
	p.BaseURL = srv.URL

	items, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	// Rank 0 with 200K traffic: 100 - 0 + 200/10 capped at 100.
	if items[0].Score != 100 {
		t.Errorf("Expected top item capped at 100, got %d", items[0].Score)
	}
	// Rank 1 with 50K traffic: 100 - 8 + 5 = 97.
	if items[1].Score != 97 {
		t.Errorf("Expected second item at 97, got %d", items[1].Score)
	}

	if items[0].Category != "Productivity" {
		t.Errorf("Expected AI keyword mapped to Productivity, got %s", items[0].Category)
	}
	if items[1].Category != "Other" {
		t.Errorf("Expected unmatched keyword mapped to Other, got %s", items[1].Category)
	}
	if items[0].Source != core.TrendSourceGoogle {
		t.Errorf("Expected google source, got %s", items[0].Source)
	}
}

func TestGoogleFetchFallsBackOnBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer srv.Close()

	p := NewGoogleProvider("KR")
	p.BaseURL = srv.URL

	items, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != len(DemoGoogleTrends()) {
		t.Errorf("Expected demo fallback, got %d items", len(items))
	}
}

func TestClassifyKeyword(t *testing.T) {
	cases := []struct {
		keyword string
		want    string
	}{
		{"civil service exam schedule", "Study/Exams"},
		{"salary negotiation tips", "Career/Decisions"},
		{"real estate outlook", "Business/Startup"},
		{"morning workout plan", "Mental/Self-care"},
		{"daily routine tracker", "Habit building"},
		{"weather tomorrow", "Other"},
	}
	for _, c := range cases {
		if got := classifyKeyword(c.keyword); got != c.want {
			t.Errorf("classifyKeyword(%q) = %q, want %q", c.keyword, got, c.want)
		}
	}
}
