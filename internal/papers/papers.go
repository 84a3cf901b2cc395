// Package papers searches Semantic Scholar for academic evidence backing a
// trend/titan match. No API key is required; the public graph endpoint is
// rate-limited, so per-match searches space their query variants out.
package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

const defaultBaseURL = "https://api.semanticscholar.org/graph/v1/paper/search"

const searchFields = "title,authors,year,citationCount,url,abstract,venue"

// Client queries the Semantic Scholar graph API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	QueryDelay time.Duration
}

// NewClient creates a paper-search client with the given delay between query
// variants.
func NewClient(queryDelay time.Duration) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		QueryDelay: queryDelay,
	}
}

type searchResponse struct {
	Data []struct {
		Title         string `json:"title"`
		Year          int    `json:"year"`
		CitationCount int    `json:"citationCount"`
		URL           string `json:"url"`
		Abstract      string `json:"abstract"`
		Venue         string `json:"venue"`
		Authors       []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"data"`
}

// Search runs a single query and returns up to limit papers, sorted by
// citation count descending. Untitled results and results without a year are
// dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.AcademicPaper, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("fields", searchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paper search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paper search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode paper search response: %w", err)
	}

	var papers []core.AcademicPaper
	for _, d := range parsed.Data {
		if d.Title == "" || d.Year == 0 {
			continue
		}
		authors := make([]string, 0, len(d.Authors))
		for _, a := range d.Authors {
			authors = append(authors, a.Name)
		}
		papers = append(papers, core.AcademicPaper{
			Title:         d.Title,
			Authors:       authors,
			Year:          d.Year,
			CitationCount: d.CitationCount,
			URL:           d.URL,
			Abstract:      d.Abstract,
			Venue:         d.Venue,
		})
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].CitationCount > papers[j].CitationCount
	})
	return papers, nil
}

// SearchForMatch gathers evidence for one match by running three query
// variants, deduplicating by title, and keeping the five most-cited results.
// Individual variant failures are logged and skipped; the call only reports
// an error when every variant failed.
func (c *Client) SearchForMatch(ctx context.Context, match core.MatchResult) ([]core.AcademicPaper, error) {
	queries := queryVariants(match)

	seen := make(map[string]bool)
	var merged []core.AcademicPaper
	var lastErr error
	succeeded := false

	for i, q := range queries {
		if i > 0 && c.QueryDelay > 0 {
			select {
			case <-ctx.Done():
				if succeeded {
					return rank(merged), nil
				}
				return nil, ctx.Err()
			case <-time.After(c.QueryDelay):
			}
		}

		papers, err := c.Search(ctx, q, perVariantLimit)
		if err != nil {
			logger.Debug("paper query variant failed", "query", q, "error", err.Error())
			lastErr = err
			continue
		}
		succeeded = true

		for _, p := range papers {
			key := strings.ToLower(strings.TrimSpace(p.Title))
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, p)
		}
	}

	if !succeeded {
		return nil, fmt.Errorf("all paper queries failed: %w", lastErr)
	}
	return rank(merged), nil
}

// perVariantLimit is how many results each query variant asks for.
const perVariantLimit = 3

// queryVariants builds the three search phrasings for a match, ordered from
// most to least specific: methodology plus trend, expert plus methodology,
// and the trend keyword alone.
func queryVariants(match core.MatchResult) []string {
	name := match.Titan.NameEn
	if name == "" {
		name = match.Titan.Name
	}
	method := match.Titan.MethodologyEn
	if method == "" {
		method = match.Titan.Methodology
	}

	return []string{
		fmt.Sprintf("%s %s", method, match.Trend.Keyword),
		fmt.Sprintf("%s %s", name, method),
		match.Trend.Keyword,
	}
}

func rank(papers []core.AcademicPaper) []core.AcademicPaper {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].CitationCount > papers[j].CitationCount
	})
	if len(papers) > 5 {
		papers = papers[:5]
	}
	return papers
}
