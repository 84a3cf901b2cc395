// Package news searches the Naver news API. News is fallback evidence: the
// enrichment stage only asks for articles when the paper search came back
// empty for a match.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

const defaultBaseURL = "https://openapi.naver.com/v1/search/news.json"

// Client queries the Naver news search API.
type Client struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client
}

// NewClient creates a news client. Missing credentials are tolerated; Search
// then returns no articles instead of an error, since news is best-effort.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      defaultBaseURL,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type newsResponse struct {
	Items []struct {
		Title        string `json:"title"`
		OriginalLink string `json:"originallink"`
		Link         string `json:"link"`
		Description  string `json:"description"`
		PubDate      string `json:"pubDate"`
	} `json:"items"`
}

// Search returns up to three articles relevant to the query, sorted by
// similarity on the Naver side.
func (c *Client) Search(ctx context.Context, query string) ([]core.NewsArticle, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		logger.Debug("naver credentials are not set, skipping news search")
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", "3")
	params.Set("sort", "sim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Naver-Client-Id", c.ClientID)
	req.Header.Set("X-Naver-Client-Secret", c.ClientSecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news search returned status %d", resp.StatusCode)
	}

	var parsed newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	articles := make([]core.NewsArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, core.NewsArticle{
			Title:        stripTags(item.Title),
			OriginalLink: item.OriginalLink,
			Link:         item.Link,
			Description:  stripTags(item.Description),
			PubDate:      item.PubDate,
		})
	}
	return articles, nil
}

// SearchForMatch builds the fallback query for an unenriched match. The query
// pairs the trend keyword with the expert's name so the articles tie the two
// together rather than covering the trend alone.
func (c *Client) SearchForMatch(ctx context.Context, match core.MatchResult) ([]core.NewsArticle, error) {
	query := fmt.Sprintf("%s %s", match.Trend.Keyword, match.Titan.Name)
	return c.Search(ctx, query)
}

// stripTags removes the <b> highlighting and HTML entities Naver embeds in
// titles and descriptions.
func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
