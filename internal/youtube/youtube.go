// Package youtube searches the YouTube Data API for videos about famous
// people's habits and routines. Unlike the trend providers there is no demo
// fallback here; a missing API key is a typed error the server surfaces.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

// ErrNotConfigured is returned when no YouTube API key is available.
var ErrNotConfigured = errors.New("youtube API key is not configured")

const (
	defaultSearchURL = "https://www.googleapis.com/youtube/v3/search"
	defaultVideosURL = "https://www.googleapis.com/youtube/v3/videos"

	minViewCount   = 5000
	maxResults     = 20
	lookbackDays   = 90
	requestSpacing = 200 * time.Millisecond
)

// keyword pools grouped by angle; one keyword is drawn per group per search so
// repeated calls see varied results.
var keywordGroups = [][]string{
	{"successful people morning routine", "CEO daily habits", "billionaire routine"},
	{"athlete discipline habits", "high performer routine", "elite mindset habits"},
	{"famous entrepreneur productivity", "startup founder daily schedule"},
	{"celebrity self improvement habits", "artist creative routine"},
}

// famousKeywordGroups narrows the pools to widely recognized names when the
// famous-only filter is requested upstream.
var famousKeywordGroups = [][]string{
	{"Elon Musk daily routine", "Warren Buffett habits"},
	{"Jeff Bezos morning routine", "Bill Gates habits"},
	{"Oprah Winfrey routine", "Tim Cook daily schedule"},
	{"Cristiano Ronaldo discipline", "LeBron James routine"},
}

// Client queries the YouTube Data API.
type Client struct {
	APIKey     string
	SearchURL  string
	VideosURL  string
	HTTPClient *http.Client
	rng        *rand.Rand
}

// NewClient creates a YouTube client. The key may be empty; SearchHabitVideos
// then returns ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		SearchURL:  defaultSearchURL,
		VideosURL:  defaultVideosURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Description  string `json:"description"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchHabitVideos draws one keyword per group, searches each, joins in view
// counts, and returns videos with at least 5000 views sorted by view count
// descending, capped at 20. Videos whose IDs appear in usedIDs are excluded.
func (c *Client) SearchHabitVideos(ctx context.Context, usedIDs map[string]bool, famousOnly bool) ([]core.Video, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}

	groups := keywordGroups
	if famousOnly {
		groups = famousKeywordGroups
	}

	var all []core.Video
	seen := make(map[string]bool)

	for i, group := range groups {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(requestSpacing):
			}
		}

		keyword := group[c.rng.Intn(len(group))]
		videos, err := c.searchKeyword(ctx, keyword)
		if err != nil {
			logger.Warn("youtube keyword search failed", "keyword", keyword, "error", err.Error())
			continue
		}
		for _, v := range videos {
			if seen[v.VideoID] || usedIDs[v.VideoID] {
				continue
			}
			seen[v.VideoID] = true
			all = append(all, v)
		}
	}

	filtered := all[:0]
	for _, v := range all {
		if v.ViewCount >= minViewCount {
			filtered = append(filtered, v)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ViewCount > filtered[j].ViewCount
	})
	if len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	return filtered, nil
}

// searchKeyword runs one search call and joins in statistics for the hits.
func (c *Client) searchKeyword(ctx context.Context, keyword string) ([]core.Video, error) {
	publishedAfter := time.Now().AddDate(0, 0, -lookbackDays).Format(time.RFC3339)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", keyword)
	params.Set("type", "video")
	params.Set("order", "viewCount")
	params.Set("maxResults", "10")
	params.Set("publishedAfter", publishedAfter)
	params.Set("key", c.APIKey)

	var parsed searchResponse
	if err := c.getJSON(ctx, c.SearchURL+"?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	viewCounts, err := c.fetchViewCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	videos := make([]core.Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		id := item.ID.VideoID
		if id == "" {
			continue
		}
		videos = append(videos, core.Video{
			VideoID:      id,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			Description:  item.Snippet.Description,
			ViewCount:    viewCounts[id],
			PublishedAt:  item.Snippet.PublishedAt,
			ThumbnailURL: item.Snippet.Thumbnails.Medium.URL,
			YouTubeURL:   "https://www.youtube.com/watch?v=" + id,
		})
	}
	return videos, nil
}

// fetchViewCounts resolves view counts for a batch of video IDs.
func (c *Client) fetchViewCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.APIKey)

	var parsed videosResponse
	if err := c.getJSON(ctx, c.VideosURL+"?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(parsed.Items))
	for _, item := range parsed.Items {
		n, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		if err != nil {
			continue
		}
		counts[item.ID] = n
	}
	return counts, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode youtube response: %w", err)
	}
	return nil
}
