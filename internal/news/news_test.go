package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ideaforge/internal/core"
)

func TestSearchWithoutCredentialsReturnsNothing(t *testing.T) {
	c := NewClient("", "")

	articles, err := c.Search(context.Background(), "habit building")
	if err != nil {
		t.Fatalf("Expected missing credentials to be tolerated, got %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("Expected no articles without credentials, got %d", len(articles))
	}
}

func TestSearchStripsHTMLFromResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") != "id" {
			t.Error("Expected the client id header")
		}
		if r.URL.Query().Get("display") != "3" {
			t.Errorf("Expected display=3, got %s", r.URL.Query().Get("display"))
		}
		if r.URL.Query().Get("sort") != "sim" {
			t.Errorf("Expected sort=sim, got %s", r.URL.Query().Get("sort"))
		}
		fmt.Fprint(w, `{"items":[
			{"title":"<b>Habit</b> stacking goes mainstream","originallink":"https://a","link":"https://b","description":"Experts say &quot;small&quot; <b>habits</b> win","pubDate":"Mon, 01 Sep 2025"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient("id", "secret")
	c.BaseURL = srv.URL

	articles, err := c.Search(context.Background(), "habit stacking")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].Title != "Habit stacking goes mainstream" {
		t.Errorf("Expected tags stripped from title, got %q", articles[0].Title)
	}
	if articles[0].Description != `Experts say "small" habits win` {
		t.Errorf("Expected entities decoded in description, got %q", articles[0].Description)
	}
	if articles[0].OriginalLink != "https://a" {
		t.Errorf("Expected original link preserved, got %q", articles[0].OriginalLink)
	}
}

func TestSearchForMatchPairsTrendWithTitanName(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c := NewClient("id", "secret")
	c.BaseURL = srv.URL

	match := core.MatchResult{
		Trend: core.TrendItem{Keyword: "miracle morning"},
		Titan: core.Titan{Name: "Andrew Huberman", Methodology: "Morning Light Protocol"},
	}
	if _, err := c.SearchForMatch(context.Background(), match); err != nil {
		t.Fatalf("SearchForMatch failed: %v", err)
	}
	if gotQuery != "miracle morning Andrew Huberman" {
		t.Errorf("Expected the trend paired with the expert name, got %q", gotQuery)
	}
}

func TestSearchSurfacesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("id", "wrong")
	c.BaseURL = srv.URL

	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Error("Expected an error on a non-OK status")
	}
}
