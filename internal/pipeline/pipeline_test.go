package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ideaforge/internal/core"
)

type stubMatcher struct {
	matches []core.MatchResult
	err     error
	delay   time.Duration
}

func (s *stubMatcher) MatchTrends(ctx context.Context, trends []core.TrendItem, titans []core.Titan) ([]core.MatchResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.matches, s.err
}

type stubPapers struct {
	papers []core.AcademicPaper
	err    error
	delay  time.Duration
}

func (s *stubPapers) SearchForMatch(ctx context.Context, match core.MatchResult) ([]core.AcademicPaper, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.papers, s.err
}

type stubNews struct {
	news  []core.NewsArticle
	err   error
	calls int
}

func (s *stubNews) SearchForMatch(ctx context.Context, match core.MatchResult) ([]core.NewsArticle, error) {
	s.calls++
	return s.news, s.err
}

func sampleMatch(titan string) core.MatchResult {
	return core.MatchResult{
		Trend:          core.TrendItem{Keyword: "habit building"},
		Titan:          core.Titan{Name: titan, Methodology: "Method"},
		RelevanceScore: 80,
	}
}

func testOptions() Options {
	return Options{
		MatchTimeout: time.Second,
		PaperTimeout: time.Second,
		NewsTimeout:  time.Second,
	}
}

func TestMatchTimesOut(t *testing.T) {
	matcher := &stubMatcher{delay: time.Second, matches: []core.MatchResult{sampleMatch("A")}}
	opts := testOptions()
	opts.MatchTimeout = 10 * time.Millisecond

	p := New(matcher, nil, nil, opts)
	_, err := p.Match(context.Background(), []core.TrendItem{{Keyword: "x"}}, nil)
	if !errors.Is(err, ErrMatchTimeout) {
		t.Fatalf("Expected ErrMatchTimeout, got %v", err)
	}
}

func TestMatchEmptyResultIsNoMatches(t *testing.T) {
	p := New(&stubMatcher{}, nil, nil, testOptions())
	_, err := p.Match(context.Background(), []core.TrendItem{{Keyword: "x"}}, nil)
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("Expected ErrNoMatches, got %v", err)
	}
}

func TestMatchPropagatesMatcherError(t *testing.T) {
	wantErr := fmt.Errorf("model unavailable")
	p := New(&stubMatcher{err: wantErr}, nil, nil, testOptions())
	_, err := p.Match(context.Background(), []core.TrendItem{{Keyword: "x"}}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected the matcher error, got %v", err)
	}
}

func TestEnrichPrefersPapersAndSkipsNews(t *testing.T) {
	papers := &stubPapers{papers: []core.AcademicPaper{{Title: "On Habits", Year: 2019}}}
	news := &stubNews{news: []core.NewsArticle{{Title: "Habit article"}}}

	p := New(&stubMatcher{}, papers, news, testOptions())
	matches := []core.MatchResult{sampleMatch("A")}
	p.Enrich(context.Background(), matches)

	if len(matches[0].Papers) != 1 {
		t.Fatalf("Expected 1 paper, got %d", len(matches[0].Papers))
	}
	if len(matches[0].News) != 0 {
		t.Error("Expected no news when papers were found")
	}
	if news.calls != 0 {
		t.Errorf("Expected news search to be skipped, got %d calls", news.calls)
	}
}

func TestEnrichFallsBackToNewsWhenNoPapers(t *testing.T) {
	news := &stubNews{news: []core.NewsArticle{{Title: "Habit article"}}}

	p := New(&stubMatcher{}, &stubPapers{}, news, testOptions())
	matches := []core.MatchResult{sampleMatch("A")}
	p.Enrich(context.Background(), matches)

	if len(matches[0].Papers) != 0 {
		t.Error("Expected no papers")
	}
	if len(matches[0].News) != 1 {
		t.Fatalf("Expected 1 news article, got %d", len(matches[0].News))
	}
}

func TestEnrichPaperTimeoutLeavesMatchBare(t *testing.T) {
	papers := &stubPapers{delay: time.Second, papers: []core.AcademicPaper{{Title: "Late", Year: 2020}}}
	news := &stubNews{}

	opts := testOptions()
	opts.PaperTimeout = 10 * time.Millisecond

	p := New(&stubMatcher{}, papers, news, opts)
	matches := []core.MatchResult{sampleMatch("A")}
	p.Enrich(context.Background(), matches)

	if len(matches[0].Papers) != 0 {
		t.Error("Expected the timed-out paper search to contribute nothing")
	}
	if news.calls != 1 {
		t.Errorf("Expected news fallback after the paper timeout, got %d calls", news.calls)
	}
}

func TestEnrichFailuresNeverFailTheBatch(t *testing.T) {
	papers := &stubPapers{err: fmt.Errorf("rate limited")}
	news := &stubNews{err: fmt.Errorf("rate limited too")}

	p := New(&stubMatcher{}, papers, news, testOptions())
	matches := []core.MatchResult{sampleMatch("A"), sampleMatch("B")}
	p.Enrich(context.Background(), matches)

	for i, m := range matches {
		if len(m.Papers) != 0 || len(m.News) != 0 {
			t.Errorf("match %d: expected bare evidence after failures", i)
		}
	}
}
