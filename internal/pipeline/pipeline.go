// Package pipeline orchestrates the matching and enrichment stages: the model
// matches trends to experts under a hard deadline, then each match is enriched
// concurrently with academic papers or, failing that, news articles.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

// ErrMatchTimeout is returned when the matching stage exceeds its budget.
var ErrMatchTimeout = errors.New("trend matching timed out")

// ErrNoMatches is returned when the model produced no usable matches for the
// requested trend page.
var ErrNoMatches = errors.New("no matches were produced for these trends")

// Matcher produces trend/titan matches. Implemented by the LLM client.
type Matcher interface {
	MatchTrends(ctx context.Context, trends []core.TrendItem, titans []core.Titan) ([]core.MatchResult, error)
}

// PaperSearcher finds academic evidence for a match.
type PaperSearcher interface {
	SearchForMatch(ctx context.Context, match core.MatchResult) ([]core.AcademicPaper, error)
}

// NewsSearcher finds news evidence for a match.
type NewsSearcher interface {
	SearchForMatch(ctx context.Context, match core.MatchResult) ([]core.NewsArticle, error)
}

// Options carries the stage time budgets.
type Options struct {
	MatchTimeout time.Duration
	PaperTimeout time.Duration
	NewsTimeout  time.Duration
}

// Pipeline wires the matcher and the evidence searchers together.
type Pipeline struct {
	matcher Matcher
	papers  PaperSearcher
	news    NewsSearcher
	opts    Options
}

// New creates a pipeline. papers and news may be nil; enrichment then skips
// the corresponding evidence source.
func New(matcher Matcher, papers PaperSearcher, news NewsSearcher, opts Options) *Pipeline {
	return &Pipeline{matcher: matcher, papers: papers, news: news, opts: opts}
}

// Match runs the matching stage under its deadline and enriches the results.
// A timeout is reported as ErrMatchTimeout; an empty result as ErrNoMatches.
func (p *Pipeline) Match(ctx context.Context, trends []core.TrendItem, titans []core.Titan) ([]core.MatchResult, error) {
	matches, err := WithDeadline(ctx, p.opts.MatchTimeout, func(ctx context.Context) ([]core.MatchResult, error) {
		return p.matcher.MatchTrends(ctx, trends, titans)
	})
	if errors.Is(err, ErrTimeout) {
		return nil, ErrMatchTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("matching stage failed: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNoMatches
	}

	p.Enrich(ctx, matches)
	return matches, nil
}

// Enrich attaches evidence to each match in place, fanning out one goroutine
// per match. Papers take priority; news is queried only when the paper search
// produced nothing. Evidence failures leave the match bare but never fail the
// batch.
func (p *Pipeline) Enrich(ctx context.Context, matches []core.MatchResult) {
	var wg sync.WaitGroup
	for i := range matches {
		wg.Add(1)
		go func(m *core.MatchResult) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("enrichment panicked", fmt.Errorf("%v", r), "titan", m.Titan.Name)
				}
			}()
			p.enrichOne(ctx, m)
		}(&matches[i])
	}
	wg.Wait()
}

func (p *Pipeline) enrichOne(ctx context.Context, m *core.MatchResult) {
	if p.papers != nil {
		papers, err := WithFallback(ctx, p.opts.PaperTimeout, nil, func(ctx context.Context) ([]core.AcademicPaper, error) {
			return p.papers.SearchForMatch(ctx, *m)
		})
		if err != nil {
			logger.Warn("paper search failed", "titan", m.Titan.Name, "error", err.Error())
		} else {
			m.Papers = papers
		}
	}

	if len(m.Papers) > 0 || p.news == nil {
		return
	}

	news, err := WithFallback(ctx, p.opts.NewsTimeout, nil, func(ctx context.Context) ([]core.NewsArticle, error) {
		return p.news.SearchForMatch(ctx, *m)
	})
	if err != nil {
		logger.Warn("news search failed", "titan", m.Titan.Name, "error", err.Error())
		return
	}
	m.News = news
}
