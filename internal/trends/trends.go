// Package trends collects trend keywords from the Naver DataLab and Google
// daily-trends providers. Providers degrade to curated demo data when
// credentials are missing or the upstream fails, so trend collection never
// fails a request on its own.
package trends

import (
	"context"
	"sort"
	"sync"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

// Provider is a single trend source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]core.TrendItem, error)
}

// Collect fetches from all providers concurrently, merges the results, and
// sorts them by score descending. A failing provider contributes nothing but
// does not fail the collection.
func Collect(ctx context.Context, providers ...Provider) []core.TrendItem {
	results := make([][]core.TrendItem, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			items, err := p.Fetch(ctx)
			if err != nil {
				logger.Warn("trend provider failed", "provider", p.Name(), "error", err.Error())
				return
			}
			results[i] = items
		}(i, p)
	}
	wg.Wait()

	var merged []core.TrendItem
	for _, items := range results {
		merged = append(merged, items...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	return merged
}
