// Package session tracks the per-server matching session: the collected
// trend list, the paging cursor over it, accumulated matches, and which
// methodologies have already been turned into ideas.
package session

import (
	"errors"
	"sort"
	"sync"

	"ideaforge/internal/core"
)

// ErrTrendsExhausted is returned when the cursor has moved past the end of
// the collected trend list.
var ErrTrendsExhausted = errors.New("all collected trends have been matched")

// HistoryStore persists generated ideas.
type HistoryStore interface {
	SaveIdea(idea core.VideoIdea) error
	ListIdeas() ([]core.VideoIdea, error)
	DeleteIdea(id string) error
	RestoreIdea(id string) error
	Prune(max int) error
}

// ConsumptionStore persists which methodology keys have produced an idea.
type ConsumptionStore interface {
	MarkConsumed(key string) error
	UnmarkConsumed(key string) error
	ConsumedKeys() (map[string]bool, error)
}

// Manager owns the mutable session state. All methods are safe for
// concurrent use.
type Manager struct {
	mu      sync.Mutex
	trends  []core.TrendItem
	matches []core.MatchResult
	cursor  int

	pageSize   int
	maxHistory int

	history     HistoryStore
	consumption ConsumptionStore
}

// NewManager creates a session manager backed by the given stores.
func NewManager(history HistoryStore, consumption ConsumptionStore, pageSize, maxHistory int) *Manager {
	return &Manager{
		pageSize:    pageSize,
		maxHistory:  maxHistory,
		history:     history,
		consumption: consumption,
	}
}

// SetTrends replaces the trend list and resets the cursor and accumulated
// matches. Called on every trend refresh.
func (m *Manager) SetTrends(trends []core.TrendItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trends = trends
	m.matches = nil
	m.cursor = 0
}

// Trends returns the current trend list.
func (m *Manager) Trends() []core.TrendItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trends
}

// NextTrendPage returns the next page of trends and advances the cursor by
// exactly one page size, whether or not the caller's matching attempt later
// succeeds. hasMore reports whether another page remains after this one.
func (m *Manager) NextTrendPage() (page []core.TrendItem, hasMore bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= len(m.trends) {
		return nil, false, ErrTrendsExhausted
	}

	end := m.cursor + m.pageSize
	if end > len(m.trends) {
		end = len(m.trends)
	}
	page = m.trends[m.cursor:end]
	m.cursor += m.pageSize
	return page, m.cursor < len(m.trends), nil
}

// AddMatches appends a matching batch to the session accumulator.
func (m *Manager) AddMatches(matches []core.MatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = append(m.matches, matches...)
}

// ActiveMatches returns the deduplicated matches whose methodology has not
// yet been consumed, sorted by relevance descending.
func (m *Manager) ActiveMatches() ([]core.MatchResult, error) {
	return m.partition(false)
}

// UsedMatches returns the deduplicated matches whose methodology already
// produced an idea.
func (m *Manager) UsedMatches() ([]core.MatchResult, error) {
	return m.partition(true)
}

// partition rebuilds the dedup map from the full accumulator on every call.
// Duplicate keys keep the entry with the highest relevance score.
func (m *Manager) partition(used bool) ([]core.MatchResult, error) {
	consumed, err := m.consumption.ConsumedKeys()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	best := make(map[string]core.MatchResult)
	order := make([]string, 0, len(m.matches))
	for _, match := range m.matches {
		key := match.Key()
		existing, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = match
			continue
		}
		if match.RelevanceScore > existing.RelevanceScore {
			best[key] = match
		}
	}

	var out []core.MatchResult
	for _, key := range order {
		if consumed[key] == used {
			out = append(out, best[key])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out, nil
}

// FindMatch looks up a deduplicated match by its methodology key.
func (m *Manager) FindMatch(key string) (core.MatchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best core.MatchResult
	found := false
	for _, match := range m.matches {
		if match.Key() != key {
			continue
		}
		if !found || match.RelevanceScore > best.RelevanceScore {
			best = match
			found = true
		}
	}
	return best, found
}

// RecordIdea saves a generated idea, marks its methodology as consumed, and
// prunes history past the retention cap. Consumption is the last step so a
// failed save never burns the methodology.
func (m *Manager) RecordIdea(idea core.VideoIdea) error {
	if err := m.history.SaveIdea(idea); err != nil {
		return err
	}
	if err := m.history.Prune(m.maxHistory); err != nil {
		return err
	}
	return m.consumption.MarkConsumed(idea.Key())
}

// Ideas returns the idea history, newest first.
func (m *Manager) Ideas() ([]core.VideoIdea, error) {
	return m.history.ListIdeas()
}

// DeleteIdea soft-deletes an idea from history.
func (m *Manager) DeleteIdea(id string) error {
	return m.history.DeleteIdea(id)
}

// RestoreIdea undoes a soft delete.
func (m *Manager) RestoreIdea(id string) error {
	return m.history.RestoreIdea(id)
}

// RestoreMatch releases a consumed methodology back into the active pool.
func (m *Manager) RestoreMatch(key string) error {
	return m.consumption.UnmarkConsumed(key)
}
