// Package titandb loads the seed methodology knowledge base. Seed entries are
// read once and treated as immutable; ai_discovered titans produced during
// matching are never written back here.
package titandb

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"ideaforge/internal/core"
)

//go:embed titan_db.json
var seedData []byte

type dbFile struct {
	Titans []core.Titan `json:"titans"`
}

var (
	loadOnce sync.Once
	loaded   []core.Titan
	loadErr  error
)

// Load returns the seed titans from the embedded knowledge base.
func Load() ([]core.Titan, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(seedData)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}

// LoadFile reads a knowledge base from an override path instead of the
// embedded seed data.
func LoadFile(path string) ([]core.Titan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read titan db %s: %w", path, err)
	}
	return parse(raw)
}

func parse(raw []byte) ([]core.Titan, error) {
	var file dbFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse titan db: %w", err)
	}
	if len(file.Titans) == 0 {
		return nil, fmt.Errorf("titan db contains no entries")
	}
	return file.Titans, nil
}

// FilterByCategory returns seed titans tagged with the given category.
func FilterByCategory(titans []core.Titan, category string) []core.Titan {
	var out []core.Titan
	for _, t := range titans {
		for _, c := range t.Categories {
			if c == category {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Search returns titans whose keywords, categories, methodology, or name
// contain the given keyword (case-insensitive except for the name).
func Search(titans []core.Titan, keyword string) []core.Titan {
	lower := strings.ToLower(keyword)

	var out []core.Titan
	for _, t := range titans {
		if matchesAny(t.Keywords, lower) ||
			matchesAny(t.Categories, lower) ||
			strings.Contains(strings.ToLower(t.Methodology), lower) ||
			strings.Contains(t.Name, keyword) {
			out = append(out, t)
		}
	}
	return out
}

func matchesAny(values []string, lower string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lower) {
			return true
		}
	}
	return false
}
