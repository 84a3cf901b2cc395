package llm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"

	"github.com/google/uuid"
)

// fallbackHabits is the always-available pool served when the model is
// unavailable or returns garbage. Shuffled and re-identified on each use.
var fallbackHabits = []core.HabitSuggestion{
	{Person: "Elon Musk", Title: "Five-minute timeboxing", Description: "Slice the day into five-minute blocks to maximize the density of focused time", Category: "Productivity", Difficulty: "Hard"},
	{Person: "Warren Buffett", Title: "The 5/25 rule", Description: "List 25 goals, keep the top five, and actively avoid the other twenty", Category: "Goal setting", Difficulty: "Easy"},
	{Person: "Bill Gates", Title: "Think Week", Description: "Disconnect completely for a week of nothing but reading and thinking", Category: "Thinking", Difficulty: "Medium"},
	{Person: "Steve Jobs", Title: "Radical simplicity", Description: "Strip away everything non-essential until only the core remains", Category: "Design thinking", Difficulty: "Medium"},
	{Person: "Jeff Bezos", Title: "Regret minimization framework", Description: "Decide by asking whether your eighty-year-old self would regret not doing it", Category: "Decision making", Difficulty: "Easy"},
	{Person: "Mark Zuckerberg", Title: "Same-outfit strategy", Description: "Eliminate trivial decisions to save energy for the ones that matter", Category: "Productivity", Difficulty: "Easy"},
	{Person: "Ray Dalio", Title: "Radical transparency", Description: "Expose your own mistakes and weaknesses openly and invite feedback", Category: "Growth", Difficulty: "Hard"},
	{Person: "Tim Ferriss", Title: "Fear setting", Description: "Write out the worst case in concrete detail to see the fear's real size", Category: "Courage", Difficulty: "Medium"},
	{Person: "Oprah Winfrey", Title: "Gratitude journal", Description: "Write five things you are grateful for every day to rewire attention", Category: "Mental care", Difficulty: "Easy"},
	{Person: "Naval Ravikant", Title: "Happiness is a choice", Description: "Treat happiness as an interpretation you pick, not a condition you await", Category: "Philosophy", Difficulty: "Medium"},
	{Person: "David Goggins", Title: "The 40% rule", Description: "When you feel done you are at forty percent of your real capacity", Category: "Mindset", Difficulty: "Hard"},
	{Person: "Shohei Ohtani", Title: "Mandala chart", Description: "Break one central goal into 64 concrete supporting actions", Category: "Goal setting", Difficulty: "Hard"},
	{Person: "Charlie Munger", Title: "Inversion", Description: "Figure out how to fail, then avoid exactly that", Category: "Thinking", Difficulty: "Medium"},
	{Person: "Andrew Huberman", Title: "Morning sunlight protocol", Description: "Get ten minutes of outdoor light soon after waking to anchor the circadian clock", Category: "Health", Difficulty: "Easy"},
	{Person: "Jim Rogers", Title: "Do your own homework", Description: "Never invest in anything you have not researched yourself from primary sources", Category: "Investing", Difficulty: "Medium"},
}

// FallbackHabits returns a shuffled selection of ten static suggestions with
// fresh identifiers. Exported so routes can degrade without a Client.
func FallbackHabits() []core.HabitSuggestion {
	shuffled := make([]core.HabitSuggestion, len(fallbackHabits))
	copy(shuffled, fallbackHabits)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > 10 {
		shuffled = shuffled[:10]
	}
	for i := range shuffled {
		shuffled[i].ID = uuid.NewString()
	}
	return shuffled
}

// SuggestHabits asks the model for ten fresh habit suggestions. Any failure
// falls back to the static pool; this surface never errors.
func (c *Client) SuggestHabits(ctx context.Context) []core.HabitSuggestion {
	// A per-call seed keeps repeated requests from converging on the same
	// famous-person set.
	seed := fmt.Sprintf("%d", time.Now().UnixNano())

	prompt := fmt.Sprintf(`Recommend 10 practicable self-improvement habits, thinking methods, or success principles from famous people worldwide.

Produce a completely fresh combination of people and topics on every request. (Seed: %s)

Rules:
- Be concrete: "five-minute timeboxing", not "work hard".
- Span fields: founders, investors, authors, athletes, scientists, artists, historical figures.
- Difficulty is one of Easy (anyone can start today), Medium (takes effort), Hard (takes strong will).

RESPONSE FORMAT — a JSON array only, no explanation:
[
  {"person": "Warren Buffett", "title": "The 5/25 rule", "description": "...", "category": "Productivity", "difficulty": "Easy"}
]`, seed)

	text, err := c.generateContent(ctx, prompt)
	if err != nil {
		logger.Warn("habit suggestion call failed, serving fallback pool", "error", err.Error())
		return FallbackHabits()
	}

	raw, err := ParseJSON[[]core.HabitSuggestion](text)
	if err != nil || len(raw) == 0 {
		logger.Warn("habit suggestion response unparseable, serving fallback pool")
		return FallbackHabits()
	}

	for i := range raw {
		raw[i].ID = uuid.NewString()
		if raw[i].Description == "" {
			raw[i].Description = raw[i].Title
		}
		if raw[i].Category == "" {
			raw[i].Category = "General"
		}
		switch raw[i].Difficulty {
		case "Easy", "Medium", "Hard":
		default:
			raw[i].Difficulty = "Medium"
		}
	}
	return raw
}
