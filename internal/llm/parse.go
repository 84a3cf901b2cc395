package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadModelOutput marks a model response that did not contain valid
// structured output. Always fatal to the single operation that made the call.
var ErrBadModelOutput = errors.New("model response is not valid structured output")

// ParseFailure carries the raw model text alongside the parse error so the
// route boundary can report what the model actually said. It matches
// ErrBadModelOutput under errors.Is.
type ParseFailure struct {
	Raw string
	Err error
}

func (p *ParseFailure) Error() string {
	return fmt.Sprintf("unparseable model response: %v", p.Err)
}

func (p *ParseFailure) Unwrap() error { return ErrBadModelOutput }

// ParseJSON extracts the JSON payload embedded in a model response and
// unmarshals it into T. No downstream code ever sees unvalidated shape: a
// response that does not contain exactly one well-formed payload yields a
// *ParseFailure.
func ParseJSON[T any](text string) (T, error) {
	var out T

	payload, err := ExtractJSONBlock(text)
	if err != nil {
		return out, &ParseFailure{Raw: text, Err: err}
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&out); err != nil {
		return out, &ParseFailure{Raw: text, Err: err}
	}

	return out, nil
}

// ExtractJSONBlock locates the JSON payload in free-form model text. It
// prefers a fenced code block, then falls back to the first balanced object
// or array literal.
func ExtractJSONBlock(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	// Fenced block first: ```json ... ``` or plain ``` ... ```
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			if candidate := strings.TrimSpace(rest[:end]); candidate != "" {
				return candidate, nil
			}
		}
	}

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object or array found")
	}

	payload, err := balancedSpan(text[start:])
	if err != nil {
		return "", err
	}
	return payload, nil
}

// balancedSpan returns the prefix of s covering one balanced JSON value,
// respecting string literals and escapes.
func balancedSpan(s string) (string, error) {
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[', '{':
			if !inString {
				depth++
			}
		case ']', '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], nil
				}
				if depth < 0 {
					return "", fmt.Errorf("unbalanced JSON at offset %d", i)
				}
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON value")
}
