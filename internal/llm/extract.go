package llm

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoJSON is returned when no complete JSON object can be found in a
// completion.
var ErrNoJSON = errors.New("no valid JSON object found in response")

// ExtractJSON pulls the first balanced top-level JSON object out of a model
// completion. Completions routinely wrap the object in markdown fences or
// surround it with prose, and the object may contain nested braces, so the
// span is located by brace-depth counting rather than first/last index.
func ExtractJSON(text string) ([]byte, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	depth := 0
	start := -1
	for i, ch := range cleaned {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start != -1 {
				span := cleaned[start : i+1]
				if !json.Valid([]byte(span)) {
					return nil, errors.Wrapf(ErrNoJSON, "span is not valid JSON: %s", truncate(span, 100))
				}
				return []byte(span), nil
			}
		}
	}

	return nil, errors.Wrapf(ErrNoJSON, "in %q", truncate(cleaned, 100))
}
