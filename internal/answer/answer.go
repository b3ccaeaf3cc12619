// Package answer classifies raw agent output into a display hint.
package answer

import (
	"strings"
	"unicode"
)

type Kind string

const (
	KindMetric Kind = "metric"
	KindInfo   Kind = "info"
	KindTable  Kind = "table"
	KindPlain  Kind = "plain"
)

// Hint is the cleaned answer text with the way it should be rendered.
type Hint struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

var fenceReplacer = strings.NewReplacer("```sql", "", "```", "")

// StripFences removes every ```sql and ``` marker and trims surrounding
// whitespace.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(raw))
}

// Normalize never fails. The first matching rule wins.
func Normalize(raw string) Hint {
	text := StripFences(raw)
	return Hint{Kind: classify(text), Text: text}
}

func classify(text string) Kind {
	switch {
	case isNumeric(text):
		return KindMetric
	case mentionsRows(text):
		return KindInfo
	case strings.Contains(text, "|") && strings.Contains(text, "\n"):
		return KindTable
	default:
		return KindPlain
	}
}

func isNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func mentionsRows(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "rows") || strings.Contains(lower, "records")
}
