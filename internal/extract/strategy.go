package extract

import (
	"regexp"
	"strings"
)

// textStrategy is one candidate extraction for a string-valued field.
// Chains are statically ordered; the first strategy that produces a
// structurally valid result wins and later ones are never consulted.
type textStrategy struct {
	name string
	fn   func(d *document) (string, bool)
}

func runChain(d *document, chain []textStrategy) (string, string, bool) {
	for _, s := range chain {
		if v, ok := s.fn(d); ok {
			return v, s.name, true
		}
	}
	return "", "", false
}

// document is a pre-split view of one document's text shared by every
// strategy so line scanning happens once.
type document struct {
	text  string
	lower string
	lines []string
}

func newDocument(text string) *document {
	return &document{
		text:  text,
		lower: strings.ToLower(text),
		lines: strings.Split(text, "\n"),
	}
}

// line returns the trimmed line at index i, or "" when out of range.
func (d *document) line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return strings.TrimSpace(d.lines[i])
}

// labelled builds a strategy that captures the first submatch of re.
func labelled(name string, re *regexp.Regexp) textStrategy {
	return textStrategy{name: name, fn: func(d *document) (string, bool) {
		m := re.FindStringSubmatch(d.text)
		if m == nil {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		if v == "" {
			return "", false
		}
		return v, true
	}}
}
