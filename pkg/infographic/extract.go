// Package infographic turns free text into a fixed-layout summary image:
// it extracts a handful of key statements, lays them out as numbered cards
// and renders the result as a PNG data URL.
package infographic

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxStatements is the number of cards an infographic holds.
	MaxStatements = 5
	// MinStatementRunes and MaxStatementRunes bound the length of a kept statement.
	MinStatementRunes = 21
	MaxStatementRunes = 149
)

var statementBreak = regexp.MustCompile(`[.!?]+`)

// Extract splits text on runs of sentence punctuation and returns, in order,
// the first MaxStatements trimmed candidates whose length is within bounds.
// The punctuation itself is dropped.
func Extract(text string) []string {
	statements := make([]string, 0, MaxStatements)
	for _, candidate := range statementBreak.Split(text, -1) {
		candidate = strings.TrimSpace(candidate)
		n := utf8.RuneCountInString(candidate)
		if n < MinStatementRunes || n > MaxStatementRunes {
			continue
		}
		statements = append(statements, candidate)
		if len(statements) == MaxStatements {
			break
		}
	}
	return statements
}
