// Package parser turns raw query text into validated plus- and minus-words.
package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// StopWords answers whether a word is excluded from matching.
type StopWords interface {
	IsStopWord(word string) bool
}

// Query is a parsed query. Both word lists are sorted and free of
// duplicates, so two parses of the same text always produce the same input
// for scoring and tie-breaking.
type Query struct {
	PlusWords  []string
	MinusWords []string
	RawQuery   string
}

// Empty reports whether the query has nothing to match.
func (q *Query) Empty() bool {
	return len(q.PlusWords) == 0
}

// Parse splits raw on spaces and classifies every token. A leading '-' marks
// a minus-word. Stop words are dropped from both lists.
func Parse(raw string, stop StopWords) (*Query, error) {
	plan := &Query{
		PlusWords:  make([]string, 0),
		MinusWords: make([]string, 0),
		RawQuery:   raw,
	}
	for _, token := range tokenizer.SplitIntoWords(raw) {
		word, minus, err := parseWord(token)
		if err != nil {
			return nil, err
		}
		if stop != nil && stop.IsStopWord(word) {
			continue
		}
		if minus {
			plan.MinusWords = append(plan.MinusWords, word)
		} else {
			plan.PlusWords = append(plan.PlusWords, word)
		}
	}
	plan.PlusWords = sortUnique(plan.PlusWords)
	plan.MinusWords = sortUnique(plan.MinusWords)
	return plan, nil
}

func parseWord(token string) (string, bool, error) {
	if token == "" {
		return "", false, apperrors.New("parse query", apperrors.ErrInvalidQuery, "empty query word")
	}
	minus := false
	if token[0] == '-' {
		if len(token) == 1 {
			return "", false, apperrors.New("parse query", apperrors.ErrInvalidQuery,
				"minus-word has no characters after '-'")
		}
		if token[1] == '-' {
			return "", false, apperrors.Newf("parse query", apperrors.ErrInvalidQuery,
				"minus-word %q starts with '--'", token)
		}
		minus = true
		token = token[1:]
	}
	if err := tokenizer.ValidateWord(token); err != nil {
		return "", false, err
	}
	return token, minus, nil
}

func sortUnique(words []string) []string {
	slices.Sort(words)
	return slices.Compact(words)
}

// String renders the query in a canonical form.
func (q *Query) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(q.PlusWords, " "))
	for _, w := range q.MinusWords {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('-')
		b.WriteString(w)
	}
	return b.String()
}
