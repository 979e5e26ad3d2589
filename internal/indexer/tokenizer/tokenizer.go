// Package tokenizer splits document and query text into words and provides
// the single validation gate every word passes through before it reaches the
// index: no byte in a word may be an ASCII control character.
package tokenizer

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Token is a word together with its ordinal position in the source text.
type Token struct {
	Term     string
	Position int
}

// SplitIntoWords splits text on runs of spaces. Empty segments are dropped.
// Only the space character separates words, so control characters such as
// tabs stay inside a word and are rejected by ValidateWord.
func SplitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
}

// Tokenize returns the words of text with their positions.
func Tokenize(text string) []Token {
	words := SplitIntoWords(text)
	tokens := make([]Token, 0, len(words))
	for pos, word := range words {
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
	}
	return tokens
}

// ValidateWord fails with ErrInvalidWord when word contains a byte below 0x20.
func ValidateWord(word string) error {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return apperrors.Newf("validate", apperrors.ErrInvalidWord,
				"word %q contains control character 0x%02x", word, word[i])
		}
	}
	return nil
}

// ValidateAll checks every word and returns the first failure.
func ValidateAll(words []string) error {
	for _, word := range words {
		if err := ValidateWord(word); err != nil {
			return err
		}
	}
	return nil
}
