// Package dedup removes documents whose set of indexed words repeats that of
// a document with a smaller id.
package dedup

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
)

// Index is the part of the engine duplicate detection needs.
type Index interface {
	DocumentIDs() []int
	GetWordFrequencies(id int) map[string]float64
	RemoveDocument(id int, mode execution.Mode)
}

// FindDuplicates returns, in ascending order, the ids whose word set was
// already seen on a smaller id. Frequencies are ignored.
func FindDuplicates(idx Index) []int {
	seen := make(map[string]struct{})
	var dups []int
	for _, id := range idx.DocumentIDs() {
		key := wordSetKey(idx.GetWordFrequencies(id))
		if _, ok := seen[key]; ok {
			dups = append(dups, id)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// RemoveDuplicates removes every duplicate found by FindDuplicates and
// returns the removed ids. Cancellation stops between removals; the ids
// removed so far are returned with the error.
func RemoveDuplicates(ctx context.Context, idx Index, mode execution.Mode) ([]int, error) {
	logger := slog.Default().With("component", "dedup")
	dups := FindDuplicates(idx)
	removed := make([]int, 0, len(dups))
	for _, id := range dups {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		logger.Info("found duplicate document", "doc_id", id)
		idx.RemoveDocument(id, mode)
		removed = append(removed, id)
	}
	return removed, nil
}

// word validation rejects control bytes, so NUL cannot occur inside a word
func wordSetKey(freqs map[string]float64) string {
	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}
	slices.Sort(words)
	return strings.Join(words, "\x00")
}
