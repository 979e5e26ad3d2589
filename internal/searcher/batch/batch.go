// Package batch runs many queries against one index concurrently.
package batch

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

type Searcher interface {
	FindTopDocuments(ctx context.Context, rawQuery string, mode execution.Mode) ([]ranker.ScoredDoc, error)
}

// ProcessQueries answers every query, one query per task. Result i belongs
// to queries[i]. Queries always run concurrently; mode selects how each one
// is ranked. The first failing query cancels the rest.
func ProcessQueries(ctx context.Context, s Searcher, queries []string, mode execution.Mode, workers int) ([][]ranker.ScoredDoc, error) {
	results := make([][]ranker.ScoredDoc, len(queries))
	err := execution.ForEach(ctx, execution.Parallel, workers, len(queries), func(i int) error {
		docs, err := s.FindTopDocuments(ctx, queries[i], mode)
		if err != nil {
			return err
		}
		results[i] = docs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessQueriesJoined is ProcessQueries flattened into one list, in query
// order.
func ProcessQueriesJoined(ctx context.Context, s Searcher, queries []string, mode execution.Mode, workers int) ([]ranker.ScoredDoc, error) {
	results, err := ProcessQueries(ctx, s, queries, mode, workers)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, docs := range results {
		n += len(docs)
	}
	joined := make([]ranker.ScoredDoc, 0, n)
	for _, docs := range results {
		joined = append(joined, docs...)
	}
	return joined, nil
}
