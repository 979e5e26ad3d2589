package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func newEngine(t *testing.T) *indexer.Engine {
	t.Helper()
	cfg := config.Default().Search
	cfg.StopWords = []string{"and", "with"}
	e, err := indexer.NewEngine(cfg)
	require.NoError(t, err)
	texts := []string{
		"funny pet and nasty rat",
		"funny pet with curly hair",
		"funny pet and not very nasty rat",
		"pet with rat and rat and rat",
		"nasty rat with curly hair",
	}
	for i, text := range texts {
		require.NoError(t, e.AddDocument(i+1, text, index.StatusActive, []int{1, 2}))
	}
	return e
}

func TestProcessQueries_PreservesQueryOrder(t *testing.T) {
	e := newEngine(t)
	queries := []string{"nasty rat -not", "not very funny nasty pet", "curly hair", "unknown"}

	for _, mode := range []execution.Mode{execution.Sequential, execution.Parallel} {
		t.Run(mode.String(), func(t *testing.T) {
			results, err := ProcessQueries(context.Background(), e, queries, mode, 3)
			require.NoError(t, err)
			require.Len(t, results, len(queries))
			for i, q := range queries {
				want, err := e.FindTopDocuments(context.Background(), q, execution.Sequential)
				require.NoError(t, err)
				require.Len(t, results[i], len(want), q)
				for j := range want {
					assert.Equal(t, want[j].ID, results[i][j].ID, q)
					assert.Equal(t, want[j].Rating, results[i][j].Rating, q)
					assert.InDelta(t, want[j].Relevance, results[i][j].Relevance, 1e-9, q)
				}
			}
			assert.Empty(t, results[3])
		})
	}
}

func TestProcessQueriesJoined(t *testing.T) {
	e := newEngine(t)
	queries := []string{"curly hair", "nasty rat -not"}

	joined, err := ProcessQueriesJoined(context.Background(), e, queries, execution.Sequential, 0)
	require.NoError(t, err)

	results, err := ProcessQueries(context.Background(), e, queries, execution.Sequential, 0)
	require.NoError(t, err)
	assert.Len(t, joined, len(results[0])+len(results[1]))
	assert.Equal(t, append(results[0], results[1]...), joined)
}

func TestProcessQueries_InvalidQueryFails(t *testing.T) {
	e := newEngine(t)
	_, err := ProcessQueries(context.Background(), e, []string{"curly", "--bad"}, execution.Parallel, 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}
