package analytics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// stubSearcher returns one hit for queries starting with "hit".
type stubSearcher struct {
	lastStatus index.Status
}

func (s *stubSearcher) FindTopDocumentsFunc(_ context.Context, raw string, filter ranker.Filter, _ execution.Mode) ([]ranker.ScoredDoc, error) {
	if raw == "bad" {
		return nil, errors.New("invalid query")
	}
	for _, st := range []index.Status{index.StatusActive, index.StatusIrrelevant, index.StatusBanned, index.StatusRemoved} {
		if filter(1, st, 0) {
			s.lastStatus = st
		}
	}
	if strings.HasPrefix(raw, "hit") {
		return []ranker.ScoredDoc{{ID: 1}}, nil
	}
	return nil, nil
}

func TestRequestQueue_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	q := NewRequestQueue(&stubSearcher{}, DefaultWindow)

	for i := 0; i < 1439; i++ {
		_, err := q.AddFindRequest(ctx, "empty request")
		require.NoError(t, err)
	}
	assert.Equal(t, 1439, q.NoResultRequests())

	_, err := q.AddFindRequest(ctx, "hit curly dog")
	require.NoError(t, err)
	assert.Equal(t, 1439, q.NoResultRequests())

	_, err = q.AddFindRequest(ctx, "hit big collar")
	require.NoError(t, err)
	assert.Equal(t, 1438, q.NoResultRequests())

	_, err = q.AddFindRequest(ctx, "hit sparrow")
	require.NoError(t, err)
	assert.Equal(t, 1437, q.NoResultRequests())
}

func TestRequestQueue_FailedQueriesNotRecorded(t *testing.T) {
	q := NewRequestQueue(&stubSearcher{}, 3)
	_, err := q.AddFindRequest(context.Background(), "bad")
	assert.Error(t, err)
	assert.Equal(t, 0, q.NoResultRequests())
	assert.Equal(t, int64(0), q.Stats(5).TotalRequests)
}

func TestRequestQueue_StatusVariant(t *testing.T) {
	s := &stubSearcher{}
	q := NewRequestQueue(s, 3)
	_, err := q.AddFindRequestByStatus(context.Background(), "hit", index.StatusBanned)
	require.NoError(t, err)
	assert.Equal(t, index.StatusBanned, s.lastStatus)
}

func TestRequestQueue_StatsAndMetrics(t *testing.T) {
	m := metrics.New()
	q := NewRequestQueue(&stubSearcher{}, 4, WithMetrics(m))
	ctx := context.Background()
	for _, raw := range []string{"a", "b", "a", "hit x", "a"} {
		_, err := q.AddFindRequest(ctx, raw)
		require.NoError(t, err)
	}

	stats := q.Stats(1)
	assert.Equal(t, int64(5), stats.TotalRequests)
	assert.Equal(t, 4, stats.WindowRequests)
	assert.Equal(t, 3, stats.NoResultRequests)
	assert.Equal(t, []QueryCount{{Query: "a", Count: 2}}, stats.NoResultQueries)
	assert.Equal(t, 1.0, stats.AvgResultsPerHit)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "searchserver_request_window_no_result 3")
}
