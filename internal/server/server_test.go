package server

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, pkgredis.ErrMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type sliceLoader []ingestion.Document

func (l sliceLoader) Load(context.Context) ([]ingestion.Document, error) { return l, nil }

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	cfg := config.Default().Search
	cfg.StopWords = []string{"and", "with"}
	e, err := indexer.NewEngine(cfg)
	require.NoError(t, err)
	s := New(e, opts)
	failures, err := s.LoadCorpus(context.Background(), sliceLoader{
		{ID: 1, Text: "funny pet and nasty rat", Ratings: []int{7, 2, 7}},
		{ID: 2, Text: "funny pet with curly hair", Ratings: []int{1, 2}},
		{ID: 3, Text: "big cat fancy collar", Status: index.StatusBanned},
		{ID: -4, Text: "rejected"},
	})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, -4, failures[0].ID)
	return s
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestServer_SearchCountsRequests(t *testing.T) {
	m := metrics.New()
	s := newServer(t, Options{Metrics: m, Mode: execution.Parallel})
	ctx := context.Background()

	docs, err := s.Search(ctx, "curly cat", index.StatusActive)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].ID)

	docs, err = s.Search(ctx, "curly cat", index.StatusBanned)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0].ID)

	_, err = s.Search(ctx, "sparrow", index.StatusActive)
	require.NoError(t, err)
	_, err = s.Search(ctx, "--", index.StatusActive)
	assert.Error(t, err)

	assert.Equal(t, 1, s.NoResultRequests())
	body := scrape(t, m)
	assert.Contains(t, body, `searchserver_search_queries_total{result_type="hit"} 2`)
	assert.Contains(t, body, `searchserver_search_queries_total{result_type="zero_result"} 1`)
	assert.Contains(t, body, `searchserver_search_queries_total{result_type="error"} 1`)
	assert.Contains(t, body, "searchserver_index_documents 3")
}

func TestServer_CacheHitsStillCounted(t *testing.T) {
	store := &memStore{data: make(map[string][]byte)}
	qc := cache.New(store, time.Minute, nil)
	s := newServer(t, Options{Cache: qc})
	ctx := context.Background()

	first, err := s.Search(ctx, "sparrow", index.StatusActive)
	require.NoError(t, err)
	second, err := s.Search(ctx, "sparrow", index.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	hits, _ := qc.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, 2, s.NoResultRequests())
}

func TestServer_CacheInvalidatedByMutation(t *testing.T) {
	qc := cache.New(&memStore{data: make(map[string][]byte)}, time.Minute, nil)
	s := newServer(t, Options{Cache: qc})
	ctx := context.Background()

	docs, err := s.Search(ctx, "sparrow", index.StatusActive)
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.NoError(t, s.AddDocument(10, "sparrow eugene", index.StatusActive, nil))
	docs, err = s.Search(ctx, "sparrow", index.StatusActive)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 10, docs[0].ID)

	s.RemoveDocument(10)
	docs, err = s.Search(ctx, "sparrow", index.StatusActive)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestServer_RemoveDuplicates(t *testing.T) {
	m := metrics.New()
	s := newServer(t, Options{Metrics: m})
	require.NoError(t, s.AddDocument(5, "rat nasty pet funny funny", index.StatusActive, nil))

	removed, err := s.RemoveDuplicates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{5}, removed)
	assert.Equal(t, 3, s.Stats().Documents)
	assert.Contains(t, scrape(t, m), "searchserver_duplicates_removed_total 1")
}

func TestServer_MatchAndBatch(t *testing.T) {
	s := newServer(t, Options{})
	words, status, err := s.MatchDocument("fancy collar -dog", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"collar", "fancy"}, words)
	assert.Equal(t, index.StatusBanned, status)

	results, err := s.ProcessQueries(context.Background(), []string{"funny", "curly", "cat"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, results[0], 2)
	assert.Len(t, results[1], 1)
	assert.Empty(t, results[2], "banned documents are not returned by default")
}

func TestServer_ConcurrentReadersAndWriters(t *testing.T) {
	s := newServer(t, Options{Mode: execution.Parallel})
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := 100 + w*100 + i
				_ = s.AddDocument(id, fmt.Sprintf("writer%d doc%d funny", w, i), index.StatusActive, nil)
				if i%3 == 0 {
					s.RemoveDocument(id)
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				docs, err := s.Search(ctx, "funny -curly", index.StatusActive)
				assert.NoError(t, err)
				assert.LessOrEqual(t, len(docs), 5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3+4*33, s.Stats().Documents)
}
