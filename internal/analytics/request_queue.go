// Package analytics tracks how many of the most recent search requests came
// back empty.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// DefaultWindow is one request per minute of a day.
const DefaultWindow = 1440

// Searcher is the query side of the index.
type Searcher interface {
	FindTopDocumentsFunc(ctx context.Context, rawQuery string, filter ranker.Filter, mode execution.Mode) ([]ranker.ScoredDoc, error)
}

type request struct {
	query   string
	results int
}

// RequestQueue forwards queries to a Searcher and remembers the outcome of
// the last Window of them. Each request advances time by one tick. Failed
// queries are not recorded.
type RequestQueue struct {
	searcher Searcher
	window   int
	mode     execution.Mode
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu        sync.Mutex
	requests  []request
	head      int
	noResults int
	total     int64
}

type Option func(*RequestQueue)

// WithMetrics mirrors the no-result count into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *RequestQueue) { q.metrics = m }
}

// WithMode sets the execution mode used for every forwarded query.
func WithMode(mode execution.Mode) Option {
	return func(q *RequestQueue) { q.mode = mode }
}

func NewRequestQueue(searcher Searcher, window int, opts ...Option) *RequestQueue {
	if window <= 0 {
		window = DefaultWindow
	}
	q := &RequestQueue{
		searcher: searcher,
		window:   window,
		requests: make([]request, 0, window),
		logger:   slog.Default().With("component", "request-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *RequestQueue) AddFindRequest(ctx context.Context, rawQuery string) ([]ranker.ScoredDoc, error) {
	return q.AddFindRequestFunc(ctx, rawQuery, ranker.StatusFilter(index.StatusActive))
}

func (q *RequestQueue) AddFindRequestByStatus(ctx context.Context, rawQuery string, status index.Status) ([]ranker.ScoredDoc, error) {
	return q.AddFindRequestFunc(ctx, rawQuery, ranker.StatusFilter(status))
}

func (q *RequestQueue) AddFindRequestFunc(ctx context.Context, rawQuery string, filter ranker.Filter) ([]ranker.ScoredDoc, error) {
	docs, err := q.searcher.FindTopDocumentsFunc(ctx, rawQuery, filter, q.mode)
	if err != nil {
		return nil, err
	}
	q.Observe(rawQuery, len(docs))
	return docs, nil
}

// Observe records a request answered without going through the queue, such
// as one served from a result cache.
func (q *RequestQueue) Observe(rawQuery string, results int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r := request{query: rawQuery, results: results}
	if len(q.requests) < q.window {
		q.requests = append(q.requests, r)
	} else {
		if q.requests[q.head].results == 0 {
			q.noResults--
		}
		q.requests[q.head] = r
		q.head = (q.head + 1) % q.window
	}
	if results == 0 {
		q.noResults++
		q.logger.Debug("query returned no results", "query", rawQuery)
	}
	q.total++
	if q.metrics != nil {
		q.metrics.NoResultRequests.Set(float64(q.noResults))
	}
}

// NoResultRequests counts the empty results among the last Window requests.
func (q *RequestQueue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResults
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

type Stats struct {
	TotalRequests    int64        `json:"total_requests"`
	WindowRequests   int          `json:"window_requests"`
	NoResultRequests int          `json:"no_result_requests"`
	NoResultQueries  []QueryCount `json:"no_result_queries"`
	AvgResultsPerHit float64      `json:"avg_results_per_hit"`
}

// Stats summarizes the current window; NoResultQueries lists the n most
// frequent queries that came back empty.
func (q *RequestQueue) Stats(n int) Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := Stats{
		TotalRequests:    q.total,
		WindowRequests:   len(q.requests),
		NoResultRequests: q.noResults,
	}
	empty := make(map[string]int64)
	hits, returned := 0, 0
	for _, r := range q.requests {
		if r.results == 0 {
			empty[r.query]++
			continue
		}
		hits++
		returned += r.results
	}
	if hits > 0 {
		stats.AvgResultsPerHit = float64(returned) / float64(hits)
	}
	stats.NoResultQueries = topN(empty, n)
	return stats
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if n >= 0 && len(result) > n {
		result = result[:n]
	}
	return result
}
