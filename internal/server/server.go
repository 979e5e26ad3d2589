// Package server makes an indexer.Engine safe to share between query
// handlers and the ingest consumer, and adds request tracking, result
// caching and metrics around it.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/batch"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

type Options struct {
	Mode    execution.Mode
	Window  int
	Workers int
	Cache   *cache.QueryCache
	Metrics *metrics.Metrics
}

// Server serializes mutations of the engine against reads with a RWMutex.
type Server struct {
	mu      sync.RWMutex
	engine  *indexer.Engine
	mode    execution.Mode
	workers int
	queue   *analytics.RequestQueue
	cache   *cache.QueryCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(engine *indexer.Engine, opts Options) *Server {
	s := &Server{
		engine:  engine,
		mode:    opts.Mode,
		workers: opts.Workers,
		cache:   opts.Cache,
		metrics: opts.Metrics,
		logger:  logger.WithComponent("server"),
	}
	queueOpts := []analytics.Option{analytics.WithMode(opts.Mode)}
	if opts.Metrics != nil {
		queueOpts = append(queueOpts, analytics.WithMetrics(opts.Metrics))
	}
	s.queue = analytics.NewRequestQueue(s, opts.Window, queueOpts...)
	s.updateGauges()
	return s
}

func (s *Server) AddDocument(id int, text string, status index.Status, ratings []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.AddDocument(id, text, status, ratings); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocumentsIndexedTotal.Inc()
	}
	s.updateGauges()
	return nil
}

func (s *Server) RemoveDocument(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.engine.DocumentCount()
	s.engine.RemoveDocument(id, s.mode)
	if s.metrics != nil && s.engine.DocumentCount() < before {
		s.metrics.DocumentsRemovedTotal.Inc()
	}
	s.updateGauges()
}

// LoadCorpus indexes everything loader returns and reports the documents
// that were rejected.
func (s *Server) LoadCorpus(ctx context.Context, loader ingestion.Loader) ([]ingestion.Failure, error) {
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ingestion.IndexAll(s, docs), nil
}

// FindTopDocumentsFunc ranks under the read lock. It is the searcher behind
// the request queue.
func (s *Server) FindTopDocumentsFunc(ctx context.Context, rawQuery string, filter ranker.Filter, mode execution.Mode) ([]ranker.ScoredDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.FindTopDocumentsFunc(ctx, rawQuery, filter, mode)
}

// Search answers rawQuery for documents with the given status. Every call is
// counted by the request queue, cache hits included.
func (s *Server) Search(ctx context.Context, rawQuery string, status index.Status) ([]ranker.ScoredDoc, error) {
	start := time.Now()
	var (
		docs []ranker.ScoredDoc
		hit  bool
		err  error
	)
	compute := func() ([]ranker.ScoredDoc, error) {
		return s.queue.AddFindRequestByStatus(ctx, rawQuery, status)
	}
	if s.cache != nil {
		docs, hit, err = s.cache.GetOrCompute(ctx, rawQuery, status.String(), s.engine.Generation(), compute)
		if hit {
			s.queue.Observe(rawQuery, len(docs))
		}
	} else {
		docs, err = compute()
	}
	s.observe(ctx, rawQuery, docs, hit, err, time.Since(start))
	return docs, err
}

func (s *Server) observe(ctx context.Context, rawQuery string, docs []ranker.ScoredDoc, hit bool, err error, elapsed time.Duration) {
	l := s.logger
	if id, ok := logger.QueryID(ctx); ok {
		l = l.With("query_id", id)
	}
	l.Debug("query served",
		"query", rawQuery,
		"results", len(docs),
		"cache_hit", hit,
		"latency_ms", elapsed.Milliseconds(),
		"error", err,
	)
	if s.metrics == nil {
		return
	}
	switch {
	case err != nil:
		s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		return
	case len(docs) == 0:
		s.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	default:
		s.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	s.metrics.SearchLatency.WithLabelValues(s.mode.String()).Observe(elapsed.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(len(docs)))
}

// ProcessQueries answers queries concurrently, bypassing the request queue.
func (s *Server) ProcessQueries(ctx context.Context, queries []string) ([][]ranker.ScoredDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return batch.ProcessQueries(ctx, s.engine, queries, s.mode, s.workers)
}

func (s *Server) MatchDocument(rawQuery string, id int) ([]string, index.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.MatchDocument(rawQuery, id)
}

func (s *Server) RemoveDuplicates(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed, err := dedup.RemoveDuplicates(ctx, s.engine, s.mode)
	if s.metrics != nil {
		s.metrics.DuplicatesRemoved.Add(float64(len(removed)))
		s.metrics.DocumentsRemovedTotal.Add(float64(len(removed)))
	}
	s.updateGauges()
	return removed, err
}

func (s *Server) NoResultRequests() int {
	return s.queue.NoResultRequests()
}

type Stats struct {
	Documents int             `json:"documents"`
	Words     int             `json:"words"`
	Requests  analytics.Stats `json:"requests"`
}

func (s *Server) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Documents: s.engine.DocumentCount(),
		Words:     s.engine.WordCount(),
		Requests:  s.queue.Stats(10),
	}
}

// callers hold s.mu
func (s *Server) updateGauges() {
	if s.metrics == nil {
		return
	}
	s.metrics.IndexDocuments.Set(float64(s.engine.DocumentCount()))
	s.metrics.IndexWords.Set(float64(s.engine.WordCount()))
}
