package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/server"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// app is a loaded server plus everything that has to be released with it.
type app struct {
	server  *server.Server
	mode    execution.Mode
	metrics *metrics.Metrics
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("shutdown step failed", "error", err)
		}
	}
}

// bootstrap builds the server described by cfg and loads its corpus.
// Rejected documents are reported to errOut by id; they do not fail startup.
func bootstrap(ctx context.Context, cfg *config.Config, errOut io.Writer) (*app, error) {
	mode, err := execution.ParseMode(cfg.Search.Mode)
	if err != nil {
		return nil, err
	}
	engine, err := indexer.NewEngine(cfg.Search)
	if err != nil {
		return nil, err
	}
	a := &app{mode: mode}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	a.metrics = m

	var qc *cache.QueryCache
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		qc = cache.New(client, cfg.Redis.CacheTTL, m)
	}

	a.server = server.New(engine, server.Options{
		Mode:    mode,
		Window:  cfg.RequestQueue.Window,
		Workers: cfg.Search.Workers,
		Cache:   qc,
		Metrics: m,
	})

	if m != nil {
		shutdown := m.StartServer(cfg.Metrics.Port, healthChecks(a.server, qc).Handler())
		a.closers = append(a.closers, func() error {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return shutdown(sctx)
		})
	}

	loader, err := a.loader(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if loader != nil {
		failures, err := a.server.LoadCorpus(ctx, loader)
		if err != nil {
			a.Close()
			return nil, err
		}
		reportFailures(errOut, failures)
	}
	slog.Info("search server ready",
		"documents", engine.DocumentCount(),
		"words", engine.WordCount(),
		"mode", mode.String(),
		"cache", qc != nil,
	)
	return a, nil
}

func (a *app) loader(ctx context.Context, cfg *config.Config) (ingestion.Loader, error) {
	switch cfg.Corpus.Source {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		return source.NewPostgres(pg.DB, cfg.Corpus.Table), nil
	case "none":
		return nil, nil
	default:
		if cfg.Corpus.Path == "" {
			return nil, nil
		}
		return source.NewFile(cfg.Corpus.Path), nil
	}
}

func healthChecks(s *server.Server, qc *cache.QueryCache) *health.Checker {
	checker := health.NewChecker()
	checker.Register("index", func(context.Context) health.ComponentHealth {
		st := s.Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d words", st.Documents, st.Words),
		}
	})
	if qc != nil {
		checker.Register("cache", func(context.Context) health.ComponentHealth {
			if state := qc.BreakerState(); state != resilience.StateClosed {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "breaker " + state.String()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}
	return checker
}

func reportFailures(w io.Writer, failures []ingestion.Failure) {
	for _, f := range failures {
		fmt.Fprintf(w, "document %d not indexed: %v\n", f.ID, f.Err)
	}
}
