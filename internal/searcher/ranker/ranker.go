// Package ranker scores documents against a parsed query with TF-IDF and
// returns the best matches. Scores accumulate either into a plain map or,
// when the query's plus-words are scored in parallel, into a bucketed
// accumulator.
package ranker

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/accumulator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
)

const (
	DefaultMaxResults       = 5
	DefaultRelevanceEpsilon = 1e-6
)

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Filter decides whether a document may contribute to the results.
type Filter func(id int, status index.Status, rating int) bool

// StatusFilter keeps documents whose status equals status.
func StatusFilter(status index.Status) Filter {
	return func(_ int, st index.Status, _ int) bool {
		return st == status
	}
}

// Source is the read-only view of an index the ranker scores against. It
// must not be mutated while a ranking call is in progress.
type Source interface {
	DocumentCount() int
	Postings(word string) (index.Postings, bool)
	Document(id int) (index.DocumentData, bool)
}

// Config holds the ranking constants.
type Config struct {
	MaxResults       int
	RelevanceEpsilon float64
	Buckets          int
	Workers          int
}

func DefaultConfig() Config {
	return Config{
		MaxResults:       DefaultMaxResults,
		RelevanceEpsilon: DefaultRelevanceEpsilon,
		Buckets:          accumulator.DefaultBuckets,
	}
}

type Ranker struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Ranker. Zero fields of cfg take their defaults.
func New(cfg Config) *Ranker {
	defaults := DefaultConfig()
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaults.MaxResults
	}
	if cfg.RelevanceEpsilon <= 0 {
		cfg.RelevanceEpsilon = defaults.RelevanceEpsilon
	}
	if cfg.Buckets <= 0 {
		cfg.Buckets = defaults.Buckets
	}
	return &Ranker{
		cfg:    cfg,
		logger: slog.Default().With("component", "ranker"),
	}
}

func (r *Ranker) Config() Config {
	return r.cfg
}

// Rank scores every matching document and returns at most MaxResults of
// them, best first.
func (r *Ranker) Rank(ctx context.Context, src Source, q *parser.Query, filter Filter, mode execution.Mode) ([]ScoredDoc, error) {
	docs, err := r.FindAll(ctx, src, q, filter, mode)
	if err != nil {
		return nil, err
	}
	r.Sort(docs)
	if len(docs) > r.cfg.MaxResults {
		docs = docs[:r.cfg.MaxResults]
	}
	r.logger.Debug("query ranked",
		"query", q.RawQuery,
		"mode", mode.String(),
		"plus_words", len(q.PlusWords),
		"minus_words", len(q.MinusWords),
		"results", len(docs),
	)
	return docs, nil
}

// FindAll returns every document matching q in ascending id order, unsorted
// by relevance. All plus-words are accumulated before any minus-word
// excludes documents.
func (r *Ranker) FindAll(ctx context.Context, src Source, q *parser.Query, filter Filter, mode execution.Mode) ([]ScoredDoc, error) {
	if filter == nil {
		filter = StatusFilter(index.StatusActive)
	}
	var scores map[int]float64
	switch mode {
	case execution.Parallel:
		acc := accumulator.New(r.cfg.Buckets)
		err := execution.ForEach(ctx, execution.Parallel, r.cfg.Workers, len(q.PlusWords), func(i int) error {
			r.scoreWord(src, q.PlusWords[i], filter, func(id int, delta float64) {
				acc.Access(id, func(score *float64) { *score += delta })
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
		for _, word := range q.MinusWords {
			if postings, ok := src.Postings(word); ok {
				for id := range postings {
					acc.Erase(id)
				}
			}
		}
		scores = acc.Snapshot()
	default:
		scores = make(map[int]float64)
		for _, word := range q.PlusWords {
			r.scoreWord(src, word, filter, func(id int, delta float64) {
				scores[id] += delta
			})
		}
		for _, word := range q.MinusWords {
			if postings, ok := src.Postings(word); ok {
				for id := range postings {
					delete(scores, id)
				}
			}
		}
	}
	return materialize(src, scores), nil
}

func (r *Ranker) scoreWord(src Source, word string, filter Filter, add func(id int, delta float64)) {
	postings, ok := src.Postings(word)
	if !ok || len(postings) == 0 {
		return
	}
	idf := InverseDocumentFreq(src.DocumentCount(), len(postings))
	for id, tf := range postings {
		data, ok := src.Document(id)
		if !ok {
			continue
		}
		if filter(id, data.Status, data.Rating) {
			add(id, tf*idf)
		}
	}
}

func materialize(src Source, scores map[int]float64) []ScoredDoc {
	docs := make([]ScoredDoc, 0, len(scores))
	for id, relevance := range scores {
		data, _ := src.Document(id)
		docs = append(docs, ScoredDoc{
			ID:        id,
			Relevance: relevance,
			Rating:    data.Rating,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// Sort orders docs by descending relevance; relevances closer than the
// configured epsilon are ordered by descending rating. The input order
// breaks any remaining ties.
func (r *Ranker) Sort(docs []ScoredDoc) {
	eps := r.cfg.RelevanceEpsilon
	sort.SliceStable(docs, func(i, j int) bool {
		if math.Abs(docs[i].Relevance-docs[j].Relevance) < eps {
			return docs[i].Rating > docs[j].Rating
		}
		return docs[i].Relevance > docs[j].Relevance
	})
}

// InverseDocumentFreq returns ln(total/containing).
func InverseDocumentFreq(total, containing int) float64 {
	if containing <= 0 || total <= 0 {
		return 0
	}
	return math.Log(float64(total) / float64(containing))
}
