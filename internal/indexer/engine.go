// Package indexer ties the word store, the posting index, the document
// catalog and the ranker together into a single in-memory search engine.
package indexer

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/words"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Engine is an in-memory TF-IDF search index.
//
// Engine performs no locking between calls. Mutations (AddDocument,
// RemoveDocument) must not run concurrently with each other or with any
// read; concurrent reads are safe. Callers that need concurrent access must
// serialize it themselves, as internal/server does.
type Engine struct {
	words      *words.Store
	stopWords  map[words.Handle]struct{}
	postings   *index.PostingIndex
	catalog    *index.Catalog
	ranker     *ranker.Ranker
	workers    int
	generation atomic.Uint64
	logger     *slog.Logger
}

// NewEngine creates an empty engine with the stop words and ranking
// constants of cfg.
func NewEngine(cfg config.SearchConfig) (*Engine, error) {
	e := &Engine{
		words:     words.New(),
		stopWords: make(map[words.Handle]struct{}),
		postings:  index.NewPostingIndex(),
		catalog:   index.NewCatalog(),
		ranker: ranker.New(ranker.Config{
			MaxResults:       cfg.MaxResults,
			RelevanceEpsilon: cfg.RelevanceEpsilon,
			Buckets:          cfg.Buckets,
			Workers:          cfg.Workers,
		}),
		workers: execution.Workers(cfg.Workers),
		logger:  slog.Default().With("component", "indexer"),
	}
	stop := cfg.StopWords
	if len(stop) == 0 && cfg.StopWordsText != "" {
		stop = tokenizer.SplitIntoWords(cfg.StopWordsText)
	}
	if err := tokenizer.ValidateAll(stop); err != nil {
		return nil, apperrors.Newf("new engine", apperrors.ErrInvalidWord, "stop words: %v", err)
	}
	for _, word := range stop {
		if word == "" {
			continue
		}
		h, err := e.words.Intern(word)
		if err != nil {
			return nil, err
		}
		if _, dup := e.stopWords[h]; dup {
			continue
		}
		e.words.Retain(h)
		e.stopWords[h] = struct{}{}
	}
	e.logger.Debug("engine created", "stop_words", len(e.stopWords))
	return e, nil
}

// IsStopWord reports whether word was configured as a stop word.
func (e *Engine) IsStopWord(word string) bool {
	h, ok := e.words.Lookup(word)
	if !ok {
		return false
	}
	_, stop := e.stopWords[h]
	return stop
}

// AddDocument indexes text under id. Every word is validated before the
// engine is touched, so a failed call leaves no trace.
func (e *Engine) AddDocument(id int, text string, status index.Status, ratings []int) error {
	if id < 0 {
		return apperrors.Newf("add document", apperrors.ErrInvalidID, "id %d is negative", id)
	}
	if e.catalog.Contains(id) {
		return apperrors.Newf("add document", apperrors.ErrInvalidID, "id %d already exists", id)
	}
	all := tokenizer.SplitIntoWords(text)
	if err := tokenizer.ValidateAll(all); err != nil {
		return apperrors.Newf("add document", apperrors.ErrInvalidWord, "document %d: %v", id, err)
	}
	counts := make(map[string]int)
	total := 0
	for _, word := range all {
		if e.IsStopWord(word) {
			continue
		}
		counts[word]++
		total++
	}
	if total == 0 {
		return apperrors.Newf("add document", apperrors.ErrInvalidWord,
			"document %d has no indexable words", id)
	}

	freqs := make(index.WordFreqs, len(counts))
	for word, n := range counts {
		h, err := e.words.Intern(word)
		if err != nil {
			return err
		}
		freqs[h] = float64(n) / float64(total)
	}
	for _, h := range e.postings.Insert(id, freqs) {
		e.words.Retain(h)
	}
	e.catalog.Insert(id, index.DocumentData{
		Rating: index.AverageRating(ratings),
		Status: status,
	})
	e.generation.Add(1)

	e.logger.Debug("document indexed",
		"doc_id", id,
		"token_count", total,
		"unique_words", len(freqs),
		"status", status.String(),
	)
	return nil
}

// RemoveDocument deletes id and all its postings. Unknown ids are ignored.
//
// In Parallel mode each word of the document is detached by its own task;
// tasks touch only that word's posting map. Words left without postings are
// only flagged, and are erased from the forward index and the word store
// after all tasks joined.
func (e *Engine) RemoveDocument(id int, mode execution.Mode) {
	if !e.catalog.Contains(id) {
		return
	}
	handles := e.postings.DocumentHandles(id)
	emptied := make([]bool, len(handles))
	// the callback never fails and the context is never cancelled, so
	// every word is detached before the sweep below runs
	_ = execution.ForEach(context.Background(), mode, e.workers, len(handles), func(i int) error {
		emptied[i] = e.postings.DetachWord(handles[i], id)
		return nil
	})

	released := 0
	for i, h := range handles {
		if !emptied[i] {
			continue
		}
		e.postings.DropWord(h)
		if e.words.Release(h) {
			released++
		}
	}
	e.postings.DropDocument(id)
	e.catalog.Remove(id)
	e.generation.Add(1)

	e.logger.Debug("document removed",
		"doc_id", id,
		"mode", mode.String(),
		"words", len(handles),
		"words_released", released,
	)
}

// FindTopDocuments returns the best active documents for rawQuery.
func (e *Engine) FindTopDocuments(ctx context.Context, rawQuery string, mode execution.Mode) ([]ranker.ScoredDoc, error) {
	return e.FindTopDocumentsFunc(ctx, rawQuery, ranker.StatusFilter(index.StatusActive), mode)
}

// FindTopDocumentsByStatus returns the best documents with the given status.
func (e *Engine) FindTopDocumentsByStatus(ctx context.Context, rawQuery string, status index.Status, mode execution.Mode) ([]ranker.ScoredDoc, error) {
	return e.FindTopDocumentsFunc(ctx, rawQuery, ranker.StatusFilter(status), mode)
}

// FindTopDocumentsFunc returns the best documents accepted by filter.
func (e *Engine) FindTopDocumentsFunc(ctx context.Context, rawQuery string, filter ranker.Filter, mode execution.Mode) ([]ranker.ScoredDoc, error) {
	q, err := parser.Parse(rawQuery, e)
	if err != nil {
		return nil, err
	}
	return e.ranker.Rank(ctx, e, q, filter, mode)
}

// MatchDocument returns the plus-words of rawQuery posted for id, in
// ascending order, or no words when one of its minus-words is posted for id.
func (e *Engine) MatchDocument(rawQuery string, id int) ([]string, index.Status, error) {
	data, ok := e.catalog.Get(id)
	if !ok {
		return nil, 0, apperrors.Newf("match document", apperrors.ErrDocumentNotFound, "id %d", id)
	}
	q, err := parser.Parse(rawQuery, e)
	if err != nil {
		return nil, 0, err
	}
	for _, word := range q.MinusWords {
		if e.posted(word, id) {
			return []string{}, data.Status, nil
		}
	}
	matched := make([]string, 0, len(q.PlusWords))
	for _, word := range q.PlusWords {
		if e.posted(word, id) {
			matched = append(matched, word)
		}
	}
	return matched, data.Status, nil
}

func (e *Engine) posted(word string, id int) bool {
	h, ok := e.words.Lookup(word)
	return ok && e.postings.Contains(h, id)
}

// GetWordFrequencies returns the term frequency of every word posted for
// id. The result is empty for unknown ids.
func (e *Engine) GetWordFrequencies(id int) map[string]float64 {
	freqs, ok := e.postings.DocumentWords(id)
	out := make(map[string]float64, len(freqs))
	if !ok {
		return out
	}
	for h, tf := range freqs {
		out[e.words.Word(h)] = tf
	}
	return out
}

// Postings returns the forward posting of word.
func (e *Engine) Postings(word string) (index.Postings, bool) {
	h, ok := e.words.Lookup(word)
	if !ok {
		return nil, false
	}
	return e.postings.Postings(h)
}

// Document returns the catalog data of a live document.
func (e *Engine) Document(id int) (index.DocumentData, bool) {
	return e.catalog.Get(id)
}

// DocumentIDs returns the live ids in ascending order.
func (e *Engine) DocumentIDs() []int {
	return e.catalog.IDs()
}

func (e *Engine) DocumentCount() int {
	return e.catalog.Len()
}

// WordCount returns the number of distinct words stored, stop words
// included.
func (e *Engine) WordCount() int {
	return e.words.Len()
}

// Generation changes whenever the indexed content changes.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

func (e *Engine) RankerConfig() ranker.Config {
	return e.ranker.Config()
}
