package ingestion

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

// Loader produces the documents to index at startup.
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}

// Indexer is what documents are added to.
type Indexer interface {
	AddDocument(id int, text string, status index.Status, ratings []int) error
}

// IndexAll adds every document, continuing past failures. The failed ids are
// returned in input order.
func IndexAll(dst Indexer, docs []Document) []Failure {
	logger := slog.Default().With("component", "ingestion")
	var failures []Failure
	for _, doc := range docs {
		if err := dst.AddDocument(doc.ID, doc.Text, doc.Status, doc.Ratings); err != nil {
			logger.Warn("document rejected", "doc_id", doc.ID, "error", err)
			failures = append(failures, Failure{ID: doc.ID, Err: err})
		}
	}
	logger.Info("corpus indexed", "documents", len(docs), "failed", len(failures))
	return failures
}
