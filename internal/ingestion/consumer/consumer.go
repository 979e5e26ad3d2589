// Package consumer applies document ingest events read from Kafka to the
// index.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Target receives the decoded events. It must be safe to call while queries
// are being served.
type Target interface {
	AddDocument(id int, text string, status index.Status, ratings []int) error
	RemoveDocument(id int)
}

// HandleMessage returns a handler applying each IngestEvent to t.
// Undecodable events and documents the index rejects are logged and
// committed, since redelivering them cannot succeed.
func HandleMessage(t Target, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "ingest-consumer")
	count := func(op ingestion.Op, status string) {
		if m != nil {
			m.IngestEventsTotal.WithLabelValues(string(op), status).Inc()
		}
	}
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err == nil {
			err = event.Validate()
		}
		if err != nil {
			logger.Error("dropping malformed ingest event", "key", string(key), "error", err)
			count("unknown", "malformed")
			return nil
		}

		doc := event.Document
		switch event.Op {
		case ingestion.OpRemove:
			t.RemoveDocument(doc.ID)
			logger.Info("document removed", "doc_id", doc.ID)
		case ingestion.OpAdd:
			if err := t.AddDocument(doc.ID, doc.Text, doc.Status, doc.Ratings); err != nil {
				if apperrors.IsInputError(err) {
					logger.Warn("document rejected", "doc_id", doc.ID, "error", err)
					count(event.Op, "rejected")
					return nil
				}
				count(event.Op, "failed")
				return fmt.Errorf("indexing document %d: %w", doc.ID, err)
			}
			logger.Info("document indexed", "doc_id", doc.ID)
		}
		count(event.Op, "applied")
		return nil
	}
}
