// Package ingestion defines the document records loaded into the index and
// the Kafka event schema that adds or removes them at runtime.
package ingestion

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

// Document is one corpus entry.
type Document struct {
	ID      int          `json:"id" yaml:"id"`
	Text    string       `json:"text" yaml:"text"`
	Status  index.Status `json:"status" yaml:"status"`
	Ratings []int        `json:"ratings" yaml:"ratings"`
}

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// IngestEvent is the Kafka payload on the document-ingest topic. Remove
// events only carry the id.
type IngestEvent struct {
	Op         Op        `json:"op"`
	Document   Document  `json:"document"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Key is the partition key of the event; all events of one document share it.
func (e IngestEvent) Key() string {
	return strconv.Itoa(e.Document.ID)
}

func (e IngestEvent) Validate() error {
	switch e.Op {
	case OpAdd, OpRemove:
		return nil
	default:
		return fmt.Errorf("unknown ingest op %q", e.Op)
	}
}

// Failure records a document that could not be indexed.
type Failure struct {
	ID  int
	Err error
}
