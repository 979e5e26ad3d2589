package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
)

// Postgres reads documents from a table with the columns
// id integer, text text, status text and ratings integer[].
type Postgres struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func NewPostgres(db *sql.DB, table string) *Postgres {
	if table == "" {
		table = "documents"
	}
	return &Postgres{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "postgres-source", "table", table),
	}
}

func (p *Postgres) query() string {
	return fmt.Sprintf("SELECT id, text, status, ratings FROM %s ORDER BY id", pq.QuoteIdentifier(p.table))
}

func (p *Postgres) Load(ctx context.Context) ([]ingestion.Document, error) {
	rows, err := p.db.QueryContext(ctx, p.query())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", p.table, err)
	}
	defer rows.Close()

	var docs []ingestion.Document
	for rows.Next() {
		var (
			id      int
			text    string
			status  sql.NullString
			ratings []int64
		)
		if err := rows.Scan(&id, &text, &status, pq.Array(&ratings)); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", p.table, err)
		}
		doc, err := toDocument(id, text, status.String, ratings)
		if err != nil {
			p.logger.Warn("skipping row", "doc_id", id, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.table, err)
	}
	p.logger.Info("corpus loaded", "documents", len(docs))
	return docs, nil
}

func toDocument(id int, text, status string, ratings []int64) (ingestion.Document, error) {
	st, err := index.ParseStatus(status)
	if err != nil {
		return ingestion.Document{}, err
	}
	doc := ingestion.Document{
		ID:      id,
		Text:    text,
		Status:  st,
		Ratings: make([]int, len(ratings)),
	}
	for i, r := range ratings {
		doc.Ratings[i] = int(r)
	}
	return doc, nil
}
