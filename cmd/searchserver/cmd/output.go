package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

type queryResult struct {
	Query   string             `json:"query"`
	Results []ranker.ScoredDoc `json:"results"`
	Error   string             `json:"error,omitempty"`
}

func writeResult(w io.Writer, format string, res queryResult) error {
	if format == "json" {
		if res.Results == nil {
			res.Results = []ranker.ScoredDoc{}
		}
		return json.NewEncoder(w).Encode(res)
	}
	if res.Error != "" {
		_, err := fmt.Fprintf(w, "Error in query %q: %s\n", res.Query, res.Error)
		return err
	}
	if _, err := fmt.Fprintf(w, "Results for query %q:\n", res.Query); err != nil {
		return err
	}
	for _, d := range res.Results {
		if _, err := fmt.Fprintf(w, "{ document_id = %d, relevance = %g, rating = %d }\n", d.ID, d.Relevance, d.Rating); err != nil {
			return err
		}
	}
	return nil
}
