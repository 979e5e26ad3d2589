package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/health"
)

const corpus = `
- id: 1
  text: funny pet and nasty rat
  ratings: [7, 2, 7]
- id: 2
  text: funny pet with curly hair
  ratings: [1, 2, 3]
- id: 3
  text: funny pet with curly hair
  ratings: [1, 2]
- id: 4
  text: big cat nasty hair
  status: banned
- id: -5
  text: never indexed
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--log-level", "error", "--stop-words", "and,with"))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestSearchCmd(t *testing.T) {
	path := writeCorpus(t)
	out, errOut, err := run(t, "", "search", "--corpus", path, "curly nasty", "sparrow")
	require.NoError(t, err)

	assert.Contains(t, errOut, "document -5 not indexed")
	assert.Contains(t, out, `Results for query "curly nasty":`)
	assert.Contains(t, out, "document_id = 1")
	assert.Contains(t, out, "document_id = 2")
	assert.NotContains(t, out, "document_id = 4")
	assert.Contains(t, out, "Queries without results: 1")
}

func TestSearchCmd_JSONAndStatus(t *testing.T) {
	path := writeCorpus(t)
	out, _, err := run(t, "", "search", "--corpus", path, "--format", "json", "--status", "banned", "cat")
	require.NoError(t, err)

	var res queryResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 1)
	assert.Equal(t, 4, res.Results[0].ID)
}

func TestSearchCmd_InvalidQueryExitCode(t *testing.T) {
	path := writeCorpus(t)
	out, _, err := run(t, "", "search", "--corpus", path, "pet --rat", "pet")
	require.Error(t, err)
	assert.Equal(t, 64, apperrors.ExitCode(err))
	assert.Contains(t, out, `Error in query "pet --rat"`)
	assert.Contains(t, out, `Results for query "pet":`)
}

func TestSearchCmd_Batch(t *testing.T) {
	path := writeCorpus(t)
	queries := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(queries, []byte("curly\n\nnasty rat\n"), 0o644))

	out, _, err := run(t, "", "search", "--corpus", path, "--batch", "--mode", "parallel", "--file", queries)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Results for query"))
}

func TestDedupCmd(t *testing.T) {
	path := writeCorpus(t)
	out, _, err := run(t, "", "dedup", "--corpus", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found duplicate document id 3")
	assert.Contains(t, out, "Documents left: 3")
}

func TestMatchCmd(t *testing.T) {
	path := writeCorpus(t)
	out, _, err := run(t, "", "match", "--corpus", path, "4", "nasty cat dog")
	require.NoError(t, err)
	assert.Equal(t, "{ document_id = 4, status = banned, words = [cat nasty] }\n", out)

	_, _, err = run(t, "", "match", "--corpus", path, "9", "cat")
	assert.Equal(t, 66, apperrors.ExitCode(err))
}

func TestServeCmd_AnswersStdin(t *testing.T) {
	path := writeCorpus(t)
	out, _, err := run(t, "funny\n-\n\ncurly hair -nasty\n", "serve", "--corpus", path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Results for query"))
	assert.Contains(t, out, `Error in query "-"`)
}

func TestRootCmd_BadConfig(t *testing.T) {
	_, _, err := run(t, "", "search", "--mode", "async", "cat")
	assert.Error(t, err)

	_, _, err = run(t, "", "search", "--source", "s3", "cat")
	assert.Equal(t, 78, apperrors.ExitCode(err))
}

func TestHealthChecks_ReportIndexSize(t *testing.T) {
	cfg := config.Default()
	cfg.Corpus.Path = writeCorpus(t)
	cfg.Search.StopWords = []string{"and", "with"}
	a, err := bootstrap(context.Background(), cfg, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	report := healthChecks(a.server, nil).Run(context.Background())
	assert.Equal(t, health.StatusUp, report.Status)
	require.Contains(t, report.Components, "index")
	assert.True(t, strings.HasPrefix(report.Components["index"].Message, "4 documents"))
	assert.NotContains(t, report.Components, "cache")
}

func TestIngestHandler_RecordsAppMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Corpus.Source = "none"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 0
	a, err := bootstrap(context.Background(), cfg, io.Discard)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.metrics)

	event := ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{ID: 9, Text: "curly cat"}}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, a.ingestHandler()(context.Background(), []byte(event.Key()), value))
	assert.Equal(t, 1, a.server.Stats().Documents)

	rec := httptest.NewRecorder()
	a.metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `searchserver_ingest_events_total{op="add",status="applied"} 1`)
}
