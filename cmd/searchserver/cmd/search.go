package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

type searchOptions struct {
	file   string
	status string
	format string
	batch  bool
}

func newSearchCmd(g *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Load the corpus and answer queries",
		Long: `Load the corpus and print the best documents for each query.

Each argument is one query; --file adds one query per non-empty line.
With --batch the queries are answered concurrently and the first invalid
query aborts the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := args
			if opts.file != "" {
				fromFile, err := readLines(opts.file)
				if err != nil {
					return err
				}
				queries = append(queries, fromFile...)
			}
			if len(queries) == 0 {
				return fmt.Errorf("no queries given")
			}
			status, err := index.ParseStatus(opts.status)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), g.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if opts.batch {
				results, err := a.server.ProcessQueries(cmd.Context(), queries)
				if err != nil {
					return err
				}
				for i, q := range queries {
					if err := writeResult(out, opts.format, queryResult{Query: q, Results: results[i]}); err != nil {
						return err
					}
				}
				return nil
			}

			var firstErr error
			for _, q := range queries {
				docs, err := a.server.Search(cmd.Context(), q, status)
				res := queryResult{Query: q, Results: docs}
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					res = queryResult{Query: q, Error: err.Error()}
				}
				if err := writeResult(out, opts.format, res); err != nil {
					return err
				}
			}
			if opts.format != "json" {
				fmt.Fprintf(out, "Queries without results: %d\n", a.server.NoResultRequests())
			}
			return firstErr
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read queries from a file, one per line")
	cmd.Flags().StringVar(&opts.status, "status", "active", "Only return documents with this status")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.batch, "batch", false, "Answer all queries concurrently")

	return cmd
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	return lines, nil
}
