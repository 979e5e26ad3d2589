package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/consumer"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

type serveOptions struct {
	format string
	kafka  bool
}

func newServeCmd(g *globalOptions) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer queries read line by line from stdin",
		Long: `Load the corpus, then answer every line of stdin as a query until EOF
or interrupt. With --kafka (or kafka.enabled) documents are added and
removed from the ingest topic while queries are served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			a, err := bootstrap(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			grp, ctx := errgroup.WithContext(ctx)

			if opts.kafka || cfg.Kafka.Enabled {
				c := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, a.ingestHandler())
				grp.Go(func() error {
					return c.Start(ctx)
				})
				slog.Info("consuming ingest events",
					"topic", cfg.Kafka.Topics.DocumentIngest,
					"group", cfg.Kafka.ConsumerGroup,
				)
			}

			grp.Go(func() error {
				defer cancel()
				return answerLines(ctx, cmd, a, opts.format)
			})
			err = grp.Wait()
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			slog.Info("search server stopped", "queries_without_results", a.server.NoResultRequests())
			return err
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.kafka, "kafka", false, "Consume document ingest events from Kafka")

	return cmd
}

func (a *app) ingestHandler() kafka.MessageHandler {
	return consumer.HandleMessage(a.server, a.metrics)
}

// answerLines stops at EOF or when ctx is done. Invalid queries are reported
// inline and do not stop the loop.
func answerLines(ctx context.Context, cmd *cobra.Command, a *app, format string) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	out := cmd.OutOrStdout()
	served := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading queries: %w", err)
					}
				default:
				}
				return nil
			}
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			served++
			qctx := logger.WithQueryID(ctx, strconv.Itoa(served))
			docs, err := a.server.Search(qctx, line, index.StatusActive)
			res := queryResult{Query: line, Results: docs}
			if err != nil {
				logger.FromContext(qctx).Warn("query rejected", "query", line, "error", err)
				res = queryResult{Query: line, Error: err.Error()}
			}
			if err := writeResult(out, format, res); err != nil {
				return err
			}
		}
	}
}
