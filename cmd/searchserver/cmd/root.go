// Package cmd implements the searchserver command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	corpus     string
	source     string
	mode       string
	logLevel   string
	stopWords  []string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "searchserver",
		Short: "In-memory TF-IDF document search",
		Long: `searchserver indexes a corpus of short documents in memory and ranks
them against queries by TF-IDF relevance.

Query syntax: words separated by spaces; a leading '-' excludes documents
containing the word. Stop words are ignored.

Examples:
  searchserver search --corpus docs.yaml "curly dog -collar"
  searchserver dedup --corpus docs.yaml
  searchserver serve --corpus docs.yaml < queries.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&opts.corpus, "corpus", "", "Corpus file to load (overrides corpus.path)")
	flags.StringVar(&opts.source, "source", "", "Corpus source: file, postgres or none (overrides corpus.source)")
	flags.StringVarP(&opts.mode, "mode", "m", "", "Execution mode: sequential or parallel (overrides search.mode)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringSliceVar(&opts.stopWords, "stop-words", nil, "Stop words (overrides search.stopWords)")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newMatchCmd(opts))
	cmd.AddCommand(newDedupCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newPublishCmd(opts))

	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.corpus != "" {
		cfg.Corpus.Path = o.corpus
		if o.source == "" {
			cfg.Corpus.Source = "file"
		}
	}
	if o.source != "" {
		cfg.Corpus.Source = o.source
	}
	if o.mode != "" {
		cfg.Search.Mode = o.mode
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if cmd.Flags().Changed("stop-words") {
		cfg.Search.StopWords = o.stopWords
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(cfg.Logging)
	o.cfg = cfg
	return nil
}
