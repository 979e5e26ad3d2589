package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

func newPublishCmd(g *globalOptions) *cobra.Command {
	var remove []int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the corpus, or removals, to the ingest topic",
		Long: `Publish every corpus document as an add event on the Kafka ingest topic,
for running 'serve --kafka' instances to pick up. With --remove only
remove events for the given ids are published.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			now := time.Now().UTC()
			var events []ingestion.IngestEvent

			if len(remove) > 0 {
				for _, id := range remove {
					events = append(events, ingestion.IngestEvent{
						Op:         ingestion.OpRemove,
						Document:   ingestion.Document{ID: id},
						IngestedAt: now,
					})
				}
			} else {
				a := &app{}
				defer a.Close()
				loader, err := a.loader(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				if loader == nil {
					return fmt.Errorf("no corpus configured")
				}
				docs, err := loader.Load(cmd.Context())
				if err != nil {
					return err
				}
				for _, doc := range docs {
					events = append(events, ingestion.IngestEvent{
						Op:         ingestion.OpAdd,
						Document:   doc,
						IngestedAt: now,
					})
				}
			}

			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
			defer producer.Close()
			batch := make([]kafka.Event, 0, len(events))
			for _, e := range events {
				batch = append(batch, kafka.Event{Key: e.Key(), Value: e})
			}
			if err := producer.Publish(cmd.Context(), batch...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d events to %s\n", len(batch), cfg.Kafka.Topics.DocumentIngest)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&remove, "remove", nil, "Publish remove events for these document ids")

	return cmd
}
