package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDedupCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dedup",
		Short: "Remove documents whose word set repeats an earlier document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), g.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.server.RemoveDuplicates(cmd.Context())
			out := cmd.OutOrStdout()
			for _, id := range removed {
				fmt.Fprintf(out, "Found duplicate document id %d\n", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Documents left: %d\n", a.server.Stats().Documents)
			return nil
		},
	}
}

func newMatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match <document-id> <query>",
		Short: "Show which query words a document contains",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("document id %q: %w", args[0], err)
			}
			query := strings.Join(args[1:], " ")

			a, err := bootstrap(cmd.Context(), g.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			words, status, err := a.server.MatchDocument(query, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "{ document_id = %d, status = %s, words = [%s] }\n",
				id, status, strings.Join(words, " "))
			return nil
		},
	}
}
