package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/app"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		trending bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent or trending searches from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return errors.New("history needs a database; set --db")
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()
			if trending {
				top, err := a.Store().Trending(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "COUNT\tQUERY")
				for _, q := range top {
					fmt.Fprintf(tw, "%d\t%s\n", q.Count, q.Query)
				}
				return nil
			}
			recent, err := a.Store().RecentQueries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, q := range recent {
				fmt.Fprintln(tw, q)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of queries to show")
	cmd.Flags().BoolVar(&trending, "trending", false, "Show the most frequent queries of the last seven days")
	return cmd
}
