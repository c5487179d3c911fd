package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/citation"
	"github.com/hyperifyio/gosummarize/internal/export"
	"github.com/hyperifyio/gosummarize/internal/report"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

func newSearchCmd(g *globalFlags) *cobra.Command {
	var (
		noSummaries   bool
		pages         int
		hideWikipedia bool
		format        string
		output        string
	)
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search the web and summarize each result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()

			style, err := citation.ParseStyle(cfg.CitationStyle)
			if err != nil {
				return err
			}
			rep, err := a.Search(cmd.Context(), app.Request{
				Query:         strings.Join(args, " "),
				Options:       summarize.Options{Depth: cfg.Depth, Complexity: cfg.Complexity},
				Summaries:     !noSummaries,
				HideWikipedia: hideWikipedia,
				Pages:         pages,
				CitationStyle: style,
			})
			if err != nil {
				return err
			}

			if strings.EqualFold(format, string(export.FormatNotion)) {
				res, err := a.ExportNotion(cmd.Context(), rep, rep.Summaries)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d results to Notion\n", len(res.Pages))
				for _, p := range res.Pages {
					fmt.Fprintln(cmd.OutOrStdout(), p.URL)
				}
				return nil
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return writeReport(w, rep, format)
		},
	}
	cmd.Flags().BoolVar(&noSummaries, "no-summaries", false, "List results without fetching and summarizing pages")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of result pages, 1 to 10")
	cmd.Flags().BoolVar(&hideWikipedia, "hide-wikipedia", false, "Drop Wikipedia results")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format: md, html, pdf, json or notion")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of standard output")
	return cmd
}

func writeReport(w io.Writer, rep report.Report, format string) error {
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, rep, f, rep.Summaries)
}
