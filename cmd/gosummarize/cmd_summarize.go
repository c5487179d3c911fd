package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/extract"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

func newSummarizeCmd(g *globalFlags) *cobra.Command {
	var (
		title   string
		html    bool
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [FILE]",
		Short: "Summarize a local text or HTML file, or standard input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			b, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			text := string(b)
			if html || strings.HasSuffix(strings.ToLower(path), ".html") || strings.HasSuffix(strings.ToLower(path), ".htm") {
				doc := extract.FromHTML(b)
				text = doc.Text
				if title == "" {
					title = doc.Title
				}
			}

			opts := summarize.Options{Depth: cfg.Depth, Complexity: cfg.Complexity}
			res := (&summarize.Summarizer{}).SummarizeDetailed(text, title, opts)
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
			if explain {
				fmt.Fprintf(cmd.ErrOrStderr(), "path=%s sentences=%d target=%d selected=%v\n",
					res.Path, res.Sentences, res.Target, res.Selected)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Page title; its words boost matching sentences")
	cmd.Flags().BoolVar(&html, "html", false, "Treat input as HTML and extract the main text first")
	cmd.Flags().BoolVar(&explain, "explain", false, "Report which sentences were selected on standard error")
	return cmd
}
