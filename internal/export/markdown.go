package export

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/report"
)

// Markdown renders r as a Markdown document: one section per result with its
// link, snippet and, when includeSummaries is set, its summary as a quote.
func Markdown(r report.Report, includeSummaries bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search Results for: %s\n\n", r.Query)
	for _, it := range r.Items {
		fmt.Fprintf(&b, "## [%s](%s)\n\n", escapeLinkText(it.Title), it.URL)
		fmt.Fprintf(&b, "Source: %s\n\n", it.URL)
		if it.Snippet != "" {
			fmt.Fprintf(&b, "%s\n\n", it.Snippet)
		}
		if includeSummaries && it.Summary != "" {
			b.WriteString("### Summary\n\n")
			fmt.Fprintf(&b, "> %s\n\n", it.Summary)
		}
		if it.Citation != "" {
			fmt.Fprintf(&b, "*Cite as:* %s\n\n", it.Citation)
		}
		b.WriteString("---\n\n")
	}
	fmt.Fprintf(&b, "*Generated on: %s*\n\n", r.CreatedAt.UTC().Format(timestampLayout))
	fmt.Fprintf(&b, "*%s*\n", appName)
	return b.String()
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
