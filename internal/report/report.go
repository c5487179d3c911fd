// Package report defines the result of one search-and-summarize run as it is
// stored, exported and served.
package report

import (
	"time"

	"github.com/hyperifyio/gosummarize/internal/summarize"
)

// Item is one search result with its extracted summary.
type Item struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	URL     string `json:"link"`
	Snippet string `json:"description"`
	Summary string `json:"summary,omitempty"`
	// Citation is the formatted reference in the report's citation style.
	Citation string `json:"citation,omitempty"`
	// Error records why the page could not be fetched or summarized.
	Error string `json:"error,omitempty"`
}

// Report is the outcome of one query.
type Report struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	UserID    int64             `json:"user_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Options   summarize.Options `json:"options"`
	Summaries bool              `json:"summaries"`
	Items     []Item            `json:"results"`
}
