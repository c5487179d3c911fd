// Package search queries web search backends and returns ranked hits for the
// summarization pipeline.
package search

import (
	"context"
	"errors"
)

// ErrNoProvider is returned when a Chain has nothing to query.
var ErrNoProvider = errors.New("search: no provider configured")

// Result represents a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source,omitempty"` // provider name for observability
	// Rank is the 1-based position in the provider's result list.
	Rank int `json:"rank"`
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// rank numbers results in place starting at 1.
func rank(rs []Result) []Result {
	for i := range rs {
		rs[i].Rank = i + 1
	}
	return rs
}
