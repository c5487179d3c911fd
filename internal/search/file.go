package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileProvider loads search results from a local JSON file for offline use.
// The file is an array of objects with "title", "url" and "snippet" keys;
// "link" and "description" are accepted as aliases.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

type fileEntry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read search file: %w", err)
	}
	var raw []fileEntry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode search file: %w", err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Result, 0, len(raw))
	for _, e := range raw {
		r := Result{Title: e.Title, URL: e.URL, Snippet: e.Snippet, Source: f.Name()}
		if r.URL == "" {
			r.URL = e.Link
		}
		if r.Snippet == "" {
			r.Snippet = e.Description
		}
		if r.URL == "" || r.Title == "" {
			continue
		}
		if q == "" || matchesAny(q, r.Title, r.Snippet) {
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return rank(out), nil
}

// matchesAny reports whether any whitespace-separated word of q occurs in one
// of the fields.
func matchesAny(q string, fields ...string) bool {
	for _, w := range strings.Fields(q) {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), w) {
				return true
			}
		}
	}
	return false
}
