package aggregate

import (
	"testing"

	"github.com/hyperifyio/gosummarize/internal/search"
)

func TestMergeAndNormalize_Dedup_TrimTracking(t *testing.T) {
	groups := [][]search.Result{
		{
			{Title: "A", URL: "https://example.com/page?utm_source=x&utm_medium=y#top", Snippet: "one", Rank: 1},
			{Title: "B", URL: "https://example.com:443/other?id=7&gclid=abc", Snippet: "b", Rank: 2},
		},
		{
			{Title: "A dup", URL: "https://EXAMPLE.com/page", Snippet: "two", Rank: 1},
			{Title: "no url", URL: "", Rank: 2},
			{Title: "C", URL: "https://c.example/", Rank: 3},
		},
	}
	out := MergeAndNormalize(groups)
	if len(out) != 3 {
		t.Fatalf("expected 3 after dedup, got %d: %+v", len(out), out)
	}
	if out[0].URL != "https://example.com/page" || out[0].Title != "A" {
		t.Fatalf("unexpected first result: %+v", out[0])
	}
	if out[1].URL != "https://example.com/other?id=7" {
		t.Fatalf("unexpected normalized url: %q", out[1].URL)
	}
	for i, r := range out {
		if r.Rank != i+1 {
			t.Fatalf("rank %d at position %d", r.Rank, i)
		}
	}
}
