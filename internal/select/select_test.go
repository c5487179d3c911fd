package selecter

import (
	"testing"

	"github.com/hyperifyio/gosummarize/internal/search"
)

func TestSelect_PerDomainCapKeepsRankOrder(t *testing.T) {
	in := []search.Result{
		{Title: "a1", URL: "https://a.com/1", Snippet: "x"},
		{Title: "a2", URL: "https://www.a.com/2", Snippet: "xx"},
		{Title: "a3", URL: "https://a.com/3", Snippet: "xxx"},
		{Title: "b1", URL: "https://b.com/1", Snippet: "xxxx"},
		{Title: "b2", URL: "https://b.com/2", Snippet: "xxxxx"},
	}
	out := Select(in, Options{MaxTotal: 10, PerDomain: 2})
	want := []string{"a1", "a2", "b1", "b2"}
	if len(out) != len(want) {
		t.Fatalf("got %+v", out)
	}
	for i, r := range out {
		if r.Title != want[i] || r.Rank != i+1 {
			t.Fatalf("position %d: %+v", i, r)
		}
	}
}

func TestSelect_MaxTotalAndDedup(t *testing.T) {
	in := []search.Result{
		{Title: "one", URL: "https://x.com/a#frag"},
		{Title: "dup", URL: "https://X.com:443/a"},
		{Title: "two", URL: "https://y.com/b"},
		{Title: "three", URL: "https://z.com/c"},
		{Title: "bad", URL: "not a url"},
	}
	out := Select(in, Options{MaxTotal: 2})
	if len(out) != 2 || out[0].Title != "one" || out[1].Title != "two" {
		t.Fatalf("got %+v", out)
	}
}

func TestSelect_LowSignalFilteringBySnippetLength(t *testing.T) {
	in := []search.Result{
		{Title: "weak", URL: "https://a.com/1", Snippet: "ok"},
		{Title: "strong", URL: "https://a.com/2", Snippet: "this is a longer snippet with substance"},
		{Title: "spaces only", URL: "https://b.com/1", Snippet: "    \t  "},
	}
	out := Select(in, Options{MinSnippetChars: 10})
	if len(out) != 1 || out[0].Title != "strong" {
		t.Fatalf("got %+v", out)
	}
}
