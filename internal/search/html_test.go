package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const resultsPage = `<html><body>
<div class="g"><a href="/url?q=https://example.com/a&sa=U"><h3>First hit</h3></a><div class="VwiC3b">About the first.</div></div>
<div class="g"><a href="https://www.google.com/preferences"><h3>Settings</h3></a></div>
<div class="g"><a href="https://example.org/b"><h3>Second hit</h3></a></div>
<div class="g"><a href="javascript:void(0)"><h3>Script</h3></a></div>
<div class="g"><a href="https://example.net/c"><h3>Third hit</h3></a><div class="lyLwlc">Third snippet.</div></div>
</body></html>`

func TestParseResultsPage(t *testing.T) {
	got, err := ParseResultsPage(strings.NewReader(resultsPage), "www.google.com", 10)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(got), got)
	}
	if got[0].URL != "https://example.com/a" || got[0].Snippet != "About the first." {
		t.Fatalf("unexpected first result: %+v", got[0])
	}
	if got[1].Snippet != NoDescription {
		t.Fatalf("expected placeholder snippet, got %q", got[1].Snippet)
	}
	if got[2].Rank != 3 {
		t.Fatalf("expected rank 3, got %d", got[2].Rank)
	}
}

func TestParseResultsPage_Limit(t *testing.T) {
	got, err := ParseResultsPage(strings.NewReader(resultsPage), "google.com", 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
}

func TestHTMLProvider_Search(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()
	p := &HTMLProvider{BaseURL: srv.URL + "/search", HTTPClient: srv.Client()}
	got, err := p.Search(context.Background(), "hits", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].Source != "html" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if !strings.HasPrefix(ua, "Mozilla/5.0") {
		t.Fatalf("expected a browser user agent, got %q", ua)
	}
}
