package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

type notionCapture struct {
	mu       sync.Mutex
	headers  []http.Header
	requests []map[string]any
}

func (c *notionCapture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// notionServer answers POST /pages like Notion. Requests at index failAt
// and beyond get a validation error.
func notionServer(t *testing.T, failAt int) (*httptest.Server, *notionCapture) {
	t.Helper()
	c := &notionCapture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		n := len(c.requests)
		c.headers = append(c.headers, r.Header.Clone())
		c.requests = append(c.requests, body)
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if failAt >= 0 && n >= failAt {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"URL is not a property that exists."}`))
			return
		}
		fmt.Fprintf(w, `{"object":"page","id":"page-%d","url":"https://www.notion.so/page-%d"}`, n+1, n+1)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestNotionClient_Export(t *testing.T) {
	srv, got := notionServer(t, -1)
	c := &NotionClient{Token: "secret_abc", DatabaseID: "db-1", BaseURL: srv.URL + "/", HTTPClient: srv.Client()}

	res, err := c.Export(context.Background(), sampleReport(), true)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(res.Pages) != 2 || res.Pages[0].ID != "page-1" || res.Pages[1].URL != "https://www.notion.so/page-2" {
		t.Fatalf("pages = %+v", res.Pages)
	}
	h := got.headers[0]
	if h.Get("Authorization") != "Bearer secret_abc" {
		t.Fatalf("Authorization = %q", h.Get("Authorization"))
	}
	if h.Get("Notion-Version") != notionVersion {
		t.Fatalf("Notion-Version = %q", h.Get("Notion-Version"))
	}
	if !strings.HasPrefix(h.Get("Content-Type"), "application/json") {
		t.Fatalf("Content-Type = %q", h.Get("Content-Type"))
	}

	first := got.requests[0]
	parent := first["parent"].(map[string]any)
	if parent["database_id"] != "db-1" {
		t.Fatalf("parent = %v", parent)
	}
	props := first["properties"].(map[string]any)
	if props["URL"].(map[string]any)["url"] != "https://go.dev/doc/tutorial/generics" {
		t.Fatalf("URL property = %v", props["URL"])
	}
	if s := textOf(props["Title"].(map[string]any)["title"]); s != "Tutorial [part 1]" {
		t.Fatalf("Title = %q", s)
	}
	if s := textOf(props["Query"].(map[string]any)["rich_text"]); s != "go <generics>" {
		t.Fatalf("Query = %q", s)
	}

	children := first["children"].([]any)
	var types []string
	for _, ch := range children {
		types = append(types, ch.(map[string]any)["type"].(string))
	}
	if strings.Join(types, ",") != "paragraph,heading_3,paragraph" {
		t.Fatalf("children types = %v", types)
	}
	summary := children[2].(map[string]any)["paragraph"].(map[string]any)["rich_text"]
	if s := textOf(summary); s != "Generics add type parameters." {
		t.Fatalf("summary = %q", s)
	}

	// The second item has no summary, so only the description is sent.
	if n := len(got.requests[1]["children"].([]any)); n != 1 {
		t.Fatalf("second page children = %d", n)
	}
}

func TestNotionClient_ExportWithoutSummaries(t *testing.T) {
	srv, got := notionServer(t, -1)
	c := &NotionClient{Token: "t", DatabaseID: "db", BaseURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := c.Export(context.Background(), sampleReport(), false); err != nil {
		t.Fatalf("Export: %v", err)
	}
	for i, req := range got.requests {
		raw, _ := json.Marshal(req)
		if strings.Contains(string(raw), "heading_3") || strings.Contains(string(raw), "Generics add type parameters.") {
			t.Fatalf("page %d carries a summary: %s", i, raw)
		}
	}
}

func TestNotionClient_APIError(t *testing.T) {
	srv, got := notionServer(t, 1)
	c := &NotionClient{Token: "t", DatabaseID: "db", BaseURL: srv.URL, HTTPClient: srv.Client()}

	res, err := c.Export(context.Background(), sampleReport(), true)
	var ne *NotionError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotionError, got %v", err)
	}
	if ne.Status != http.StatusBadRequest || ne.Code != "validation_error" || !strings.Contains(ne.Message, "URL") {
		t.Fatalf("error = %+v", ne)
	}
	if len(res.Pages) != 1 || res.Pages[0].ID != "page-1" {
		t.Fatalf("pages before failure = %+v", res.Pages)
	}
	if got.count() != 2 {
		t.Fatalf("requests = %d, want 2", got.count())
	}
}

func TestNotion_NotConfigured(t *testing.T) {
	for _, tc := range []struct {
		name, token, db string
	}{
		{"no token", "", "db"},
		{"no database", "tok", ""},
		{"blank", "  ", " "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Notion(context.Background(), sampleReport(), true, tc.token, tc.db)
			if !errors.Is(err, ErrNotionNotConfigured) {
				t.Fatalf("expected ErrNotionNotConfigured, got %v", err)
			}
		})
	}
	var c *NotionClient
	if _, err := c.Export(context.Background(), sampleReport(), true); !errors.Is(err, ErrNotionNotConfigured) {
		t.Fatalf("nil client: %v", err)
	}
}

func TestRichText_SplitsLongContent(t *testing.T) {
	long := strings.Repeat("é", notionTextLimit*2+5)
	parts := richText(long)
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	var joined strings.Builder
	for _, p := range parts {
		if n := utf8.RuneCountInString(p.Text.Content); n > notionTextLimit {
			t.Fatalf("part has %d runes", n)
		}
		joined.WriteString(p.Text.Content)
	}
	if joined.String() != long {
		t.Fatal("split lost content")
	}
	if parts := richText(""); len(parts) != 1 || parts[0].Text.Content != "" {
		t.Fatalf("empty = %+v", parts)
	}
}

func textOf(v any) string {
	var b strings.Builder
	for _, item := range v.([]any) {
		b.WriteString(item.(map[string]any)["text"].(map[string]any)["content"].(string))
	}
	return b.String()
}
