package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/ratelimit"
	"github.com/hyperifyio/gosummarize/internal/report"
)

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		var b strings.Builder
		b.WriteString("<html><head><title>Gophers</title></head><body><article>")
		for i := 0; i < 25; i++ {
			fmt.Fprintf(&b, "<p>Gopher fact %d describes burrows and tunnels dug under the meadow soil.</p>", i)
		}
		b.WriteString("</article></body></html>")
		_, _ = w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, quota int, limiter *ratelimit.Limiter) *Server {
	t.Helper()
	return newTestServerWith(t, quota, limiter, nil)
}

// newTestServerWith lets a test adjust the config before the app is built.
func newTestServerWith(t *testing.T, quota int, limiter *ratelimit.Limiter, mutate func(*app.Config)) *Server {
	t.Helper()
	pages := pageServer(t)
	dir := t.TempDir()
	results := fmt.Sprintf(`[
		{"title": "Gopher burrows", "url": "%[1]s/burrows", "snippet": "How gophers dig"},
		{"title": "Gopher diet", "url": "%[1]s/diet", "snippet": "What gophers eat"}
	]`, pages.URL)
	path := filepath.Join(dir, "results.json")
	if err := os.WriteFile(path, []byte(results), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := app.DefaultConfig()
	cfg.FileSearchPath = path
	cfg.CacheDir = ""
	cfg.DBPath = filepath.Join(dir, "app.db")
	cfg.AnonDailyQuota = quota
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return New(a, limiter)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func register(t *testing.T, s *Server, name string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "correct horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	return decode[authResponse](t, rec).Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestSearch_AnonymousReturnsSummarizedReport(t *testing.T) {
	s := newTestServer(t, 0, nil)
	rec := do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "gopher", "depth": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	rep := decode[report.Report](t, rec)
	if rep.ID == "" || len(rep.Items) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Items[0].Summary == "" || rep.Items[0].Citation == "" {
		t.Fatalf("expected summary and citation: %+v", rep.Items[0])
	}
	if rep.Options.Depth != 2 {
		t.Fatalf("depth override not applied: %+v", rep.Options)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := newTestServer(t, 0, nil)
	cases := []struct {
		name string
		body any
		code int
	}{
		{"empty", map[string]any{"query": "  "}, http.StatusBadRequest},
		{"depth", map[string]any{"query": "gopher", "depth": 9}, http.StatusBadRequest},
		{"complexity", map[string]any{"query": "gopher", "complexity": 0}, http.StatusBadRequest},
		{"unknown field", map[string]any{"query": "gopher", "colour": "red"}, http.StatusBadRequest},
		{"style", map[string]any{"query": "gopher", "citation_style": "harvard"}, http.StatusBadRequest},
		{"too long", map[string]any{"query": strings.Repeat("q", 501)}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/search", "", tc.body)
			if rec.Code != tc.code {
				t.Fatalf("got %d, want %d: %s", rec.Code, tc.code, rec.Body.String())
			}
		})
	}
}

func TestSearch_AnonymousQuota(t *testing.T) {
	s := newTestServer(t, 1, nil)
	body := map[string]any{"query": "gopher", "summaries": false}
	if rec := do(t, s, http.MethodPost, "/api/search", "", body); rec.Code != http.StatusOK {
		t.Fatalf("first search: %d %s", rec.Code, rec.Body.String())
	}
	rec := do(t, s, http.MethodPost, "/api/search", "", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected quota rejection, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "3600" {
		t.Fatalf("quota rejection Retry-After = %q, want 3600", got)
	}
	token := register(t, s, "alice")
	if rec := do(t, s, http.MethodPost, "/api/search", token, body); rec.Code != http.StatusOK {
		t.Fatalf("signed-in search should bypass quota: %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	lim := ratelimit.New(ratelimit.Limit{PerMinute: 1, Burst: 1}, ratelimit.DefaultUser)
	s := newTestServer(t, 0, lim)
	body := map[string]any{"text": "Short text."}
	if rec := do(t, s, http.MethodPost, "/api/summarize", "", body); rec.Code != http.StatusOK {
		t.Fatalf("first call: %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/summarize", "", body)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After 60, got %d %q", rec.Code, rec.Header().Get("Retry-After"))
	}
}

func TestAccountFlow(t *testing.T) {
	s := newTestServer(t, 0, nil)
	token := register(t, s, "bob")

	rec := do(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"username": "BOB", "email": "other@example.com", "password": "correct horse",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate username: got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/login", "", map[string]string{"username": "bob", "password": "wrong password"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/login", "", map[string]string{"username": "bob", "password": "correct horse"})
	if rec.Code != http.StatusOK || decode[authResponse](t, rec).Token != token {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, s, http.MethodGet, "/api/settings", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous settings: got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/settings", "nope", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token: got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPut, "/api/settings", token, map[string]any{"summary_depth": 5, "generate_summaries": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodPut, "/api/settings", token, map[string]any{"summary_depth": 7})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid settings: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/search", token, map[string]any{"query": "gopher"})
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	rep := decode[report.Report](t, rec)
	if rep.Options.Depth != 5 || rep.Summaries {
		t.Fatalf("saved settings not applied: %+v", rep)
	}

	rec = do(t, s, http.MethodGet, "/api/history", token, nil)
	hist := decode[struct {
		History []struct {
			ID    string `json:"id"`
			Query string `json:"query"`
		} `json:"history"`
	}](t, rec)
	if len(hist.History) != 1 || hist.History[0].Query != "gopher" {
		t.Fatalf("unexpected history: %s", rec.Body.String())
	}
}

func TestReportAndExport(t *testing.T) {
	s := newTestServer(t, 0, nil)
	rec := do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "gopher", "summaries": false})
	rep := decode[report.Report](t, rec)

	rec = do(t, s, http.MethodGet, "/api/reports/"+rep.ID, "", nil)
	if rec.Code != http.StatusOK || decode[report.Report](t, rec).Query != "gopher" {
		t.Fatalf("load report: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodGet, "/api/reports/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing report: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/reports/"+rep.ID+"/export?format=md", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("content disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Gopher burrows") {
		t.Fatalf("export missing result title")
	}
	if rec := do(t, s, http.MethodGet, "/api/reports/"+rep.ID+"/export?format=docx", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/feedback", "", map[string]any{"report_id": rep.ID, "rank": 1, "rating": 4})
	if rec.Code != http.StatusCreated {
		t.Fatalf("feedback: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodPost, "/api/feedback", "", map[string]any{"report_id": rep.ID, "rank": 1, "rating": 6})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid rating: got %d", rec.Code)
	}
}

func TestCitations(t *testing.T) {
	s := newTestServer(t, 0, nil)
	src := map[string]any{"title": "Gopher Burrows", "authors": []string{"Jane Doe"}, "url": "https://example.com/g"}
	rec := do(t, s, http.MethodPost, "/api/citation", "", map[string]any{"style": "mla", "source": src})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Gopher Burrows") {
		t.Fatalf("citation: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodPost, "/api/citation", "", map[string]any{"style": "mla", "source": map[string]any{"title": ""}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing title: got %d", rec.Code)
	}

	token := register(t, s, "carol")
	rec = do(t, s, http.MethodPost, "/api/citation", token, map[string]any{"source": src, "save": true})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id"`) {
		t.Fatalf("save citation: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodGet, "/api/citations", token, nil)
	list := decode[struct {
		Citations []struct {
			Title string `json:"title"`
		} `json:"citations"`
	}](t, rec)
	if len(list.Citations) != 1 || list.Citations[0].Title != "Gopher Burrows" {
		t.Fatalf("unexpected citations: %s", rec.Body.String())
	}
}

func TestSuggestAndTrending(t *testing.T) {
	s := newTestServer(t, 0, nil)
	do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "gopher", "summaries": false})

	rec := do(t, s, http.MethodGet, "/api/trending", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "gopher") {
		t.Fatalf("trending: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodGet, "/api/suggest?q=how+to+learn+go", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"suggestions"`) {
		t.Fatalf("suggest: %d %s", rec.Code, rec.Body.String())
	}

	token := register(t, s, "dave")
	do(t, s, http.MethodPut, "/api/settings", token, map[string]any{"enable_suggestions": false})
	rec = do(t, s, http.MethodGet, "/api/suggest?q=how+to+learn+go", token, nil)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"suggestions":[]}` {
		t.Fatalf("disabled suggestions should be empty, got %s", got)
	}
}

func TestSummarizeEndpoint(t *testing.T) {
	s := newTestServer(t, 0, nil)
	rec := do(t, s, http.MethodPost, "/api/summarize", "", map[string]any{"text": "", "depth": 2})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No content to summarize.") {
		t.Fatalf("summarize empty: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodPost, "/api/summarize", "", map[string]any{"text": "x", "complexity": 6})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid complexity: got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.7:5555"
	if got := clientIP(r); got != "198.51.100.7" {
		t.Fatalf("got %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.9" {
		t.Fatalf("got %q", got)
	}
}

func TestSearch_NoProviderIsUnavailable(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.CacheDir = ""
	cfg.DBPath = ""
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	s := New(a, nil)

	rec := do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "golang"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "no search provider configured") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWriteError_RetryAfter(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ratelimit.ErrRateLimited, "60"},
		{app.ErrQuotaExceeded, "3600"},
		{app.ErrEmptyQuery, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if got := rec.Header().Get("Retry-After"); got != tc.want {
			t.Errorf("%v: Retry-After = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestExport_Notion(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
		auth   string
	)
	notion := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		auth = r.Header.Get("Authorization")
		n := len(bodies)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"page","id":"p%d","url":"https://www.notion.so/p%d"}`, n, n)
	}))
	t.Cleanup(notion.Close)

	s := newTestServerWith(t, 0, nil, func(c *app.Config) {
		c.NotionToken = "secret_srv"
		c.NotionDatabaseID = "db-srv"
		c.NotionBaseURL = notion.URL
	})
	rep := decode[report.Report](t, do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "gopher", "summaries": false}))

	rec := do(t, s, http.MethodPost, "/api/reports/"+rep.ID+"/export?format=notion", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("notion export: %d %s", rec.Code, rec.Body.String())
	}
	out := decode[struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Pages   []struct {
			ID string `json:"id"`
		} `json:"pages"`
	}](t, rec)
	if !out.Success || out.Message != "Exported 2 results to Notion" || len(out.Pages) != 2 || out.Pages[1].ID != "p2" {
		t.Fatalf("unexpected response %+v", out)
	}
	mu.Lock()
	defer mu.Unlock()
	if auth != "Bearer secret_srv" || !strings.Contains(bodies[0], `"database_id":"db-srv"`) || !strings.Contains(bodies[0], "Gopher burrows") {
		t.Fatalf("unexpected notion request %q %s", auth, bodies[0])
	}

	if rec := do(t, s, http.MethodGet, "/api/reports/"+rep.ID+"/export?format=notion", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("GET notion: got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/reports/"+rep.ID+"/export?format=pdf", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("POST pdf: got %d", rec.Code)
	}
}

func TestExport_NotionErrors(t *testing.T) {
	s := newTestServer(t, 0, nil)
	rep := decode[report.Report](t, do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "gopher", "summaries": false}))
	rec := do(t, s, http.MethodPost, "/api/reports/"+rep.ID+"/export?format=notion", "", nil)
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "notion export is not configured") {
		t.Fatalf("unconfigured: %d %s", rec.Code, rec.Body.String())
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`))
	}))
	t.Cleanup(failing.Close)
	s = newTestServerWith(t, 0, nil, func(c *app.Config) {
		c.NotionToken = "bad"
		c.NotionDatabaseID = "db"
		c.NotionBaseURL = failing.URL
	})
	rep = decode[report.Report](t, do(t, s, http.MethodPost, "/api/search", "", map[string]any{"query": "gopher", "summaries": false}))
	rec = do(t, s, http.MethodPost, "/api/reports/"+rep.ID+"/export?format=notion", "", nil)
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("notion failure: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodPost, "/api/reports/missing/export?format=notion", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing report: got %d", rec.Code)
	}
}
