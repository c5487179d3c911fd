package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/citation"
	"github.com/hyperifyio/gosummarize/internal/export"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/suggest"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

const maxQueryLen = 500

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": app.BuildVersion})
}

// settingsFor returns the caller's saved settings, or the defaults for
// anonymous callers.
func settingsFor(r *http.Request) store.Settings {
	if u := userFrom(r.Context()); u != nil {
		return u.Settings
	}
	return store.DefaultSettings()
}

type searchRequest struct {
	Query         string `json:"query"`
	Depth         *int   `json:"depth"`
	Complexity    *int   `json:"complexity"`
	Summaries     *bool  `json:"summaries"`
	HideWikipedia *bool  `json:"hide_wikipedia"`
	Pages         *int   `json:"pages"`
	CitationStyle string `json:"citation_style"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var in searchRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		writeError(w, r, app.ErrEmptyQuery)
		return
	}
	if len(in.Query) > maxQueryLen {
		writeError(w, r, badRequest(fmt.Sprintf("query longer than %d characters", maxQueryLen)))
		return
	}

	st := settingsFor(r)
	req := app.Request{
		Query:         in.Query,
		IP:            clientIP(r),
		Options:       st.SummaryOptions(),
		Summaries:     st.GenerateSummaries,
		HideWikipedia: st.HideWikipedia,
		Pages:         st.SearchPagesLimit,
		CitationStyle: st.CitationStyle,
	}
	if u := userFrom(r.Context()); u != nil {
		req.UserID = u.ID
	} else if err := s.app.CheckQuota(r.Context(), req.IP); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Depth != nil {
		if err := checkLevel("depth", *in.Depth); err != nil {
			writeError(w, r, err)
			return
		}
		req.Options.Depth = *in.Depth
	}
	if in.Complexity != nil {
		if err := checkLevel("complexity", *in.Complexity); err != nil {
			writeError(w, r, err)
			return
		}
		req.Options.Complexity = *in.Complexity
	}
	if in.Summaries != nil {
		req.Summaries = *in.Summaries
	}
	if in.HideWikipedia != nil {
		req.HideWikipedia = *in.HideWikipedia
	}
	if in.Pages != nil {
		req.Pages = *in.Pages
	}
	if in.CitationStyle != "" {
		style, err := citation.ParseStyle(in.CitationStyle)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.CitationStyle = style
	}

	rep, err := s.app.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func checkLevel(name string, v int) error {
	if v < summarize.MinLevel || v > summarize.MaxLevel {
		return badRequest(fmt.Sprintf("%s must be between 1 and 5", name))
	}
	return nil
}

type summarizeRequest struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	Depth      int    `json:"depth"`
	Complexity int    `json:"complexity"`
}

type summarizeResponse struct {
	Summary   string         `json:"summary"`
	Path      summarize.Path `json:"path"`
	Sentences int            `json:"sentences"`
	Selected  []int          `json:"selected"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var in summarizeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	for name, v := range map[string]int{"depth": in.Depth, "complexity": in.Complexity} {
		if v != 0 {
			if err := checkLevel(name, v); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}
	res := s.app.SummarizeText(in.Text, in.Title, summarize.Options{Depth: in.Depth, Complexity: in.Complexity})
	writeJSON(w, http.StatusOK, summarizeResponse{
		Summary:   res.Summary,
		Path:      res.Path,
		Sentences: res.Sentences,
		Selected:  res.Selected,
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var userID int64
	if u := userFrom(r.Context()); u != nil {
		if !u.Settings.EnableSuggestions {
			writeJSON(w, http.StatusOK, map[string]any{"suggestions": []suggest.Suggestion{}})
			return
		}
		userID = u.ID
	}
	list, err := s.app.Suggest(r.Context(), q, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": list})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	top, err := st.Trending(r.Context(), intParam(r, "limit", 5, 50))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if top == nil {
		top = []store.TrendingQuery{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trending": top})
}

// intParam reads a positive integer query parameter capped at hi.
func intParam(r *http.Request, name string, def, hi int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, hi)
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := st.CreateUser(r.Context(), in.Username, in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: u.APIToken, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := st.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: u.APIToken, User: u})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()).Settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	in := u.Settings
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store().UpdateSettings(r.Context(), u.ID, in); err != nil {
		writeError(w, r, err)
		return
	}
	fresh, err := s.store().UserByID(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fresh.Settings)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	hist, err := s.store().History(r.Context(), u.ID, intParam(r, "limit", 20, 100))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if hist == nil {
		hist = []store.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": hist})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	rep, err := st.LoadReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if format == export.FormatNotion {
		writeError(w, r, badRequest("notion export requires POST"))
		return
	}
	rep, err := st.LoadReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	include := includeSummaries(r, rep.Summaries)
	var buf bytes.Buffer
	if err := export.Write(&buf, rep, format, include); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(rep.Query)))
	_, _ = buf.WriteTo(w)
}

// handlePublish sends a stored report to an external service. Only
// format=notion is accepted.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if format != export.FormatNotion {
		writeError(w, r, badRequest("document exports use GET"))
		return
	}
	rep, err := st.LoadReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.app.ExportNotion(r.Context(), rep, includeSummaries(r, rep.Summaries))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Exported %d results to Notion", len(res.Pages)),
		"pages":   res.Pages,
	})
}

// includeSummaries reads the summaries query parameter, falling back to def.
func includeSummaries(r *http.Request, def bool) bool {
	if v := r.URL.Query().Get("summaries"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	st := s.store()
	if st == nil {
		writeError(w, r, app.ErrNoStore)
		return
	}
	var in store.Feedback
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if u := userFrom(r.Context()); u != nil {
		in.UserID = u.ID
	}
	if err := st.SaveFeedback(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

type citationRequest struct {
	Style  string          `json:"style"`
	Source citation.Source `json:"source"`
	Save   bool            `json:"save"`
}

func (s *Server) handleCitation(w http.ResponseWriter, r *http.Request) {
	var in citationRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	style := settingsFor(r).CitationStyle
	if in.Style != "" {
		var err error
		if style, err = citation.ParseStyle(in.Style); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if in.Source.Kind == "" {
		in.Source.Kind = citation.Website
	}
	text, err := citation.Format(in.Source, style)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := map[string]any{"citation": text, "style": style}
	if u := userFrom(r.Context()); u != nil && in.Save {
		id, err := s.store().SaveCitation(r.Context(), u.ID, store.SavedCitation{
			Style: style, Kind: in.Source.Kind, Title: in.Source.Title, Formatted: text,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		out["id"] = id
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	list, err := s.store().Citations(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.SavedCitation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"citations": list})
}
