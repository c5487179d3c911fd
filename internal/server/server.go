// Package server exposes the search, summarize, account, history, citation
// and suggestion operations as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/ratelimit"
	"github.com/hyperifyio/gosummarize/internal/store"
)

const (
	shutdownTimeout = 10 * time.Second
	evictInterval   = 5 * time.Minute
)

// Server serves the HTTP API for one App.
type Server struct {
	app     *app.App
	limiter *ratelimit.Limiter
	mux     *http.ServeMux
}

// New builds a Server. A nil limiter disables rate limiting.
func New(a *app.App, limiter *ratelimit.Limiter) *Server {
	s := &Server{app: a, limiter: limiter, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/search", s.limited(s.handleSearch))
	s.mux.HandleFunc("POST /api/summarize", s.limited(s.handleSummarize))
	s.mux.HandleFunc("GET /api/suggest", s.limited(s.handleSuggest))
	s.mux.HandleFunc("GET /api/trending", s.handleTrending)

	s.mux.HandleFunc("POST /api/register", s.limited(s.handleRegister))
	s.mux.HandleFunc("POST /api/login", s.limited(s.handleLogin))
	s.mux.HandleFunc("GET /api/settings", s.authed(s.handleGetSettings))
	s.mux.HandleFunc("PUT /api/settings", s.authed(s.handlePutSettings))
	s.mux.HandleFunc("GET /api/history", s.authed(s.handleHistory))

	s.mux.HandleFunc("GET /api/reports/{id}", s.handleReport)
	s.mux.HandleFunc("GET /api/reports/{id}/export", s.handleExport)
	s.mux.HandleFunc("POST /api/reports/{id}/export", s.limited(s.handlePublish))
	s.mux.HandleFunc("POST /api/feedback", s.limited(s.handleFeedback))

	s.mux.HandleFunc("POST /api/citation", s.limited(s.handleCitation))
	s.mux.HandleFunc("GET /api/citations", s.authed(s.handleCitations))
}

// Handler returns the API with request logging and authentication applied.
func (s *Server) Handler() http.Handler {
	return withRequestLog(s.withUser(s.mux))
}

func (s *Server) store() *store.Store {
	if s.app == nil {
		return nil
	}
	return s.app.Store()
}

// limited applies the per-caller rate limit.
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			if err := s.limiter.Check(rateKey(r)); err != nil {
				writeError(w, r, err)
				return
			}
		}
		h(w, r)
	}
}

// authed rejects anonymous callers.
func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store() == nil {
			writeError(w, r, app.ErrNoStore)
			return
		}
		if userFrom(r.Context()) == nil {
			writeError(w, r, errUnauthorized)
			return
		}
		h(w, r)
	}
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
	}
	stop := make(chan struct{})
	defer close(stop)
	if s.limiter != nil {
		go s.limiter.RunEvictor(evictInterval, stop)
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
