// Package app wires search, fetching, extraction, summarization, citation
// and persistence into the search-and-summarize pipeline shared by the CLI
// and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummarize/internal/cache"
	"github.com/hyperifyio/gosummarize/internal/export"
	"github.com/hyperifyio/gosummarize/internal/extract"
	"github.com/hyperifyio/gosummarize/internal/fetch"
	"github.com/hyperifyio/gosummarize/internal/llm"
	"github.com/hyperifyio/gosummarize/internal/report"
	"github.com/hyperifyio/gosummarize/internal/robots"
	"github.com/hyperifyio/gosummarize/internal/search"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/suggest"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

var (
	// ErrNoResults is returned when the search chain finds nothing usable.
	ErrNoResults = errors.New("no search results")
	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrQuotaExceeded is returned when an anonymous client used up its
	// daily searches.
	ErrQuotaExceeded = errors.New("daily search limit reached; sign in for more")
	// ErrNoStore is returned by history operations when no database is
	// configured.
	ErrNoStore = errors.New("history storage is not configured")
)

// pageGetter is the fetch call the pipeline needs. *fetch.Client satisfies
// it; tests substitute fakes.
type pageGetter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// App runs searches. It is safe for concurrent use once constructed.
type App struct {
	cfg        Config
	provider   search.Provider
	fetcher    pageGetter
	extractor  extract.Extractor
	summarizer *summarize.Summarizer
	suggester  suggest.Suggester
	store      *store.Store
	httpCache  *cache.HTTPCache
	notion     *export.NotionClient
	now        func() time.Time
	closed     atomic.Bool
}

// New builds an App from cfg: it prepares the cache directory, opens the
// history database when DBPath is set and assembles the provider chain.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{
		cfg:        cfg,
		extractor:  extract.Auto{},
		summarizer: &summarize.Summarizer{},
		now:        time.Now,
	}
	summarize.Initialize()

	if cfg.CacheDir != "" {
		prepareCache(cfg)
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	httpClient := newHTTPClient(cfg.FetchTimeout * 2)
	a.provider = buildProvider(cfg, httpClient)
	fc := &fetch.Client{
		HTTPClient:        httpClient,
		MaxAttempts:       2,
		PerRequestTimeout: cfg.FetchTimeout,
		Cache:             a.httpCache,
		BypassCache:       cfg.CacheClear,
		AllowPDF:          cfg.EnablePDF,
		RedirectMaxHops:   5,
		MaxConcurrent:     max(1, cfg.FetchConcurrency),
	}
	if !cfg.IgnoreRobots {
		fc.Robots = &robots.Checker{HTTPClient: httpClient, UserAgent: cfg.SearxUA}
	}
	a.fetcher = fc

	a.suggester = suggest.Rules{}
	if cfg.LLMModel != "" {
		var llmCache *cache.LLMCache
		if cfg.CacheDir != "" {
			llmCache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		}
		a.suggester = &suggest.LLM{Client: llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey), Model: cfg.LLMModel, Cache: llmCache}
	}

	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		a.notion = &export.NotionClient{
			Token:      cfg.NotionToken,
			DatabaseID: cfg.NotionDatabaseID,
			BaseURL:    cfg.NotionBaseURL,
			HTTPClient: httpClient,
		}
	}

	if cfg.DBPath != "" {
		st, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
	}
	return a, nil
}

// prepareCache applies the clear, age and size controls. Failures are logged
// and never stop startup.
func prepareCache(cfg Config) {
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		n1, _ := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		n2, _ := cache.PurgeLLMCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		if n1+n2 > 0 {
			log.Debug().Int("http", n1).Int("llm", n2).Msg("purged stale cache entries")
		}
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxCount > 0 {
		_, _ = cache.EnforceHTTPCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount)
		_, _ = cache.EnforceLLMCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount)
	}
}

// buildProvider returns the offline file provider when configured, otherwise
// a chain of every configured network provider in priority order. It returns
// nil when nothing is configured.
func buildProvider(cfg Config, hc *http.Client) search.Provider {
	if strings.TrimSpace(cfg.FileSearchPath) != "" {
		return &search.FileProvider{Path: cfg.FileSearchPath}
	}
	var chain search.Chain
	if cfg.SearxURL != "" {
		chain = append(chain, &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: hc, UserAgent: cfg.SearxUA})
	}
	if cfg.GoogleAPIKey != "" && cfg.GoogleCX != "" {
		chain = append(chain, &search.GoogleCSE{APIKey: cfg.GoogleAPIKey, SearchEngineID: cfg.GoogleCX, HTTPClient: hc})
	}
	if cfg.HTMLSearchURL != "" {
		chain = append(chain, &search.HTMLProvider{BaseURL: cfg.HTMLSearchURL, HTTPClient: hc})
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

// Store returns the history store, or nil when none is configured.
func (a *App) Store() *store.Store { return a.store }

// ExportNotion publishes rep to the configured Notion database, one page per
// result. It returns export.ErrNotionNotConfigured when the token or the
// database id is missing.
func (a *App) ExportNotion(ctx context.Context, rep report.Report, includeSummaries bool) (export.NotionResult, error) {
	res, err := a.notion.Export(ctx, rep, includeSummaries)
	if err != nil {
		return res, err
	}
	log.Info().Str("report", rep.ID).Int("pages", len(res.Pages)).Msg("exported to notion")
	return res, nil
}

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.cfg }

// Close releases the database.
func (a *App) Close() error {
	if a.store == nil || !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	return a.store.Close()
}
