package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/gosummarize/internal/aggregate"
	"github.com/hyperifyio/gosummarize/internal/citation"
	"github.com/hyperifyio/gosummarize/internal/report"
	"github.com/hyperifyio/gosummarize/internal/search"
	sel "github.com/hyperifyio/gosummarize/internal/select"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

// resultsPerPage is how many hits one search page stands for.
const resultsPerPage = 10

// Request is one search-and-summarize call.
type Request struct {
	Query   string
	UserID  int64
	IP      string
	Options summarize.Options
	// Summaries enables fetching and summarizing each result page.
	Summaries     bool
	HideWikipedia bool
	// Pages is how many result pages to request, 1..10. Zero means 1.
	Pages         int
	CitationStyle citation.Style
}

// Search runs the pipeline: search chain, merge, domain filter, selection,
// concurrent fetch and extraction, summarization, citations and, when a
// store is configured, persistence. Items keep search rank order. A failed
// page keeps its item with Error set and an empty summary.
func (a *App) Search(ctx context.Context, req Request) (report.Report, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return report.Report{}, ErrEmptyQuery
	}
	if a.provider == nil {
		return report.Report{}, search.ErrNoProvider
	}
	opts := req.Options.Normalized()
	if req.Options.Depth == 0 && a.cfg.Depth != 0 {
		opts.Depth = a.cfg.Depth
	}
	if req.Options.Complexity == 0 && a.cfg.Complexity != 0 {
		opts.Complexity = a.cfg.Complexity
	}
	style := req.CitationStyle
	if style == "" {
		style, _ = citation.ParseStyle(a.cfg.CitationStyle)
	}
	pages := min(max(req.Pages, 1), 10)

	started := a.now()
	results, err := a.provider.Search(ctx, query, pages*resultsPerPage)
	if err != nil && len(results) == 0 {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, search.ErrNoProvider) {
			return report.Report{}, err
		}
		return report.Report{}, fmt.Errorf("%w: %v", ErrNoResults, err)
	}
	merged := aggregate.MergeAndNormalize([][]search.Result{results})
	policy := search.DomainPolicy{
		Allowlist: a.cfg.DomainAllowlist,
		Denylist:  append([]string{}, a.cfg.DomainDenylist...),
	}
	if req.HideWikipedia {
		policy.Denylist = append(policy.Denylist, search.WikipediaHosts...)
	}
	filtered := policy.Filter(merged)
	maxTotal := a.cfg.MaxResults
	if maxTotal <= 0 {
		maxTotal = defaultMaxResults
	}
	selected := sel.Select(filtered, sel.Options{
		MaxTotal:        maxTotal * pages,
		PerDomain:       a.cfg.PerDomainCap,
		MinSnippetChars: a.cfg.MinSnippetChars,
	})
	if len(selected) == 0 {
		return report.Report{}, ErrNoResults
	}

	items := make([]report.Item, len(selected))
	for i, r := range selected {
		items[i] = report.Item{Rank: i + 1, Title: r.Title, URL: r.URL, Snippet: r.Snippet}
		if c, err := citation.Format(citation.FromResult(r, started), style); err == nil {
			items[i].Citation = c
		}
	}
	if req.Summaries {
		if err := a.summarizeItems(ctx, items, opts); err != nil {
			return report.Report{}, err
		}
	}

	rep := report.Report{
		ID:        uuid.NewString(),
		Query:     query,
		UserID:    req.UserID,
		CreatedAt: started.UTC(),
		Options:   opts,
		Summaries: req.Summaries,
		Items:     items,
	}
	log.Info().Str("query", query).Int("results", len(items)).Bool("summaries", req.Summaries).
		Dur("took", a.now().Sub(started)).Msg("search complete")

	if a.store != nil {
		if _, err := a.store.SaveReport(ctx, rep, req.IP); err != nil {
			log.Warn().Err(err).Str("id", rep.ID).Msg("saving report failed")
		}
	}
	return rep, nil
}

// summarizeItems fetches, extracts and summarizes every item concurrently,
// bounded by FetchConcurrency. Per-page failures are recorded on the item.
func (a *App) summarizeItems(ctx context.Context, items []report.Item, opts summarize.Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.FetchConcurrency))
	for i := range items {
		it := &items[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary, err := a.summarizePage(gctx, it.URL, it.Title, opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("url", it.URL).Msg("page skipped")
				it.Error = err.Error()
				return nil
			}
			it.Summary = summary
			return nil
		})
	}
	return g.Wait()
}

// summarizePage fetches one URL and summarizes its readable text. The page
// title wins over the search title as the relevance anchor when present.
func (a *App) summarizePage(ctx context.Context, url, title string, opts summarize.Options) (string, error) {
	body, contentType, err := a.fetcher.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	doc, err := a.extractor.Extract(body, contentType)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	text := doc.Text
	if limit := a.cfg.PerSourceChars; limit > 0 && len(text) > limit {
		text = truncateUTF8(text, limit)
	}
	if t := strings.TrimSpace(doc.Title); t != "" {
		title = t
	}
	return a.summarizer.Summarize(text, title, opts), nil
}

// SummarizeText runs the summarizer on caller-supplied text.
func (a *App) SummarizeText(text, title string, opts summarize.Options) summarize.Result {
	return a.summarizer.SummarizeDetailed(text, title, opts)
}

// CheckQuota returns ErrQuotaExceeded when ip has used its anonymous daily
// searches. Without a store or quota every search is allowed.
func (a *App) CheckQuota(ctx context.Context, ip string) error {
	if a.store == nil || a.cfg.AnonDailyQuota <= 0 {
		return nil
	}
	n, err := a.store.CountSearchesSince(ctx, ip, a.now().Add(-24*time.Hour))
	if err != nil {
		return err
	}
	if n >= a.cfg.AnonDailyQuota {
		return ErrQuotaExceeded
	}
	return nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
