package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/suggest"
)

const (
	suggestHistory  = 3
	suggestTrending = 3
	suggestPast     = 50
)

// Suggest returns display suggestions for query: the caller's recent
// searches, trending searches and refinements of the query. History lookups
// that fail are logged and left out.
func (a *App) Suggest(ctx context.Context, query string, userID int64) ([]suggest.Suggestion, error) {
	var personal, trending []suggest.Suggestion
	var past []string
	if a.store != nil {
		if userID != 0 {
			if hist, err := a.store.History(ctx, userID, suggestHistory); err == nil {
				for _, h := range hist {
					personal = append(personal, suggest.Suggestion{
						Query:       h.Query,
						Description: "Searched on " + h.CreatedAt.Format("Jan 02"),
						Kind:        suggest.KindHistory,
					})
				}
			} else {
				log.Warn().Err(err).Msg("history lookup failed")
			}
		}
		if top, err := a.store.Trending(ctx, suggestTrending); err == nil {
			trending = trendingSuggestions(top)
		} else {
			log.Warn().Err(err).Msg("trending lookup failed")
		}
		if q, err := a.store.RecentQueries(ctx, suggestPast); err == nil {
			past = q
		}
	}
	set, err := a.suggester.Suggest(ctx, query, past)
	if err != nil {
		return nil, err
	}
	return suggest.ForDisplay(query, set, personal, trending), nil
}

func trendingSuggestions(top []store.TrendingQuery) []suggest.Suggestion {
	out := make([]suggest.Suggestion, 0, len(top))
	for _, t := range top {
		out = append(out, suggest.Suggestion{
			Query:       t.Query,
			Description: fmt.Sprintf("Trending search (%d searches)", t.Count),
			Kind:        suggest.KindTrending,
		})
	}
	return out
}
