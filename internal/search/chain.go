package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Chain queries providers in order and returns the first non-empty result
// set. Provider errors are logged and the next provider is tried; the joined
// errors are returned only when every provider failed.
type Chain []Provider

func (c Chain) Name() string { return "chain" }

func (c Chain) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if len(c) == 0 {
		return nil, ErrNoProvider
	}
	var errs []error
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rs, err := p.Search(ctx, query, limit)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("search provider failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(rs) > 0 {
			log.Debug().Str("provider", p.Name()).Int("results", len(rs)).Msg("search provider answered")
			return rs, nil
		}
	}
	if len(errs) == len(c) {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
