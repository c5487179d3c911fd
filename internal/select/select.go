// Package selecter trims a merged result list to the pages worth fetching.
package selecter

import (
	"net/url"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/search"
)

// Options configures selection constraints.
type Options struct {
	MaxTotal  int
	PerDomain int
	// MinSnippetChars drops results whose snippet has fewer than this many
	// non-whitespace characters. Zero disables low-signal filtering.
	MinSnippetChars int
}

// Select walks results in rank order and keeps each one unless its host has
// already reached the per-domain cap, its canonical URL was already kept, or
// its snippet is too short. It stops at MaxTotal. Kept results are
// renumbered from 1.
func Select(results []search.Result, opt Options) []search.Result {
	if opt.MaxTotal <= 0 {
		opt.MaxTotal = 10
	}
	if opt.PerDomain <= 0 {
		opt.PerDomain = 3
	}
	domainCounts := map[string]int{}
	seenURL := map[string]struct{}{}

	out := make([]search.Result, 0, min(opt.MaxTotal, len(results)))
	for _, r := range results {
		if opt.MinSnippetChars > 0 && len(strings.TrimSpace(r.Snippet)) < opt.MinSnippetChars {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Host == "" {
			continue
		}
		canon := canonicalizeURL(u)
		if _, ok := seenURL[canon]; ok {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if domainCounts[host] >= opt.PerDomain {
			continue
		}
		seenURL[canon] = struct{}{}
		domainCounts[host]++
		r.Rank = len(out) + 1
		out = append(out, r)
		if len(out) >= opt.MaxTotal {
			break
		}
	}
	return out
}

func canonicalizeURL(u *url.URL) string {
	u2 := *u
	u2.Fragment = ""
	u2.Host = strings.ToLower(u2.Host)
	if (u2.Scheme == "http" && strings.HasSuffix(u2.Host, ":80")) || (u2.Scheme == "https" && strings.HasSuffix(u2.Host, ":443")) {
		u2.Host = u2.Hostname()
	}
	return u2.String()
}
