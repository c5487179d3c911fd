// Package suggest proposes follow-up and refined search queries.
package suggest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/summarize"
)

// perCategory caps each suggestion list.
const perCategory = 5

// category is a query family recognized by one of its patterns.
type category struct {
	name     string
	patterns []string
}

// categories are matched in order; the first pattern found in the query wins.
var categories = []category{
	{"how to", []string{"how to make", "how to create", "how to find", "how to solve", "how to build"}},
	{"what is", []string{"what is a", "what is the definition of", "what is the meaning of", "what is the purpose of"}},
	{"best", []string{"best ways to", "best tools for", "best practices for", "best examples of", "best alternatives to"}},
	{"comparison", []string{"vs", "versus", "compared to", "differences between", "pros and cons of"}},
	{"reviews", []string{"review of", "top rated", "user reviews", "pros and cons", "ratings for"}},
	{"tutorial", []string{"tutorial on", "guide to", "step by step", "learn", "examples of"}},
	{"problems", []string{"fix", "solve", "troubleshoot", "repair", "issues with", "solutions for"}},
	{"news", []string{"latest", "recent", "update on", "breaking news", "developments in"}},
}

// Operators describes the search operators suggestions may use.
var Operators = []struct{ Token, Description string }{
	{"site:", `Search within a specific website (e.g., "site:example.com")`},
	{"filetype:", `Search for specific file types (e.g., "filetype:pdf")`},
	{"intitle:", "Search for pages with specific words in the title"},
	{"inurl:", "Search for pages with specific words in the URL"},
	{"related:", "Find websites related to a specified domain"},
	{"OR", `Search for either one term or another (e.g., "cats OR dogs")`},
	{`"`, `Exact match (e.g., "exact phrase")`},
	{"-", `Exclude terms (e.g., "cats -dogs")`},
}

var domainRe = regexp.MustCompile(`\w+\.\w+`)

// Set holds refined queries by kind.
type Set struct {
	Improved  []string `json:"improved_queries"`
	Expanded  []string `json:"expanded_queries"`
	Operators []string `json:"operator_suggestions"`
}

func (s Set) empty() bool {
	return len(s.Improved) == 0 && len(s.Expanded) == 0 && len(s.Operators) == 0
}

// Suggester produces refinements of query, optionally informed by past
// queries from other searches.
type Suggester interface {
	Suggest(ctx context.Context, query string, past []string) (Set, error)
}

// Rules is the deterministic Suggester. It never fails.
type Rules struct{}

// Suggest implements Suggester.
func (Rules) Suggest(_ context.Context, query string, past []string) (Set, error) {
	return Improve(query, past), nil
}

// Improve builds rule-based refinements: category patterns prepended to the
// query, an OR of the first two terms, site: for a domain mentioned in the
// query, exact-phrase quoting for three or more terms, and past queries that
// share a term. Each list holds at most five distinct entries.
func Improve(query string, past []string) Set {
	var s Set
	query = strings.TrimSpace(query)
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return s
	}
	lower := strings.ToLower(query)

	if c, ok := categoryOf(query); ok {
		for _, p := range c.patterns[:2] {
			if !strings.Contains(lower, p) {
				s.Improved = append(s.Improved, p+" "+query)
			}
		}
	}

	if len(tokens) >= 2 && !strings.Contains(query, "OR") {
		s.Operators = append(s.Operators, tokens[0]+" OR "+tokens[1])
	}
	if d := domainRe.FindString(query); d != "" {
		rest := strings.Join(strings.Fields(strings.Replace(query, d, "", 1)), " ")
		s.Operators = append(s.Operators, strings.TrimSpace("site:"+d+" "+rest))
	}
	if len(tokens) >= 3 && !strings.Contains(query, `"`) {
		s.Operators = append(s.Operators, fmt.Sprintf("%q", query))
	}

	mine := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		mine[t] = struct{}{}
	}
	for _, p := range past {
		if strings.EqualFold(strings.TrimSpace(p), query) {
			continue
		}
		for _, t := range tokenize(p) {
			if _, ok := mine[t]; ok {
				s.Improved = append(s.Improved, strings.TrimSpace(p))
				break
			}
		}
	}

	s.Improved = dedupe(s.Improved, perCategory)
	s.Expanded = dedupe(s.Expanded, perCategory)
	s.Operators = dedupe(s.Operators, perCategory)
	return s
}

// tokenize keeps significant terms longer than one character.
func tokenize(q string) []string {
	var out []string
	for _, t := range summarize.Terms(q) {
		if len(t) > 1 {
			out = append(out, t)
		}
	}
	return out
}

func categoryOf(query string) (category, bool) {
	lower := strings.ToLower(query)
	for _, c := range categories {
		for _, p := range c.patterns {
			if strings.Contains(lower, p) {
				return c, true
			}
		}
	}
	return category{}, false
}

// dedupe drops case-insensitive repeats and empty entries, keeping order.
func dedupe(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out
}
