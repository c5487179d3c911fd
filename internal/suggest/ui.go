package suggest

import (
	"strings"
)

// Kind groups suggestions for display.
type Kind string

const (
	KindHistory  Kind = "history"
	KindTrending Kind = "trending"
	KindImproved Kind = "improved"
	KindTopic    Kind = "topic"
	KindExpanded Kind = "expanded"
	KindOperator Kind = "operator"
)

const (
	maxShortQuery = 8
	maxSuggestion = 12
)

// Suggestion is one entry shown to the user.
type Suggestion struct {
	Query       string `json:"query"`
	Description string `json:"description"`
	Kind        Kind   `json:"type"`
}

// Topics suggests related queries built from the query's category patterns
// and its first significant term. Queries with no recognized category get
// none.
func Topics(query string) []Suggestion {
	c, ok := categoryOf(query)
	if !ok {
		return nil
	}
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}
	var out []Suggestion
	for _, p := range c.patterns[:3] {
		q := p + " " + tokens[0]
		if strings.EqualFold(q, strings.TrimSpace(query)) {
			continue
		}
		out = append(out, Suggestion{Query: q, Description: "Related " + c.name + " topic", Kind: KindTopic})
	}
	return out
}

// operatorDescription names the first operator used by s that query lacks.
func operatorDescription(s, query string) string {
	for _, op := range Operators {
		if strings.Contains(s, op.Token) && !strings.Contains(query, op.Token) {
			return op.Description
		}
	}
	return "Advanced search technique"
}

// ForDisplay merges personal history, trending queries and refinements into
// one list in display order with case-insensitive duplicates removed. Queries
// shorter than two characters only get history and trending entries.
func ForDisplay(query string, set Set, personal, trending []Suggestion) []Suggestion {
	var all []Suggestion
	all = append(all, personal...)
	all = append(all, trending...)
	if len(strings.TrimSpace(query)) < 2 {
		return uniqueQueries(all, maxShortQuery)
	}
	for _, q := range set.Improved {
		all = append(all, Suggestion{Query: q, Description: "Better structured search query", Kind: KindImproved})
	}
	all = append(all, Topics(query)...)
	for _, q := range head(set.Expanded, 3) {
		all = append(all, Suggestion{Query: q, Description: "Expanded with related terms", Kind: KindExpanded})
	}
	for _, q := range head(set.Operators, 2) {
		all = append(all, Suggestion{Query: q, Description: operatorDescription(q, query), Kind: KindOperator})
	}
	return uniqueQueries(all, maxSuggestion)
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func uniqueQueries(in []Suggestion, limit int) []Suggestion {
	seen := make(map[string]struct{}, len(in))
	out := make([]Suggestion, 0, min(len(in), limit))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s.Query))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
