package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummarize/internal/cache"
	"github.com/hyperifyio/gosummarize/internal/llm"
)

const systemMessage = "You refine web search queries. Respond with strict JSON only, no narration. " +
	"The JSON schema is {\"improved_queries\": string[0..5], \"expanded_queries\": string[0..5], \"operator_suggestions\": string[0..5]}. " +
	"Improved queries restate the question more precisely. Expanded queries add closely related terms or synonyms. " +
	"Operator suggestions use search operators such as site:, filetype:, OR, quotes or -term."

// LLM asks a chat model for refinements and merges them with the rule-based
// ones. Any model failure falls back to the rules alone.
type LLM struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
}

// Suggest implements Suggester.
func (l *LLM) Suggest(ctx context.Context, query string, past []string) (Set, error) {
	rules := Improve(query, past)
	if strings.TrimSpace(query) == "" {
		return rules, nil
	}
	got, err := l.ask(ctx, query)
	if err != nil {
		log.Debug().Err(err).Str("stage", "suggest").Msg("model suggestions unavailable; using rules")
		return rules, nil
	}
	return Set{
		Improved:  dedupe(append(got.Improved, rules.Improved...), perCategory),
		Expanded:  dedupe(append(got.Expanded, rules.Expanded...), perCategory),
		Operators: dedupe(append(rules.Operators, got.Operators...), perCategory),
	}, nil
}

func (l *LLM) ask(ctx context.Context, query string) (Set, error) {
	if l == nil || l.Client == nil || l.Model == "" {
		return Set{}, llm.ErrNotConfigured
	}
	user := "Query: " + strings.TrimSpace(query)
	key := cache.KeyFrom(l.Model, systemMessage+"\n\n"+user)
	if l.Cache != nil {
		if raw, ok, _ := l.Cache.Get(ctx, key); ok {
			var s Set
			if err := json.Unmarshal(raw, &s); err == nil {
				return s, nil
			}
		}
	}
	raw, err := llm.Complete(ctx, l.Client, l.Model, systemMessage, user)
	if err != nil {
		return Set{}, fmt.Errorf("suggest call: %w", err)
	}
	var s Set
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Set{}, fmt.Errorf("parse suggest json: %w", err)
	}
	s.Improved = dedupe(s.Improved, perCategory)
	s.Expanded = dedupe(s.Expanded, perCategory)
	s.Operators = dedupe(s.Operators, perCategory)
	if s.empty() {
		return Set{}, errors.New("empty suggestions")
	}
	if l.Cache != nil {
		if b, err := json.Marshal(s); err == nil {
			_ = l.Cache.Save(ctx, key, b)
		}
	}
	return s, nil
}
