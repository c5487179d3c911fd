// Package summarize builds extractive summaries of scraped web pages.
//
// A summary is a subset of the page's own sentences, kept in document order.
// Two knobs shape it: Depth (1..5) sets how much of the source is covered and
// Complexity (1..5) trades short, plain sentences against long, information
// dense ones. The package is a pure function of its inputs and is safe for
// concurrent use.
package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EmptySentinel is returned for empty or whitespace-only input.
const EmptySentinel = "No content to summarize."

const (
	MinLevel     = 1
	MaxLevel     = 5
	DefaultLevel = 3

	shortTextWords = 50
	truncateRunes  = 500
	ellipsis       = "..."
)

// Options tunes a summary. Zero values select DefaultLevel; values outside
// [MinLevel, MaxLevel] are clamped.
type Options struct {
	Depth      int `json:"depth" yaml:"depth"`
	Complexity int `json:"complexity" yaml:"complexity"`
}

// Normalized returns o with both levels resolved to [MinLevel, MaxLevel].
func (o Options) Normalized() Options {
	return Options{Depth: clampLevel(o.Depth), Complexity: clampLevel(o.Complexity)}
}

// Path records which branch produced a summary.
type Path string

const (
	PathSelected    Path = "selected"
	PathEmpty       Path = "empty"
	PathShortText   Path = "short-text"
	PathFewSentence Path = "few-sentences"
	PathTruncated   Path = "truncated"
)

// Result is the detailed outcome of one summarization.
type Result struct {
	Summary   string
	Path      Path
	Sentences int
	Target    int
	// Selected holds the chosen sentence indices in document order.
	Selected []int
	// RegexSplit is true when the primary sentence splitter failed and the
	// regex fallback was used instead.
	RegexSplit bool
}

// Summarizer runs the summarization pipeline. The zero value is ready to use.
type Summarizer struct {
	// Logger receives degradation warnings. Nil means the global logger.
	Logger *zerolog.Logger
	// Split overrides the sentence splitter. Nil means SplitSentences.
	Split func(string) ([]string, error)
}

var defaultSummarizer = &Summarizer{}

// Summarize returns an extractive summary of text using the package default
// Summarizer. It never fails: degenerate input yields EmptySentinel and
// internal failures yield the leading part of the text.
func Summarize(text, title string, opts Options) string {
	return defaultSummarizer.Summarize(text, title, opts)
}

// Summarize is the string-only form of SummarizeDetailed.
func (s *Summarizer) Summarize(text, title string, opts Options) string {
	return s.SummarizeDetailed(text, title, opts).Summary
}

// SummarizeDetailed runs normalize, score, target count, complexity
// selection, backfill and assembly, and reports how the summary was made.
func (s *Summarizer) SummarizeDetailed(text, title string, opts Options) (res Result) {
	if strings.TrimSpace(text) == "" {
		return Result{Summary: EmptySentinel, Path: PathEmpty}
	}
	Initialize()
	opts = opts.Normalized()

	defer func() {
		if r := recover(); r != nil {
			s.logger().Error().Str("panic", fmt.Sprint(r)).Msg("summarization failed; returning truncated text")
			res = Result{Summary: truncate(strings.TrimSpace(text)), Path: PathTruncated}
		}
	}()

	cleaned := Normalize(text)
	if cleaned == "" {
		return Result{Summary: EmptySentinel, Path: PathEmpty}
	}
	if wordCount(cleaned) < shortTextWords {
		return Result{Summary: truncate(cleaned), Path: PathShortText}
	}

	sentences, regexSplit := s.sentences(cleaned)
	if len(sentences) == 0 {
		return Result{Summary: truncate(cleaned), Path: PathTruncated, RegexSplit: regexSplit}
	}
	if len(sentences) <= minTarget {
		all := make([]int, len(sentences))
		for i := range all {
			all[i] = i
		}
		return Result{
			Summary:    strings.Join(sentences, " "),
			Path:       PathFewSentence,
			Sentences:  len(sentences),
			Target:     len(sentences),
			Selected:   all,
			RegexSplit: regexSplit,
		}
	}

	scored := ScoreSentences(sentences, title)
	target := TargetCount(len(sentences), opts.Depth)
	selected := scored.Select(opts.Complexity, target)
	if opts.Depth == MinLevel && len(selected) > depthOneCap {
		// complexity 4 and 5 widen the pool; depth 1 stays capped.
		selected = selected[:depthOneCap]
	}
	selected = scored.Backfill(selected, target)
	sort.Ints(selected)

	return Result{
		Summary:    Assemble(sentences, selected),
		Path:       PathSelected,
		Sentences:  len(sentences),
		Target:     target,
		Selected:   selected,
		RegexSplit: regexSplit,
	}
}

// sentences splits text with the configured splitter and falls back to the
// regex splitter when it fails.
func (s *Summarizer) sentences(text string) ([]string, bool) {
	split := s.Split
	if split == nil {
		split = SplitSentences
	}
	sentences, err := split(text)
	if err == nil && len(sentences) > 0 {
		return sentences, false
	}
	if err != nil {
		s.logger().Warn().Err(err).Msg("sentence splitter failed; using regex fallback")
	}
	return fallbackSplit(text), true
}

func (s *Summarizer) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

// truncate keeps the first 500 characters of s and marks the cut with an
// ellipsis. Text that already fits is returned unchanged.
func truncate(s string) string {
	count := 0
	for i := range s {
		if count == truncateRunes {
			return s[:i] + ellipsis
		}
		count++
	}
	return s
}
