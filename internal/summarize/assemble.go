package summarize

import (
	"sort"
	"strings"
)

const (
	minSummaryWords = 30
	maxBackfill     = 2
)

// Assemble joins the chosen sentences with single spaces in document order,
// whatever order the indices arrive in. Out-of-range indices are ignored.
func Assemble(sentences []string, indices []int) string {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for _, i := range sorted {
		if i < 0 || i >= len(sentences) {
			continue
		}
		parts = append(parts, sentences[i])
	}
	return strings.Join(parts, " ")
}

// Backfill enforces a minimum useful length: when the assembled selection is
// under thirty words and the document has sentences beyond target, up to two
// of the next best-scoring sentences are added. This overrides the
// complexity policy.
func (s Scored) Backfill(selected []int, target int) []int {
	n := len(s.Sentences)
	if n <= target || wordCount(Assemble(s.Sentences, selected)) >= minSummaryWords {
		return selected
	}
	have := make(map[int]struct{}, len(selected))
	for _, i := range selected {
		have[i] = struct{}{}
	}
	extra := min(n-target, maxBackfill)
	out := append([]int(nil), selected...)
	for _, i := range s.byScore()[target : target+extra] {
		if _, dup := have[i]; dup {
			continue
		}
		out = append(out, i)
	}
	return out
}
