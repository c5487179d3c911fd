package summarize

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	leadSentences     = 3
	leadWeight        = 1.0
	bodyWeight        = 0.5
	titleTermBonus    = 2.0
	rareTermMaxCount  = 2
	longWordMinLength = 8
)

// Scored holds the per-sentence scores for one document together with the
// term statistics the selection stages need. It lives for a single call.
type Scored struct {
	Sentences []string
	Scores    []float64

	terms [][]string
	freq  map[string]int
}

// Score returns the relevance score of every sentence, indexed like the input.
func Score(sentences []string, title string) []float64 {
	return ScoreSentences(sentences, title).Scores
}

// ScoreSentences computes term frequencies over the whole document and scores
// each sentence as the sum of its term frequencies, halved after the first
// three sentences. Every sentence term that also occurs in the title adds a
// flat bonus on top of that.
func ScoreSentences(sentences []string, title string) Scored {
	Initialize()
	lower := cases.Lower(language.English)

	s := Scored{
		Sentences: sentences,
		Scores:    make([]float64, len(sentences)),
		terms:     make([][]string, len(sentences)),
		freq:      make(map[string]int),
	}
	for i, sent := range sentences {
		ts := termsWith(lower, sent)
		s.terms[i] = ts
		for _, t := range ts {
			s.freq[t]++
		}
	}

	var titleTerms map[string]struct{}
	if title != "" {
		titleTerms = make(map[string]struct{})
		for _, t := range termsWith(lower, title) {
			titleTerms[t] = struct{}{}
		}
	}

	for i, ts := range s.terms {
		weight := bodyWeight
		if i < leadSentences {
			weight = leadWeight
		}
		sum := 0
		for _, t := range ts {
			sum += s.freq[t]
		}
		score := float64(sum) * weight
		for _, t := range ts {
			if _, ok := titleTerms[t]; ok {
				score += titleTermBonus
			}
		}
		s.Scores[i] = score
	}
	return s
}

// byScore returns all sentence indices ordered by descending score. Equal
// scores keep document order.
func (s Scored) byScore() []int {
	return rankBy(len(s.Sentences), func(a, b int) bool {
		return s.Scores[a] > s.Scores[b]
	})
}

// rankBy returns the indices 0..n-1 stably sorted by less.
func rankBy(n int, less func(a, b int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(idx[i], idx[j])
	})
	return idx
}
