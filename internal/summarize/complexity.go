package summarize

import (
	"math"
	"regexp"
	"unicode/utf8"
)

const (
	simpleMaxWords   = 15
	balancedMaxWords = 25
	nuanceWords      = 30
	nuanceBoost      = 0.2
	topicalWeight    = 0.6
	lexicalWeight    = 0.4
)

var vowelGroupRe = regexp.MustCompile(`[aeiouy]+`)

// SelectIndices applies the complexity policy to sentences scored by Score.
// scores must be indexed like sentences.
func SelectIndices(sentences []string, scores []float64, complexity, target int) []int {
	s := ScoreSentences(sentences, "")
	if len(scores) == len(sentences) {
		s.Scores = scores
	}
	return s.Select(complexity, target)
}

// Select picks candidate sentence indices for the given complexity level and
// target count. The result is in ranking order, not document order.
//
//	1: shortest sentences first, sentences over 15 words last; relevance ignored
//	2: sentences over 25 words last, otherwise by descending score
//	3: top sentences by score
//	4: pool widened by half, score boosted for longer sentences
//	5: pool doubled, ranked by a blend of score and lexical complexity
func (s Scored) Select(complexity, target int) []int {
	n := len(s.Sentences)
	if n == 0 || target <= 0 {
		return nil
	}
	words := make([]int, n)
	for i, sent := range s.Sentences {
		words[i] = wordCount(sent)
	}

	var order []int
	pool := target
	switch clampLevel(complexity) {
	case 1:
		order = rankBy(n, func(a, b int) bool {
			la, lb := words[a] > simpleMaxWords, words[b] > simpleMaxWords
			if la != lb {
				return !la
			}
			return words[a] < words[b]
		})
		pool = max(minTarget, target)
	case 2:
		order = rankBy(n, func(a, b int) bool {
			la, lb := words[a] > balancedMaxWords, words[b] > balancedMaxWords
			if la != lb {
				return !la
			}
			return s.Scores[a] > s.Scores[b]
		})
	case 3:
		order = s.byScore()
	case 4:
		weighted := make([]float64, n)
		for i := range weighted {
			weighted[i] = s.Scores[i] * (1 + nuanceBoost*math.Min(1, float64(words[i])/nuanceWords))
		}
		order = rankBy(n, func(a, b int) bool { return weighted[a] > weighted[b] })
		pool = target + target/2
	case 5:
		combined := make([]float64, n)
		for i := range combined {
			combined[i] = topicalWeight*s.Scores[i] + lexicalWeight*s.lexicalComplexity(i, words[i])
		}
		order = rankBy(n, func(a, b int) bool { return combined[a] > combined[b] })
		pool = 2 * target
	}
	if pool > n {
		pool = n
	}
	return append([]int(nil), order[:pool]...)
}

// lexicalComplexity rates how demanding sentence i reads: its length, mean
// word length, mean vowel groups per word (a syllable proxy), words longer
// than seven characters, and terms that occur at most twice in the document.
func (s Scored) lexicalComplexity(i, tokens int) float64 {
	ts := s.terms[i]
	denom := float64(max(1, len(ts)))
	var chars, syllables, long, rare int
	for _, t := range ts {
		l := utf8.RuneCountInString(t)
		chars += l
		syllables += len(vowelGroupRe.FindAllStringIndex(t, -1))
		if l >= longWordMinLength {
			long++
		}
		if s.freq[t] <= rareTermMaxCount {
			rare++
		}
	}
	// tokens counts whitespace-separated words, so punctuation adds nothing
	// to the length term and the 0.2 weight is not tuned for punctuation tokens.
	return float64(tokens)*0.2 +
		float64(chars)/denom*0.3 +
		float64(syllables)/denom*0.2 +
		float64(long)*2.0 +
		float64(rare)*2.5
}
