package summarize

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrNotInitialized is returned by SplitSentences when the language
	// tables have not been loaded yet.
	ErrNotInitialized = errors.New("summarize: language resources not initialized")
	// ErrInvalidUTF8 is returned by SplitSentences for malformed byte input.
	ErrInvalidUTF8 = errors.New("summarize: input is not valid UTF-8")
)

var (
	initOnce      sync.Once
	ready         atomic.Bool
	stopwords     map[string]struct{}
	abbreviations map[string]struct{}
)

// Initialize loads the English stopword and abbreviation tables. It is
// idempotent and safe for concurrent use; the tables are read-only afterwards.
// Summarize calls it lazily, so explicit calls are only needed to pay the
// cost at process startup.
func Initialize() {
	initOnce.Do(func() {
		stopwords = toSet(englishStopwords)
		abbreviations = toSet(englishAbbreviations)
		ready.Store(true)
	})
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// SplitSentences breaks normalized text into sentences on '.', '!' and '?'
// boundaries followed by whitespace. Trailing closing quotes and brackets stay
// with their sentence. A period after a known abbreviation or a single
// capital initial ("J. Smith") does not end a sentence.
func SplitSentences(text string) ([]string, error) {
	if !ready.Load() {
		return nil, ErrNotInitialized
	}
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		end := i + 1
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !isTerminalTrail(r) {
				break
			}
			end += size
		}
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(r) {
				i = end - 1
				continue
			}
		}
		if c == '.' && endsWithAbbreviation(text[start:i], text[end:]) {
			i = end - 1
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
		i = end - 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out, nil
}

func isTerminalTrail(r rune) bool {
	switch r {
	case '.', '!', '?', '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

// endsWithAbbreviation reports whether the last word of s (the text right
// before a period) is an abbreviation or an initial. Words that are also
// ordinary English, such as "no" or "mar", only count when rest, the text
// after the period, continues with a number ("No. 5", "Mar. 3").
func endsWithAbbreviation(s, rest string) bool {
	word := s
	if i := strings.LastIndexFunc(s, unicode.IsSpace); i >= 0 {
		word = s[i+1:]
	}
	word = strings.TrimLeft(word, "\"'([“‘")
	if word == "" {
		return false
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsUpper(r)
	}
	lower := strings.ToLower(word)
	if _, ok := numberedAbbreviations[lower]; ok {
		return startsWithDigit(strings.TrimLeftFunc(rest, unicode.IsSpace))
	}
	_, ok := abbreviations[lower]
	return ok
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

var fallbackSplitRe = regexp.MustCompile(`[.!?]\s+`)

// fallbackSplit is the tokenizer of last resort: it splits after any '.',
// '!' or '?' that is followed by whitespace. It never fails.
func fallbackSplit(text string) []string {
	var out []string
	prev := 0
	for _, loc := range fallbackSplitRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[prev : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Terms returns the significant terms of text: lower-cased alphanumeric
// tokens with English stopwords removed.
func Terms(text string) []string {
	Initialize()
	return termsWith(cases.Lower(language.English), text)
}

// termsWith lets a caller reuse one Caser across many sentences. A Caser is
// stateful, so it must not be shared between goroutines.
func termsWith(lower cases.Caser, text string) []string {
	words := strings.FieldsFunc(lower.String(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

var englishAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "mt", "vs", "fig",
	"approx", "dept", "est", "gen", "gov", "sen", "rep", "lt", "col", "capt",
	"e.g", "i.e", "u.s", "u.k", "u.n", "a.m", "p.m", "ph.d", "cf", "al",
}

// numberedAbbreviations double as plain words and are treated as
// abbreviations only in front of a number.
var numberedAbbreviations = toSet([]string{
	"no", "vol", "jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
})

var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it",
	"it's", "its", "itself", "they", "them", "their", "theirs", "themselves",
	"what", "which", "who", "whom", "this", "that", "that'll", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for", "with",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out", "on",
	"off", "over", "under", "again", "further", "then", "once", "here", "there",
	"when", "where", "why", "how", "all", "any", "both", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own", "same",
	"so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "don't",
	"should", "should've", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain",
	"aren", "aren't", "couldn", "couldn't", "didn", "didn't", "doesn", "doesn't",
	"hadn", "hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
	"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan",
	"shan't", "shouldn", "shouldn't", "wasn", "wasn't", "weren", "weren't",
	"won", "won't", "wouldn", "wouldn't",
}
