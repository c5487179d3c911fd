package summarize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRe   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagRe   = regexp.MustCompile(`<.*?>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize removes URLs and HTML tags from scraped text and collapses all
// whitespace runs into single spaces. It never fails; the worst case is an
// empty string.
//
// NFKC runs first so that non-breaking spaces and similar compatibility
// characters become plain ASCII before the whitespace pass.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := raw
	// Malformed input is left for the sentence splitter to reject.
	if utf8.ValidString(s) {
		s = norm.NFKC.String(s)
	}
	s = urlRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
