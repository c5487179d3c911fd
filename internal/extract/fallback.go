package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromHTMLFallback is the coarse extractor used when FromHTML finds nothing,
// typically on pages that render their text outside the usual block
// elements. It drops script, style and page chrome, takes all remaining body
// text, and keeps one trimmed phrase per line.
func FromHTMLFallback(input []byte) Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}
	}
	title := collapseSpaces(strings.TrimSpace(doc.Find("title").First().Text()))
	doc.Find("script, style, noscript, header, footer, nav").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var lines []string
	root.Contents().Each(func(_ int, s *goquery.Selection) {
		lines = appendBlockLines(lines, s)
	})
	return Document{Title: title, Text: strings.Join(lines, "\n")}
}

// appendBlockLines walks s and appends its text split on newlines and double
// spaces, skipping empty chunks.
func appendBlockLines(lines []string, s *goquery.Selection) []string {
	if goquery.NodeName(s) == "#text" {
		for _, line := range strings.Split(s.Text(), "\n") {
			for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
				if c := strings.TrimSpace(chunk); c != "" {
					lines = append(lines, c)
				}
			}
		}
		return lines
	}
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		lines = appendBlockLines(lines, c)
	})
	return lines
}
