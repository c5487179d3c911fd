// Package extract turns fetched HTML and PDF bodies into plain text the
// summarizer can work on.
package extract

import (
	"errors"
	"strings"
)

// ErrNoText is returned when a body yields no readable text.
var ErrNoText = errors.New("no extractable text")

// Document is the readable content of one fetched page.
type Document struct {
	Title string
	Text  string
}

// Extractor converts a fetched body into a Document.
type Extractor interface {
	Extract(body []byte, contentType string) (Document, error)
}

// Auto dispatches on content type: PDF bodies go through FromPDF, everything
// else through FromHTML with the goquery fallback when the primary pass
// finds no text.
type Auto struct{}

func (Auto) Extract(body []byte, contentType string) (Document, error) {
	return FromResponse(body, contentType)
}

// FromResponse extracts a Document from a body of the given content type.
func FromResponse(body []byte, contentType string) (Document, error) {
	if isPDF(body, contentType) {
		return FromPDF(body)
	}
	doc := FromHTML(body)
	if strings.TrimSpace(doc.Text) == "" {
		fb := FromHTMLFallback(body)
		if fb.Title == "" {
			fb.Title = doc.Title
		}
		doc = fb
	}
	if strings.TrimSpace(doc.Text) == "" {
		return doc, ErrNoText
	}
	return doc, nil
}

func isPDF(body []byte, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/pdf") {
		return true
	}
	return contentType == "" && len(body) >= 5 && string(body[:5]) == "%PDF-"
}
