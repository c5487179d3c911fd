package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF extracts plain text from a PDF body page by page. Pages that fail
// to decode are skipped; ErrNoText is returned when no page yields text.
func FromPDF(body []byte) (doc Document, err error) {
	defer func() {
		// The PDF reader panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			doc, err = Document{}, fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return Document{}, fmt.Errorf("open pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, perr := p.GetPlainText(nil)
		if perr != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	out := normalizeWhitespace(b.String())
	if out == "" {
		return Document{}, ErrNoText
	}
	return Document{Title: pdfTitle(r), Text: out}, nil
}

func pdfTitle(r *pdf.Reader) string {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}
