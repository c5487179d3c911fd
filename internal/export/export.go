// Package export renders reports as Markdown, HTML and PDF documents and
// publishes them to Notion.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/report"
)

// ErrUnknownFormat is returned for an export format that is not supported.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is an export document type.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

const (
	timestampLayout = "2006-01-02 15:04:05 UTC"
	appName         = "gosummarize"
)

// ParseFormat accepts "md", "markdown", "html", "pdf" and "notion" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "notion":
		return FormatNotion, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/markdown; charset=utf-8"
}

// Filename is a download name for a report on query.
func (f Format) Filename(query string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(query))
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "report"
	}
	return "search-results-" + slug + "." + string(f)
}

// Write renders r in format f to w. FormatNotion is not a document and is
// rejected with ErrUnknownFormat.
func Write(w io.Writer, r report.Report, f Format, includeSummaries bool) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r, includeSummaries))
		return err
	case FormatHTML:
		s, err := HTML(r, includeSummaries)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s)
		return err
	case FormatPDF:
		return PDF(r, includeSummaries, w)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
