// Package citation formats bibliography entries for search results and
// user-entered sources in APA, MLA and Chicago styles.
package citation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hyperifyio/gosummarize/internal/search"
)

var (
	ErrUnknownStyle = errors.New("citation: unknown style")
	ErrUnknownKind  = errors.New("citation: unknown source type")
	ErrMissingTitle = errors.New("citation: title is required")
	ErrInvalidDOI   = errors.New("citation: invalid DOI")
)

// Style is a citation style.
type Style string

const (
	APA     Style = "APA"
	MLA     Style = "MLA"
	Chicago Style = "Chicago"
)

// ParseStyle accepts a style name in any letter case.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apa", "":
		return APA, nil
	case "mla":
		return MLA, nil
	case "chicago":
		return Chicago, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Kind is the type of the cited work.
type Kind string

const (
	Website Kind = "website"
	Book    Kind = "book"
	Journal Kind = "journal"
)

// Source describes a cited work. Dates are "YYYY", "YYYY-MM" or
// "YYYY-MM-DD". Authors are "Given Family" or "Family, Given".
type Source struct {
	Kind    Kind     `json:"source_type"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`

	Publisher string `json:"publisher,omitempty"`
	Date      string `json:"publication_date,omitempty"`

	Journal string `json:"journal_name,omitempty"`
	Volume  string `json:"volume,omitempty"`
	Issue   string `json:"issue,omitempty"`
	Pages   string `json:"pages,omitempty"`
	DOI     string `json:"doi,omitempty"`

	URL        string `json:"url,omitempty"`
	SiteName   string `json:"site_name,omitempty"`
	AccessDate string `json:"access_date,omitempty"`
}

// FromResult builds a website citation source for a search hit accessed at
// the given time.
func FromResult(r search.Result, accessed time.Time) Source {
	site := ""
	if u, err := url.Parse(r.URL); err == nil {
		site = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	return Source{
		Kind:       Website,
		Title:      strings.TrimSpace(r.Title),
		URL:        r.URL,
		SiteName:   site,
		AccessDate: accessed.UTC().Format("2006-01-02"),
	}
}

// Format renders src in the given style.
func Format(src Source, style Style) (string, error) {
	src.Title = strings.TrimSpace(src.Title)
	if src.Title == "" {
		return "", ErrMissingTitle
	}
	if src.DOI != "" {
		doi, err := CanonicalDOI(src.DOI)
		if err != nil {
			return "", err
		}
		src.DOI = doi
	}
	if src.Kind == "" {
		src.Kind = Website
	}
	switch src.Kind {
	case Website, Book, Journal:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, src.Kind)
	}
	names := parseAuthors(src.Authors)
	switch style {
	case APA:
		return apa(src, names), nil
	case MLA:
		return mla(src, names), nil
	case Chicago:
		return chicago(src, names), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, style)
}

var doiRe = regexp.MustCompile(`^10\.[0-9]{4,9}/[-._;()/:A-Za-z0-9]+$`)

// CanonicalDOI strips doi:, doi.org and dx.doi.org prefixes and returns the
// https://doi.org/ form.
func CanonicalDOI(s string) (string, error) {
	d := strings.TrimSpace(s)
	lower := strings.ToLower(d)
	for _, p := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, p) {
			d = strings.TrimSpace(d[len(p):])
			break
		}
	}
	if !doiRe.MatchString(d) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDOI, s)
	}
	return "https://doi.org/" + d, nil
}

// join concatenates the non-empty parts with sep.
func join(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// period terminates s with a full stop unless it already ends in punctuation.
func period(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}

// quoted wraps a title in quotes, moving the terminating period inside.
func quoted(title string) string {
	return "“" + period(title) + "”"
}
