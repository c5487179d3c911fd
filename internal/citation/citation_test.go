package citation

import (
	"errors"
	"testing"
	"time"

	"github.com/hyperifyio/gosummarize/internal/search"
)

var article = Source{
	Kind:    Journal,
	Title:   "Deep learning for text",
	Authors: []string{"John A. Smith", "Doe, Jane"},
	Date:    "2020-03-05",
	Journal: "Journal of AI",
	Volume:  "12",
	Issue:   "3",
	Pages:   "45-67",
	DOI:     "doi:10.1234/jai.2020.5",
}

var book = Source{
	Kind:      Book,
	Title:     "The Go Programming Language",
	Authors:   []string{"Alan Donovan", "Brian Kernighan", "Rob Pike"},
	Publisher: "Addison-Wesley",
	Date:      "2015",
}

func TestFormat(t *testing.T) {
	page := FromResult(search.Result{Title: "Go Concurrency Patterns", URL: "https://www.go.dev/blog/pipelines"},
		time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		src   Source
		style Style
		want  string
	}{
		{"apa journal", article, APA,
			"Smith, J. A., & Doe, J. (2020). Deep learning for text. Journal of AI, 12(3), 45-67. https://doi.org/10.1234/jai.2020.5"},
		{"mla journal", article, MLA,
			"Smith, John A., and Jane Doe. “Deep learning for text.” Journal of AI, vol. 12, no. 3, 5 Mar. 2020, pp. 45-67. https://doi.org/10.1234/jai.2020.5."},
		{"chicago journal", article, Chicago,
			"Smith, John A., and Jane Doe. “Deep learning for text.” Journal of AI 12, no. 3 (2020): 45-67. https://doi.org/10.1234/jai.2020.5."},
		{"apa book", book, APA,
			"Donovan, A., Kernighan, B., & Pike, R. (2015). The Go Programming Language. Addison-Wesley."},
		{"mla book", book, MLA,
			"Donovan, Alan, et al. The Go Programming Language. Addison-Wesley, 2015."},
		{"chicago book", book, Chicago,
			"Donovan, Alan, Brian Kernighan, and Rob Pike. The Go Programming Language. Addison-Wesley, 2015."},
		{"apa website", page, APA,
			"Go Concurrency Patterns. (n.d.). go.dev. Retrieved June 1, 2024, from https://www.go.dev/blog/pipelines"},
		{"mla website", page, MLA,
			"“Go Concurrency Patterns.” go.dev, https://www.go.dev/blog/pipelines. Accessed 1 June 2024."},
		{"chicago website", page, Chicago,
			"“Go Concurrency Patterns.” go.dev. Accessed June 1, 2024. https://www.go.dev/blog/pipelines."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.src, tt.style)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	if _, err := Format(Source{}, APA); !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("expected ErrMissingTitle, got %v", err)
	}
	if _, err := Format(Source{Title: "x", Kind: "podcast"}, APA); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := Format(Source{Title: "x"}, "Harvard"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("expected ErrUnknownStyle, got %v", err)
	}
	if _, err := Format(Source{Title: "x", DOI: "not-a-doi"}, APA); !errors.Is(err, ErrInvalidDOI) {
		t.Fatalf("expected ErrInvalidDOI, got %v", err)
	}
}

func TestCanonicalDOI(t *testing.T) {
	for _, in := range []string{"10.1000/xyz123", "doi:10.1000/xyz123", "https://dx.doi.org/10.1000/xyz123", " HTTPS://DOI.ORG/10.1000/xyz123 "} {
		got, err := CanonicalDOI(in)
		if err != nil || got != "https://doi.org/10.1000/xyz123" {
			t.Fatalf("CanonicalDOI(%q) = %q, %v", in, got, err)
		}
	}
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]Style{"apa": APA, "MLA": MLA, "chicago": Chicago, "": APA} {
		got, err := ParseStyle(in)
		if err != nil || got != want {
			t.Fatalf("ParseStyle(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStyle("ieee"); err == nil {
		t.Fatal("expected error")
	}
}
