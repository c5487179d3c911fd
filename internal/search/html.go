package search

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/gosummarize/internal/useragent"
)

// NoDescription is the snippet used when a scraped result has none.
const NoDescription = "No description available"

// snippetSelector lists the class names the engine has used for result
// descriptions over time.
const snippetSelector = "div.VwiC3b, div.yXK7lf, div.MUxGbd, div.yDYNvb, div.lyLwlc"

// HTMLProvider scrapes a search engine's HTML results page. Each result is a
// div.g block holding an anchor and an h3 title.
type HTMLProvider struct {
	// BaseURL is the results page, for example https://www.google.com/search.
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string // optional; empty rotates browser agents
}

func (p *HTMLProvider) Name() string { return "html" }

func (p *HTMLProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if p.BaseURL == "" {
		return nil, fmt.Errorf("missing html search base url")
	}
	if limit <= 0 {
		limit = 10
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("html search base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("num", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	useragent.SetBrowserHeaders(req.Header, useragent.Pick(p.UserAgent))
	req.Header.Set("Referer", u.Scheme+"://"+u.Host+"/")
	hc := p.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("html search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("html search status: %d", resp.StatusCode)
	}
	out, err := ParseResultsPage(resp.Body, u.Hostname(), limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Source = p.Name()
	}
	return out, nil
}

// ParseResultsPage extracts up to limit results from a results page. Links
// wrapped as /url?q=... are unwrapped, and links back to selfHost or that are
// not absolute http(s) URLs are skipped.
func ParseResultsPage(r io.Reader, selfHost string, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	selfDomain := registrableSuffix(selfHost)
	var out []Result
	doc.Find("div.g").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Find("a").First().Attr("href")
		title := strings.TrimSpace(s.Find("h3").First().Text())
		if !ok || title == "" {
			return true
		}
		link := unwrapRedirect(href)
		if !strings.HasPrefix(link, "http") {
			return true
		}
		if selfDomain != "" && strings.Contains(link, selfDomain) {
			return true
		}
		snippet := strings.TrimSpace(s.Find(snippetSelector).First().Text())
		if snippet == "" {
			snippet = NoDescription
		}
		out = append(out, Result{Title: title, URL: link, Snippet: snippet})
		return limit <= 0 || len(out) < limit
	})
	return rank(out), nil
}

func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("q")
}

// registrableSuffix reduces a host such as www.google.com to google.com.
func registrableSuffix(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
