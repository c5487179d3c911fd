// Package useragent rotates browser User-Agent strings for outbound requests
// to search engines and scraped pages.
package useragent

import (
	"math/rand/v2"
	"net/http"
)

// Browsers is the rotation pool of desktop browser identifiers.
var Browsers = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// Random returns one entry of Browsers.
func Random() string {
	return Browsers[rand.IntN(len(Browsers))]
}

// Pick returns fixed when it is set and a random browser otherwise.
func Pick(fixed string) string {
	if fixed != "" {
		return fixed
	}
	return Random()
}

// SetBrowserHeaders sets the headers a desktop browser sends with a page
// request, using ua as the User-Agent.
func SetBrowserHeaders(h http.Header, ua string) {
	h.Set("User-Agent", ua)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("DNT", "1")
	h.Set("Upgrade-Insecure-Requests", "1")
}
