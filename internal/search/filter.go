package search

import (
	"net/url"
	"strings"
)

// DomainPolicy filters results by host. A host matches an entry when it
// equals it or is a subdomain of it. Denylist takes precedence over
// Allowlist; an empty Allowlist admits every host.
type DomainPolicy struct {
	Allowlist []string
	Denylist  []string
}

// WikipediaHosts is the deny entry for users who hide encyclopedia results.
var WikipediaHosts = []string{"wikipedia.org"}

// Filter returns the results whose host passes the policy, renumbering their
// ranks. Results with unparsable URLs are dropped.
func (p DomainPolicy) Filter(in []Result) []Result {
	out := make([]Result, 0, len(in))
	for _, r := range in {
		u, err := url.Parse(r.URL)
		if err != nil || u.Host == "" {
			continue
		}
		if p.Allows(u.Hostname()) {
			out = append(out, r)
		}
	}
	return rank(out)
}

// Allows reports whether host passes the policy.
func (p DomainPolicy) Allows(host string) bool {
	host = strings.ToLower(host)
	for _, d := range p.Denylist {
		if hostMatches(host, d) {
			return false
		}
	}
	if len(p.Allowlist) == 0 {
		return true
	}
	for _, a := range p.Allowlist {
		if hostMatches(host, a) {
			return true
		}
	}
	return false
}

func hostMatches(host, entry string) bool {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if entry == "" {
		return false
	}
	return host == entry || strings.HasSuffix(host, "."+entry)
}
