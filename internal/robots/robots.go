// Package robots decides whether a result page may be fetched according to
// its site's robots.txt.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrDisallowed is returned by Check when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

const (
	defaultTTL     = 30 * time.Minute
	maxRobotsBytes = 512 << 10
	defaultTimeout = 10 * time.Second
	wildcardAgent  = "*"
)

// Rules are the parsed groups of one robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one User-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Checker fetches and caches robots.txt per origin. The zero value is ready
// to use.
type Checker struct {
	HTTPClient *http.Client
	UserAgent  string
	// TTL is how long parsed rules are reused. Zero means 30 minutes.
	TTL time.Duration

	mu    sync.Mutex
	rules map[string]entry
	now   func() time.Time
}

type entry struct {
	rules   Rules
	expires time.Time
}

// Check returns ErrDisallowed when rawURL is excluded for the checker's user
// agent. An unreachable or missing robots.txt allows everything.
func (c *Checker) Check(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	rules := c.rulesFor(ctx, u.Scheme+"://"+u.Host)
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if !rules.Allows(c.UserAgent, path) {
		return fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}
	return nil
}

func (c *Checker) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Checker) rulesFor(ctx context.Context, origin string) Rules {
	c.mu.Lock()
	if e, ok := c.rules[origin]; ok && c.clock().Before(e.expires) {
		c.mu.Unlock()
		return e.rules
	}
	c.mu.Unlock()

	rules, err := c.fetch(ctx, origin+"/robots.txt")
	if err != nil {
		log.Debug().Err(err).Str("origin", origin).Msg("robots.txt unavailable; allowing")
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c.mu.Lock()
	if c.rules == nil {
		c.rules = make(map[string]entry)
	}
	c.rules[origin] = entry{rules: rules, expires: c.clock().Add(ttl)}
	c.mu.Unlock()
	return rules
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) (Rules, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Rules{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "text/plain") {
		return Rules{}, fmt.Errorf("unexpected content type: %s", ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return Rules{}, fmt.Errorf("read robots: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse reads robots.txt text. Unknown directives are ignored.
func Parse(text string) Rules {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		groups  []Group
		current Group
	)
	flush := func() {
		if len(current.Agents) > 0 {
			groups = append(groups, current)
		}
		current = Group{}
	}
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			// consecutive User-agent lines share one group
			if len(current.Allow) > 0 || len(current.Disallow) > 0 {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			current.Allow = append(current.Allow, val)
		case "disallow":
			current.Disallow = append(current.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// Allows reports whether path may be fetched by userAgent. The most specific
// agent group applies; within it the longest matching pattern wins and Allow
// wins ties. No match means allowed.
func (r Rules) Allows(userAgent, path string) bool {
	g := r.group(userAgent)
	if g == nil {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matches(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow) {
				best, allow = score, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

func (r Rules) group(userAgent string) *Group {
	ua := strings.ToLower(userAgent)
	idx, best := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			score := -1
			switch {
			case a == wildcardAgent:
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > best {
				idx, best = i, score
			}
		}
	}
	if idx < 0 {
		return nil
	}
	return &r.Groups[idx]
}

// matches anchors pattern at the start of path. '*' matches any run and a
// trailing '$' anchors the end.
func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	if !strings.Contains(pattern, "*") {
		if anchored {
			return path == pattern
		}
		return strings.HasPrefix(path, pattern)
	}
	parts := strings.Split(pattern, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	expr := "^" + strings.Join(parts, ".*")
	if anchored {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	return err == nil && re.MatchString(path)
}
