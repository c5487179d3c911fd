// Package ratelimit provides per-caller token bucket rate limiting for the
// HTTP API.
package ratelimit

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by Check when a caller has no tokens left.
var ErrRateLimited = errors.New("rate limit exceeded, please try again shortly")

// Key identifies a caller. Anonymous callers are keyed by client IP and
// signed-in users by their account id.
type Key struct {
	UserID int64
	IP     string
}

// Anonymous reports whether k carries no user id.
func (k Key) Anonymous() bool { return k.UserID == 0 }

func (k Key) String() string {
	if k.Anonymous() {
		return "ip:" + k.IP
	}
	return "user:" + strconv.FormatInt(k.UserID, 10)
}

// Limit is a refill rate with its burst size.
type Limit struct {
	PerMinute float64
	Burst     int
}

func (l Limit) limiter() *rate.Limiter {
	if l.PerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(l.PerMinute/60), burst)
}

// Defaults used when the configuration leaves a limit unset.
var (
	DefaultAnonymous = Limit{PerMinute: 10, Burst: 3}
	DefaultUser      = Limit{PerMinute: 60, Burst: 10}
)

// DefaultIdle is how long an unused bucket is kept.
const DefaultIdle = 30 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per Key. It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	anonymous Limit
	user      Limit
	idle      time.Duration
	nowFunc   func() time.Time
}

// New creates a limiter with separate limits for anonymous callers and
// signed-in users. Zero limits fall back to the defaults.
func New(anonymous, user Limit) *Limiter {
	if anonymous == (Limit{}) {
		anonymous = DefaultAnonymous
	}
	if user == (Limit{}) {
		user = DefaultUser
	}
	return &Limiter{
		buckets:   make(map[string]*bucket),
		anonymous: anonymous,
		user:      user,
		idle:      DefaultIdle,
		nowFunc:   time.Now,
	}
}

// Allow reports whether a request from k may proceed and consumes a token
// when it may.
func (l *Limiter) Allow(k Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	id := k.String()
	b, ok := l.buckets[id]
	if !ok {
		lim := l.user
		if k.Anonymous() {
			lim = l.anonymous
		}
		b = &bucket{lim: lim.limiter()}
		l.buckets[id] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// Check is Allow returning ErrRateLimited on rejection.
func (l *Limiter) Check(k Key) error {
	if !l.Allow(k) {
		return ErrRateLimited
	}
	return nil
}

// Evict drops buckets unused for longer than the idle period and returns how
// many were removed.
func (l *Limiter) Evict() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.nowFunc().Add(-l.idle)
	removed := 0
	for id, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RunEvictor calls Evict every interval until stop is closed.
func (l *Limiter) RunEvictor(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Evict()
		}
	}
}
