package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func withClock(l *Limiter) *time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.nowFunc = func() time.Time { return now }
	return &now
}

func TestAllow_WithinBurstThenRejects(t *testing.T) {
	l := New(Limit{PerMinute: 60, Burst: 3}, Limit{PerMinute: 600, Burst: 10})
	withClock(l)
	k := Key{IP: "10.0.0.1"}
	for i := 0; i < 3; i++ {
		if !l.Allow(k) {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if l.Allow(k) {
		t.Fatal("request after burst should be rejected")
	}
	if err := l.Check(k); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestAllow_RefillAfterWait(t *testing.T) {
	l := New(Limit{PerMinute: 60, Burst: 1}, Limit{})
	now := withClock(l)
	k := Key{IP: "10.0.0.2"}
	if !l.Allow(k) {
		t.Fatal("first request should pass")
	}
	if l.Allow(k) {
		t.Fatal("second request should be rejected")
	}
	*now = now.Add(time.Second)
	if !l.Allow(k) {
		t.Fatal("expected a token after one second")
	}
}

func TestAllow_UsersGetHigherLimit(t *testing.T) {
	l := New(Limit{PerMinute: 1, Burst: 1}, Limit{PerMinute: 60, Burst: 5})
	withClock(l)
	anon := Key{IP: "10.0.0.3"}
	user := Key{UserID: 7, IP: "10.0.0.3"}
	if !l.Allow(anon) || l.Allow(anon) {
		t.Fatal("anonymous caller should get exactly one request")
	}
	for i := 0; i < 5; i++ {
		if !l.Allow(user) {
			t.Fatalf("user request %d should be allowed", i+1)
		}
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := New(Limit{PerMinute: 1, Burst: 1}, Limit{})
	withClock(l)
	l.Allow(Key{IP: "a"})
	if l.Allow(Key{IP: "a"}) {
		t.Fatal("key a should be exhausted")
	}
	if !l.Allow(Key{IP: "b"}) {
		t.Fatal("key b should have its own bucket")
	}
}

func TestEvict_RemovesIdleBuckets(t *testing.T) {
	l := New(Limit{}, Limit{})
	now := withClock(l)
	l.Allow(Key{IP: "old"})
	*now = now.Add(DefaultIdle + time.Minute)
	l.Allow(Key{IP: "fresh"})
	if n := l.Evict(); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if l.Len() != 1 {
		t.Fatalf("expected one remaining bucket, got %d", l.Len())
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l := New(Limit{PerMinute: 1, Burst: 50}, Limit{})
	withClock(l)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(Key{IP: "shared"}) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Fatalf("allowed %d, want 50", allowed)
	}
}

func TestKeyString(t *testing.T) {
	if got := (Key{IP: "1.2.3.4"}).String(); got != "ip:1.2.3.4" {
		t.Fatalf("got %q", got)
	}
	if got := (Key{UserID: 9, IP: "1.2.3.4"}).String(); got != "user:9" {
		t.Fatalf("got %q", got)
	}
}
