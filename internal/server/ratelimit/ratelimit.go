// Package ratelimit throttles API clients with per-route token buckets.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Defaults used when a Config leaves them unset
const (
	DefaultLimit      = 1000
	DefaultWindow     = time.Minute
	DefaultIdleTTL    = time.Hour
	DefaultMaxBuckets = 10000
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration

	// IdleTTL drops a client's bucket after this long without requests
	IdleTTL time.Duration
	// MaxBuckets bounds memory; the least recently used bucket goes first
	MaxBuckets int

	Exempt  map[string]bool
	Blocked map[string]bool
	Rules   []Rule
}

// Info describes the bucket a request was charged against.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket refills continuously at rate tokens per second up to capacity
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	updated  time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		updated:  now,
	}
}

func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
	}
	b.updated = now
}

// take consumes one token if available and reports the bucket state afterwards
func (b *bucket) take(now time.Time) (allowed bool, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		allowed = true
	}

	remaining = int(b.tokens)
	reset = now
	if b.tokens < b.capacity && b.rate > 0 {
		missing := b.capacity - b.tokens
		reset = now.Add(time.Duration(missing / b.rate * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// Limiter charges requests against per client, per rule buckets.
type Limiter struct {
	config  *Config
	buckets *expirable.LRU[string, *bucket]
	mu      sync.Mutex
	now     func() time.Time
}

// NewLimiter creates a limiter. A nil config enables limiting with the defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: true}
	}
	if config.DefaultLimit == 0 {
		config.DefaultLimit = DefaultLimit
	}
	if config.DefaultWindow <= 0 {
		config.DefaultWindow = DefaultWindow
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultIdleTTL
	}
	if config.MaxBuckets <= 0 {
		config.MaxBuckets = DefaultMaxBuckets
	}

	return &Limiter{
		config:  config,
		buckets: expirable.NewLRU[string, *bucket](config.MaxBuckets, nil, config.IdleTTL),
		now:     time.Now,
	}
}

// Allow charges one request by clientID to path and method.
// Paths matching the same rule share one bucket per client, whatever the session id in them.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Exempt[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blocked[clientID] {
		return false, Info{}
	}

	rule := MatchRule(path, method, l.config.Rules)
	key := clientID + ":" + path + ":" + method
	if rule == nil {
		rule = &Rule{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	} else if rule.Path != "" {
		key = clientID + ":" + rule.Path + ":" + method
	}
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	allowed, remaining, reset := l.bucketFor(key, rule, now).take(now)

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		info.RetryAfter = max(reset.Sub(now), 0)
	}
	return allowed, info
}

// bucketFor returns the bucket for key, creating it full on first use. Every lookup
// renews the bucket's idle TTL.
func (l *Limiter) bucketFor(key string, rule *Rule, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets.Get(key)
	if !ok {
		b = newBucket(rule.capacity(), float64(rule.Limit)/rule.Window.Seconds(), now)
	}
	l.buckets.Add(key, b)
	return b
}

// Len returns the number of live buckets
func (l *Limiter) Len() int {
	return l.buckets.Len()
}

// Stop drops every bucket.
func (l *Limiter) Stop() {
	l.buckets.Purge()
}
