package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. Path is matched exactly, segment by segment with "*"
// standing for any one segment, or as a prefix when it ends with "/".
type Rule struct {
	Path   string
	Method string
	// Limit is requests per window; 0 means unlimited
	Limit  int
	Window time.Duration
	// Burst is the bucket capacity, Limit when 0
	Burst int
}

func (r *Rule) capacity() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

// LoadConfig reads the limiter settings from CV_RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	if !envBool(getenv, "CV_RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:       true,
		DefaultLimit:  envInt(getenv, "CV_RATE_LIMIT_DEFAULT_LIMIT", DefaultLimit),
		DefaultWindow: envDuration(getenv, "CV_RATE_LIMIT_DEFAULT_WINDOW", DefaultWindow),
		IdleTTL:       envDuration(getenv, "CV_RATE_LIMIT_IDLE_TTL", DefaultIdleTTL),
		MaxBuckets:    envInt(getenv, "CV_RATE_LIMIT_MAX_BUCKETS", DefaultMaxBuckets),
		Exempt:        parseClientList(getenv("CV_RATE_LIMIT_EXEMPT")),
		Blocked:       parseClientList(getenv("CV_RATE_LIMIT_BLOCKED")),
		Rules:         DefaultRules(),
	}
}

// DefaultRules returns the per-route limits. Assistant calls and PDF export are the
// strictest since each one costs an LLM request or a browser.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/sessions/*/suggestion", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/suggestion/stream", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/export", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		{Path: "/sessions", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/sessions/*/answers", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/sessions/*/save", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/sessions/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/documents/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		{Path: "/health", Method: "GET", Limit: 0},
	}
}

func envInt(getenv func(string) string, key string, defaultValue int) int {
	if value, err := strconv.Atoi(getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func envBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func envDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// parseClientList parses a comma-separated list of client ids (IPs)
func parseClientList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result[id] = true
		}
	}
	return result
}
