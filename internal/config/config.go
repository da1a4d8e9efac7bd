// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by ApplyDefaults
const (
	DefaultPort                     = "8080"
	DefaultSuggestionTimeoutSeconds = 30
	DefaultSessionTTLMinutes        = 120
	DefaultMaxSessions              = 1000
	DefaultHistoryWindow            = 10
	DefaultTemplate                 = "classic"
)

// Config represents the configuration that can be loaded from a JSON file.
// Environment variables override file values; missing values use defaults.
type Config struct {
	// Conversation
	Script        string `json:"script,omitempty"`         // Path to a step script; empty uses the embedded one
	Strict        bool   `json:"strict,omitempty"`         // Fail submissions on unresolvable field paths
	HistoryWindow int    `json:"history_window,omitempty"` // Transcript entries forwarded to the assistant

	// Assistant
	APIKey                   string `json:"api_key,omitempty"`                    // Gemini API key
	SuggestionTimeoutSeconds int    `json:"suggestion_timeout_seconds,omitempty"` // Per-suggestion timeout

	// Models overrides the Gemini model per tier ("lite", "standard")
	Models map[string]string `json:"models,omitempty"`

	// Rendering
	DefaultTemplate string   `json:"default_template,omitempty"` // Template used when none is requested
	Templates       []string `json:"templates,omitempty"`        // Extra template files to register

	// Server
	Port              string   `json:"port,omitempty"`
	SessionTTLMinutes int      `json:"session_ttl_minutes,omitempty"` // Idle time before a session expires
	MaxSessions       int      `json:"max_sessions,omitempty"`        // Live sessions kept in memory
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`     // CORS origins; empty allows all
	DatabaseURL       string   `json:"database_url,omitempty"`        // PostgreSQL connection URL

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads path when given (an empty path starts from a blank config), then applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("CV_GEMINI_MODEL"); v != "" {
		if c.Models == nil {
			c.Models = make(map[string]string)
		}
		c.Models["standard"] = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := getenv("CV_SCRIPT"); v != "" {
		c.Script = v
	}
	if v := getenv("CV_SUGGESTION_TIMEOUT"); v != "" {
		n, err := parseDuration(v, time.Second)
		if err != nil {
			return fmt.Errorf("config error: CV_SUGGESTION_TIMEOUT: %w", err)
		}
		c.SuggestionTimeoutSeconds = n
	}
	if v := getenv("CV_SESSION_TTL"); v != "" {
		n, err := parseDuration(v, time.Minute)
		if err != nil {
			return fmt.Errorf("config error: CV_SESSION_TTL: %w", err)
		}
		c.SessionTTLMinutes = n
	}
	if v := getenv("CV_MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: CV_MAX_SESSIONS: %w", err)
		}
		c.MaxSessions = n
	}
	if v := getenv("CV_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	return nil
}

// parseDuration accepts a Go duration ("90s") or a bare integer in unit and returns
// a count of unit. Partial units round up so a short duration never reads as unset.
func parseDuration(value string, unit time.Duration) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", value)
	}
	n := d / unit
	if d%unit != 0 {
		n++
	}
	return int(n), nil
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.SuggestionTimeoutSeconds == 0 {
		c.SuggestionTimeoutSeconds = DefaultSuggestionTimeoutSeconds
	}
	if c.SessionTTLMinutes == 0 {
		c.SessionTTLMinutes = DefaultSessionTTLMinutes
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = DefaultMaxSessions
	}
	if c.HistoryWindow == 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.DefaultTemplate == "" {
		c.DefaultTemplate = DefaultTemplate
	}
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if c.SuggestionTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'suggestion_timeout_seconds' must be non-negative")
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("config error: 'session_ttl_minutes' must be non-negative")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("config error: 'max_sessions' must be non-negative")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("config error: 'history_window' must be non-negative")
	}

	for tier := range c.Models {
		if tier != "lite" && tier != "standard" {
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}

	if c.Port != "" {
		if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("config error: invalid port %q", c.Port)
		}
	}

	// Validate file paths exist (if specified)
	if c.Script != "" {
		if _, err := os.Stat(c.Script); os.IsNotExist(err) {
			return fmt.Errorf("config error: script file not found: %s", c.Script)
		}
	}
	for _, tmpl := range c.Templates {
		if _, err := os.Stat(tmpl); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", tmpl)
		}
	}

	return nil
}

// SuggestionTimeout returns the per-suggestion timeout
func (c *Config) SuggestionTimeout() time.Duration {
	return time.Duration(c.SuggestionTimeoutSeconds) * time.Second
}

// SessionTTL returns the idle lifetime of a session
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
