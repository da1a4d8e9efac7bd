// Package llm wraps the Gemini chat API used by the CV assistant.
package llm

import (
	"fmt"
	"maps"
)

// ModelTier picks a model by how much writing a suggestion needs
type ModelTier string

const (
	// TierLite is for short completions such as skill lists
	TierLite ModelTier = "lite"
	// TierStandard is for CV prose: summaries, achievements
	TierStandard ModelTier = "standard"
)

// Generation defaults
const (
	DefaultChatTemperature float32 = 0.7
	DefaultMaxOutputTokens int32   = 512
)

// Config holds the model settings for the client
type Config struct {
	Models          map[ModelTier]string
	ChatTemperature float32
	MaxOutputTokens int32
}

// DefaultConfig returns the Gemini models used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		ChatTemperature: DefaultChatTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// GetModel returns the model for tier, falling back to the standard then the lite model
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithOverrides returns a copy of c with models replaced per tier name. Unknown tier
// names are an error so that typos in config files surface.
func (c *Config) WithOverrides(models map[string]string) (*Config, error) {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string)
	}

	for name, model := range models {
		tier := ModelTier(name)
		if tier != TierLite && tier != TierStandard {
			return nil, fmt.Errorf("unknown model tier %q", name)
		}
		if model != "" {
			out.Models[tier] = model
		}
	}
	return &out, nil
}
