package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/cv-builder/internal/assistant"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/script"
)

// loadSettings loads the config file with environment overrides and applies --verbose
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Verbose = cfg.Verbose || verbose
	return cfg, nil
}

// loadScript returns the configured step script, or the embedded one
func loadScript(cfg *config.Config) (*script.Script, error) {
	if cfg.Script == "" {
		return script.Default()
	}
	s, err := script.LoadFile(cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", cfg.Script, err)
	}
	return s, nil
}

// newRenderer builds the renderer with the built-in templates plus the configured files
func newRenderer(cfg *config.Config, extra ...string) (*rendering.Renderer, error) {
	r, err := rendering.NewRenderer()
	if err != nil {
		return nil, err
	}
	files := append(append([]string{}, cfg.Templates...), extra...)
	for _, path := range files {
		tmpl, err := r.RegisterFile(path)
		if err != nil {
			return nil, err
		}
		if cfg.Verbose {
			log.Printf("[RENDER] Registered template %s (%s) from %s", tmpl.ID, tmpl.Format, path)
		}
	}
	return r, nil
}

// newAssistant connects to Gemini. Without an API key it returns a nil assistant and
// suggestions are reported as unavailable.
func newAssistant(ctx context.Context, cfg *config.Config) (flow.Assistant, func(), error) {
	if cfg.APIKey == "" {
		if cfg.Verbose {
			log.Printf("[ASSISTANT] GEMINI_API_KEY not set, suggestions disabled")
		}
		return nil, func() {}, nil
	}

	llmCfg, err := llm.DefaultConfig().WithOverrides(cfg.Models)
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.NewGeminiClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a := assistant.New(client)
	a.Verbose = cfg.Verbose

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Printf("[ASSISTANT] Failed to close LLM client: %v", err)
		}
	}
	return a, closeFn, nil
}

// engineOptions maps the config onto flow options
func engineOptions(cfg *config.Config, a flow.Assistant) flow.Options {
	return flow.Options{
		Assistant:         a,
		SuggestionTimeout: cfg.SuggestionTimeout(),
		HistoryWindow:     cfg.HistoryWindow,
		Strict:            cfg.Strict,
	}
}
