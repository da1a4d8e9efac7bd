// Package prompts holds the assistant's prompt templates. Templates are embedded JSON
// files mapping a key to a text/template body; placeholders read {{.key}}.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

// SuggestionsFile is the embedded catalog used by the assistant
const SuggestionsFile = "suggestions.json"

// SystemKey is the catalog entry holding the system instruction
const SystemKey = "system"

//go:embed *.json
var promptFiles embed.FS

// Catalog is a parsed prompt file
type Catalog struct {
	name      string
	system    string
	templates map[string]*template.Template
}

// Parse builds a catalog from JSON content. Every entry except SystemKey must be a
// valid template.
func Parse(name string, data []byte) (*Catalog, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}

	c := &Catalog{
		name:      name,
		system:    strings.TrimSpace(raw[SystemKey]),
		templates: make(map[string]*template.Template, len(raw)),
	}
	for key, body := range raw {
		if key == SystemKey {
			continue
		}
		tmpl, err := template.New(key).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("prompt %s/%s: %w", name, key, err)
		}
		c.templates[key] = tmpl
	}
	return c, nil
}

// Load reads and parses an embedded prompt file
func Load(filename string) (*Catalog, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	return Parse(filename, data)
}

var (
	suggestionsOnce sync.Once
	suggestions     *Catalog
	suggestionsErr  error
)

// Suggestions returns the embedded suggestion catalog, parsed once
func Suggestions() (*Catalog, error) {
	suggestionsOnce.Do(func() {
		suggestions, suggestionsErr = Load(SuggestionsFile)
	})
	return suggestions, suggestionsErr
}

// System returns the system instruction, empty when the file has none
func (c *Catalog) System() string {
	return c.system
}

// Has reports whether the catalog has a prompt for key
func (c *Catalog) Has(key string) bool {
	_, ok := c.templates[key]
	return ok
}

// Keys returns the prompt keys, sorted, without the system entry
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for key := range c.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Render fills the prompt for key. Every placeholder needs a value in data, possibly empty.
func (c *Catalog) Render(key string, data map[string]string) (string, error) {
	tmpl, ok := c.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, c.name)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("prompt %s/%s: %w", c.name, key, err)
	}
	return sb.String(), nil
}
