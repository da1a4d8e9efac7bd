package fieldpath

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// presentMarkers mark an ongoing period when found in its end segment
var presentMarkers = []string{"présent", "present"}

// Period is a parsed "start - end" value
type Period struct {
	Start   string
	End     string
	Current bool
}

// ParsePeriod splits value on the first hyphen. A missing or blank end segment
// repeats the start.
func ParsePeriod(value string) Period {
	start, end, found := strings.Cut(value, "-")
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if !found || end == "" {
		end = start
	}

	lower := strings.ToLower(end)
	current := false
	for _, marker := range presentMarkers {
		if strings.Contains(lower, marker) {
			current = true
			break
		}
	}

	return Period{Start: start, End: end, Current: current}
}

// SplitList splits a comma-separated value, trimming items and dropping empty ones
func SplitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseLanguages parses "Name - Level" pairs separated by commas
func ParseLanguages(value string) []types.Language {
	languages := []types.Language{}
	for _, item := range SplitList(value) {
		name, level, _ := strings.Cut(item, "-")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		languages = append(languages, types.Language{
			Name:  name,
			Level: strings.TrimSpace(level),
		})
	}
	return languages
}
