package ratelimit

import "strings"

// MatchRule returns the rule for a request, or nil when only the default applies.
// Exact paths win over "*" patterns, which win over "/"-terminated prefixes.
func MatchRule(path string, method string, rules []Rule) *Rule {
	var pattern, prefix *Rule
	for i := range rules {
		rule := &rules[i]
		if rule.Method != method {
			continue
		}
		switch {
		case rule.Path == path:
			return rule
		case pattern == nil && strings.Contains(rule.Path, "*") && matchSegments(rule.Path, path):
			pattern = rule
		case prefix == nil && strings.HasSuffix(rule.Path, "/") && strings.HasPrefix(path, rule.Path):
			prefix = rule
		}
	}
	if pattern != nil {
		return pattern
	}
	return prefix
}

// matchSegments reports whether path has the same segments as pattern, where a "*"
// segment matches any non-empty segment
func matchSegments(pattern, path string) bool {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i, part := range patternParts {
		if pathParts[i] == "" || (part != "*" && part != pathParts[i]) {
			return false
		}
	}
	return true
}
