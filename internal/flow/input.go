package flow

import "strings"

// SkipMarker is shown in the transcript in place of a skipped answer
const SkipMarker = "(passé)"

// skipSentinels suppress the write on optional steps
var skipSentinels = map[string]bool{
	"":        true,
	"skip":    true,
	"-":       true,
	"passer":  true,
	"ignorer": true,
	"aucun":   true,
	"aucune":  true,
	"n/a":     true,
}

// affirmatives are the only answers a confirm step treats as "yes".
// Anything else, including "peut-être", takes the negative branch.
var affirmatives = map[string]bool{
	"oui":        true,
	"o":          true,
	"ouais":      true,
	"yes":        true,
	"y":          true,
	"ok":         true,
	"d'accord":   true,
	"bien sûr":   true,
	"volontiers": true,
}

func normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimRight(s, ".!? ")
	return strings.ReplaceAll(s, "’", "'")
}

// IsSkip reports whether input is a skip sentinel
func IsSkip(input string) bool {
	return skipSentinels[normalize(input)]
}

// IsAffirmative classifies a confirm answer
func IsAffirmative(input string) bool {
	return affirmatives[normalize(input)]
}
