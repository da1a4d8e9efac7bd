// Package script defines the static, ordered step table that drives the CV conversation.
// Scripts are validated once when loaded and are read-only afterwards.
package script

import (
	"github.com/jonathan/cv-builder/internal/fieldpath"
)

// Kind controls how a step treats its input
type Kind string

const (
	// KindPlain requires a non-empty answer
	KindPlain Kind = "plain"
	// KindOptional accepts a skip sentinel, which suppresses the write
	KindOptional Kind = "optional"
	// KindConfirm is a yes/no gate
	KindConfirm Kind = "confirm"
)

// TerminalID is the id of the closing step. It has no outgoing transitions.
const TerminalID = "complete"

// StepDefinition is the serialized form of a step
type StepDefinition struct {
	ID     string `json:"id" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
	Tip    string `json:"tip,omitempty"`
	Field  string `json:"field,omitempty"`
	Kind   Kind   `json:"kind" validate:"required,oneof=plain optional confirm"`
	SkipTo string `json:"skipTo,omitempty"`
	LoopTo string `json:"loopTo,omitempty"`
	// Intent names what the assistant should produce for this step; empty means no suggestions.
	Intent string `json:"intent,omitempty"`
}

// Step is a validated step with its field path and branches resolved
type Step struct {
	StepDefinition
	Position int
	// Target is the zero Target when the step writes nothing.
	Target fieldpath.Target
	// Repeats is the section whose counter a loopTo increments.
	Repeats  fieldpath.Section
	skipPos  int
	loopPos  int
	terminal bool
}

// HasField reports whether the step writes into the document
func (s Step) HasField() bool {
	return !s.Target.IsZero()
}

// SkipPosition returns the skipTo position, if any
func (s Step) SkipPosition() (int, bool) {
	return s.skipPos, s.skipPos >= 0
}

// LoopPosition returns the loopTo position, if any
func (s Step) LoopPosition() (int, bool) {
	return s.loopPos, s.loopPos >= 0
}

// IsTerminal reports whether this is the closing step
func (s Step) IsTerminal() bool {
	return s.terminal
}
