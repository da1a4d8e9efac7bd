// Package flow runs the CV conversation: it applies answers to the document through
// field paths, follows the script's branch rules and records the transcript.
//
// An Engine is owned by a single session and is not safe for concurrent use.
package flow

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/fieldpath"
	"github.com/jonathan/cv-builder/internal/script"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	// DefaultSuggestionTimeout bounds a single assistant call
	DefaultSuggestionTimeout = 30 * time.Second
	// DefaultHistoryWindow is how many prior turns are forwarded to the assistant
	DefaultHistoryWindow = 10
)

// Options configures an Engine
type Options struct {
	Assistant         Assistant
	SuggestionTimeout time.Duration
	HistoryWindow     int

	// Strict makes resolver failures fatal to the submission instead of logged no-ops.
	Strict bool

	// OnComplete fires once, when the terminal step is reached.
	OnComplete func(doc *types.StructuredDocument)
}

// Result is the outcome of one accepted answer
type Result struct {
	Entries   []types.TranscriptEntry `json:"entries"`
	StepID    string                  `json:"stepId"`
	Completed bool                    `json:"completed"`
}

// Snapshot is a read-only view of an engine
type Snapshot struct {
	State      State  `json:"state"`
	StepID     string `json:"stepId"`
	Prompt     string `json:"prompt"`
	Tip        string `json:"tip,omitempty"`
	Kind       string `json:"kind"`
	CanSuggest bool   `json:"canSuggest"`
	Progress   int    `json:"progress"`
	Completed  bool   `json:"completed"`
}

type offeredSuggestion struct {
	stepID string
	text   string
}

// Engine drives one conversation over a script
type Engine struct {
	script     *script.Script
	opts       Options
	state      State
	doc        *types.StructuredDocument
	transcript []types.TranscriptEntry
	offered    *offeredSuggestion
	completed  bool
}

// NewEngine starts a conversation at the first question. The welcome banner and the
// first prompt are already in the transcript.
func NewEngine(s *script.Script, opts Options) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("script is required")
	}
	if opts.SuggestionTimeout <= 0 {
		opts.SuggestionTimeout = DefaultSuggestionTimeout
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}

	e := &Engine{
		script: s,
		opts:   opts,
		state:  State{CurrentStepIndex: script.InitialPosition},
		doc:    types.NewStructuredDocument(),
	}
	e.transcript = append(e.transcript, promptEntry(s.Welcome()))
	e.transcript = append(e.transcript, promptEntry(e.Current()))
	return e, nil
}

// Submit applies an answer to stepID, which must be the current step.
// A ValidationError leaves the engine untouched.
func (e *Engine) Submit(stepID, rawInput string) (*Result, error) {
	if e.completed {
		return nil, ErrFlowComplete
	}

	step := e.Current()
	if stepID != step.ID {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrStaleStep, step.ID, stepID)
	}

	input := strings.TrimSpace(rawInput)
	skipped := false

	switch step.Kind {
	case script.KindPlain:
		if input == "" {
			return nil, &ValidationError{StepID: step.ID, Prompt: step.Prompt}
		}
	case script.KindOptional:
		skipped = IsSkip(input)
	}

	if step.HasField() && !skipped {
		if err := e.write(step, input); err != nil {
			return nil, err
		}
	}

	next := e.nextPosition(step, input, skipped)

	user := types.TranscriptEntry{Role: types.RoleUser, Text: input}
	if skipped {
		user.Text = SkipMarker
	} else if e.offered != nil && e.offered.stepID == step.ID && e.offered.text == input {
		user.IsAIGenerated = true
	}

	e.state.CurrentStepIndex = next
	e.offered = nil

	nextStep := e.Current()
	entries := []types.TranscriptEntry{user, promptEntry(nextStep)}
	e.transcript = append(e.transcript, entries...)

	if nextStep.IsTerminal() {
		e.completed = true
		if e.opts.OnComplete != nil {
			e.opts.OnComplete(e.doc)
		}
	}

	return &Result{
		Entries:   entries,
		StepID:    nextStep.ID,
		Completed: e.completed,
	}, nil
}

func (e *Engine) write(step script.Step, input string) error {
	index := e.state.Counter(step.Target.Section)
	if err := fieldpath.Apply(e.doc, step.Target, index, input); err != nil {
		if e.opts.Strict {
			return err
		}
		log.Printf("[FLOW] Ignoring write for step %q (%s): %v", step.ID, step.Target, err)
	}
	return nil
}

// nextPosition follows the branch rules. It is the only place counters move.
func (e *Engine) nextPosition(step script.Step, input string, skipped bool) int {
	advance := step.Position + 1

	switch step.Kind {
	case script.KindConfirm:
		if IsAffirmative(input) {
			if loop, ok := step.LoopPosition(); ok {
				e.state.increment(step.Repeats)
				return loop
			}
			return advance
		}
		if skip, ok := step.SkipPosition(); ok {
			return skip
		}
		return advance
	case script.KindOptional:
		if skip, ok := step.SkipPosition(); ok && skipped {
			return skip
		}
	}
	return advance
}

func promptEntry(step script.Step) types.TranscriptEntry {
	return types.TranscriptEntry{Role: types.RoleEngine, Text: step.Prompt, Tip: step.Tip}
}

// Current returns the step awaiting an answer (the terminal step once complete)
func (e *Engine) Current() script.Step {
	return e.script.Step(e.state.CurrentStepIndex)
}

// State returns a copy of the conversation state
func (e *Engine) State() State {
	return e.state
}

// Document returns the document being built. Callers must treat it as read-only.
func (e *Engine) Document() *types.StructuredDocument {
	return e.doc
}

// Transcript returns a copy of every entry so far
func (e *Engine) Transcript() []types.TranscriptEntry {
	out := make([]types.TranscriptEntry, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// Completed reports whether the terminal step was reached
func (e *Engine) Completed() bool {
	return e.completed
}

// Progress is the current position as a percentage of the script
func (e *Engine) Progress() int {
	last := e.script.TerminalPosition()
	if last <= 0 {
		return 100
	}
	return e.state.CurrentStepIndex * 100 / last
}

// Snapshot returns a read-only summary of the engine
func (e *Engine) Snapshot() Snapshot {
	step := e.Current()
	return Snapshot{
		State:      e.state,
		StepID:     step.ID,
		Prompt:     step.Prompt,
		Tip:        step.Tip,
		Kind:       string(step.Kind),
		CanSuggest: step.Intent != "" && !e.completed,
		Progress:   e.Progress(),
		Completed:  e.completed,
	}
}
