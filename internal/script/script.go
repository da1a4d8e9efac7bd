package script

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-builder/internal/fieldpath"
	"github.com/jonathan/cv-builder/internal/prompts"
	"github.com/jonathan/cv-builder/internal/schemas"
)

//go:embed default_steps.json
var defaultSteps []byte

// InitialPosition is where a conversation starts. Position 0 is the welcome banner,
// shown once and never re-entered.
const InitialPosition = 1

// Script is an immutable, validated step table
type Script struct {
	steps []Step
	byID  map[string]int
}

// file is the on-disk layout of a step script
type file struct {
	Steps []StepDefinition `json:"steps"`
}

// Default returns the built-in French CV script
func Default() (*Script, error) {
	return Load(defaultSteps)
}

// MustDefault is like Default but panics on error. The embedded script is covered by tests.
func MustDefault() *Script {
	s, err := Default()
	if err != nil {
		panic(fmt.Sprintf("failed to load default script: %v", err))
	}
	return s
}

// LoadFile reads and validates a step script from a JSON file
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ScriptError{Message: fmt.Sprintf("failed to read script file %s", path), Cause: err}
	}
	return Load(data)
}

// Load validates raw JSON against the script schema, then builds the script
func Load(data []byte) (*Script, error) {
	if err := schemas.Validate(schemas.StepScript, data); err != nil {
		return nil, &ScriptError{Message: "script does not match schema", Cause: err}
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &ScriptError{Message: "failed to unmarshal script JSON", Cause: err}
	}
	return New(f.Steps)
}

// New validates definitions and builds a Script. Every field path is parsed and every
// branch target resolved here, so nothing is re-checked while a conversation runs.
func New(defs []StepDefinition) (*Script, error) {
	if len(defs) < 3 {
		return nil, &ScriptError{Message: "a script needs a welcome step, at least one question and the terminal step"}
	}

	validate := validator.New()
	s := &Script{
		steps: make([]Step, len(defs)),
		byID:  make(map[string]int, len(defs)),
	}

	for i, def := range defs {
		if err := validate.Struct(def); err != nil {
			return nil, &ScriptError{StepID: def.ID, Message: fmt.Sprintf("invalid definition at position %d", i), Cause: err}
		}
		if _, dup := s.byID[def.ID]; dup {
			return nil, &ScriptError{StepID: def.ID, Message: "duplicate step id"}
		}
		s.byID[def.ID] = i

		step := Step{StepDefinition: def, Position: i, skipPos: -1, loopPos: -1}
		if def.Field != "" {
			target, err := fieldpath.Parse(def.Field)
			if err != nil {
				return nil, &ScriptError{StepID: def.ID, Message: "bad field", Cause: err}
			}
			step.Target = target
		}
		if err := checkIntent(def); err != nil {
			return nil, err
		}
		s.steps[i] = step
	}

	if err := s.checkEnds(); err != nil {
		return nil, err
	}
	for i := range s.steps {
		if err := s.resolveBranches(&s.steps[i]); err != nil {
			return nil, err
		}
	}
	if err := s.checkReachable(); err != nil {
		return nil, err
	}

	return s, nil
}

// checkIntent makes sure the assistant has a prompt for the step's intent
func checkIntent(def StepDefinition) error {
	if def.Intent == "" {
		return nil
	}
	catalog, err := prompts.Suggestions()
	if err != nil {
		return &ScriptError{StepID: def.ID, Message: "failed to load suggestion prompts", Cause: err}
	}
	if !catalog.Has(def.Intent) {
		return &ScriptError{StepID: def.ID, Message: fmt.Sprintf("unknown intent %q (known: %v)", def.Intent, catalog.Keys())}
	}
	return nil
}

func (s *Script) checkEnds() error {
	welcome := s.steps[0]
	if welcome.HasField() || welcome.SkipTo != "" || welcome.LoopTo != "" {
		return &ScriptError{StepID: welcome.ID, Message: "the welcome step cannot write fields or branch"}
	}

	last := &s.steps[len(s.steps)-1]
	if last.ID != TerminalID {
		return &ScriptError{StepID: last.ID, Message: fmt.Sprintf("the last step must be %q", TerminalID)}
	}
	if last.HasField() || last.SkipTo != "" || last.LoopTo != "" {
		return &ScriptError{StepID: last.ID, Message: "the terminal step cannot write fields or branch"}
	}
	last.terminal = true

	for _, step := range s.steps {
		if step.Kind == KindConfirm && step.HasField() {
			return &ScriptError{StepID: step.ID, Message: "confirm steps cannot write fields"}
		}
	}
	return nil
}

func (s *Script) resolveBranches(step *Step) error {
	if step.SkipTo != "" {
		if step.Kind == KindPlain {
			return &InvalidBranchTargetError{StepID: step.ID, Branch: "skipTo", Target: step.SkipTo, Reason: "plain steps always advance by one"}
		}
		pos, err := s.branchTarget(step, "skipTo", step.SkipTo)
		if err != nil {
			return err
		}
		step.skipPos = pos
	}

	if step.LoopTo != "" {
		if step.Kind != KindConfirm {
			return &InvalidBranchTargetError{StepID: step.ID, Branch: "loopTo", Target: step.LoopTo, Reason: "only confirm steps can loop"}
		}
		pos, err := s.branchTarget(step, "loopTo", step.LoopTo)
		if err != nil {
			return err
		}
		if pos >= step.Position {
			return &InvalidBranchTargetError{StepID: step.ID, Branch: "loopTo", Target: step.LoopTo, Reason: "loops must go backwards"}
		}
		if s.steps[pos].Kind != KindPlain {
			return &InvalidBranchTargetError{StepID: step.ID, Branch: "loopTo", Target: step.LoopTo, Reason: "loop target must be a required step"}
		}
		target := s.steps[pos].Target
		if !target.Repeated() {
			return &InvalidBranchTargetError{StepID: step.ID, Branch: "loopTo", Target: step.LoopTo, Reason: "loop target must write a repeatable section"}
		}
		step.loopPos = pos
		step.Repeats = target.Section
	}
	return nil
}

func (s *Script) branchTarget(step *Step, branch, id string) (int, error) {
	pos, ok := s.byID[id]
	if !ok {
		return 0, &InvalidBranchTargetError{StepID: step.ID, Branch: branch, Target: id, Reason: "no such step"}
	}
	if pos == 0 {
		return 0, &InvalidBranchTargetError{StepID: step.ID, Branch: branch, Target: id, Reason: "the welcome step cannot be re-entered"}
	}
	return pos, nil
}

// checkReachable walks every transition from the first question
func (s *Script) checkReachable() error {
	seen := make([]bool, len(s.steps))
	queue := []int{InitialPosition}
	seen[InitialPosition] = true

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, next := range s.successors(pos) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	var unreachable []string
	for pos := InitialPosition; pos < len(s.steps); pos++ {
		if !seen[pos] {
			unreachable = append(unreachable, s.steps[pos].ID)
		}
	}
	if len(unreachable) > 0 {
		return &UnreachableStepError{StepIDs: unreachable}
	}
	return nil
}

func (s *Script) successors(pos int) []int {
	step := s.steps[pos]
	if step.terminal {
		return nil
	}

	skip, hasSkip := step.SkipPosition()
	loop, hasLoop := step.LoopPosition()

	// A confirm step with both branches never falls through.
	if step.Kind == KindConfirm && hasSkip && hasLoop {
		return []int{loop, skip}
	}

	next := []int{pos + 1}
	if hasSkip {
		next = append(next, skip)
	}
	if hasLoop {
		next = append(next, loop)
	}
	return next
}

// Len returns the number of steps, welcome and terminal included
func (s *Script) Len() int {
	return len(s.steps)
}

// Step returns the step at position. It panics on out-of-range positions.
func (s *Script) Step(pos int) Step {
	return s.steps[pos]
}

// Lookup finds a step by id
func (s *Script) Lookup(id string) (Step, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return Step{}, false
	}
	return s.steps[pos], true
}

// Position returns the position of a step id
func (s *Script) Position(id string) (int, bool) {
	pos, ok := s.byID[id]
	return pos, ok
}

// Welcome returns the banner step
func (s *Script) Welcome() Step {
	return s.steps[0]
}

// TerminalPosition returns the position of the closing step
func (s *Script) TerminalPosition() int {
	return len(s.steps) - 1
}

// Steps returns a copy of the step table
func (s *Script) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}
