package flow

import (
	"context"
	"testing"

	"github.com/jonathan/cv-builder/internal/script"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	text  string
	err   error
	calls int
	last  types.SuggestionRequest
}

func (f *fakeAssistant) Suggest(_ context.Context, req types.SuggestionRequest) (string, error) {
	f.calls++
	f.last = req
	return f.text, f.err
}

type assistantFunc func(ctx context.Context, req types.SuggestionRequest) (string, error)

func (f assistantFunc) Suggest(ctx context.Context, req types.SuggestionRequest) (string, error) {
	return f(ctx, req)
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(script.MustDefault(), opts)
	require.NoError(t, err)
	return e
}

// engineAt returns a fresh engine positioned on stepID
func engineAt(t *testing.T, stepID string, opts Options) *Engine {
	t.Helper()
	e := newEngine(t, opts)
	pos, ok := e.script.Position(stepID)
	require.True(t, ok, "unknown step %s", stepID)
	e.state.CurrentStepIndex = pos
	return e
}

// answer submits input to whatever step is current
func answer(t *testing.T, e *Engine, inputs ...string) *Result {
	t.Helper()
	var res *Result
	for _, input := range inputs {
		var err error
		res, err = e.Submit(e.Current().ID, input)
		require.NoError(t, err, "step %s input %q", e.Current().ID, input)
	}
	return res
}
