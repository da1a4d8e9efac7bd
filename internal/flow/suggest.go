package flow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// AssistantUnavailableNotice is appended to the transcript when a suggestion fails
const AssistantUnavailableNotice = "L'assistant est momentanément indisponible. Vous pouvez saisir votre réponse manuellement."

// Assistant produces free-text suggestions. The engine treats it as an opaque text producer.
type Assistant interface {
	Suggest(ctx context.Context, req types.SuggestionRequest) (string, error)
}

// RequestSuggestion asks the assistant for a proposed answer to stepID. The text is
// offered for the user to edit and submit; the document and state are not touched.
// On failure a neutral notice is appended to the transcript and there is no retry.
func (e *Engine) RequestSuggestion(ctx context.Context, stepID string) (string, error) {
	req, err := e.BeginSuggestion(stepID)
	if err != nil {
		return "", err
	}
	text, err := e.CallAssistant(ctx, req)
	return e.CompleteSuggestion(stepID, text, err)
}

// BeginSuggestion checks that stepID can take a suggestion and builds the request.
// Together with CallAssistant and CompleteSuggestion it lets a caller release its
// lock on the engine while the assistant runs.
func (e *Engine) BeginSuggestion(stepID string) (types.SuggestionRequest, error) {
	if e.completed {
		return types.SuggestionRequest{}, ErrFlowComplete
	}

	step := e.Current()
	if stepID != step.ID {
		return types.SuggestionRequest{}, fmt.Errorf("%w: expected %q, got %q", ErrStaleStep, step.ID, stepID)
	}
	if step.Intent == "" {
		return types.SuggestionRequest{}, ErrSuggestionUnsupported
	}
	return e.SuggestionRequest(), nil
}

// CallAssistant runs the assistant under the suggestion timeout. It reads no engine
// state and may run without the caller's lock.
func (e *Engine) CallAssistant(ctx context.Context, req types.SuggestionRequest) (string, error) {
	if e.opts.Assistant == nil {
		return "", fmt.Errorf("no assistant configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.SuggestionTimeout)
	defer cancel()

	return e.opts.Assistant.Suggest(ctx, req)
}

// CompleteSuggestion records the outcome of CallAssistant for stepID
func (e *Engine) CompleteSuggestion(stepID, text string, callErr error) (string, error) {
	if e.completed {
		return "", ErrFlowComplete
	}
	if current := e.Current().ID; current != stepID {
		return "", fmt.Errorf("%w: expected %q, got %q", ErrStaleStep, current, stepID)
	}

	if callErr != nil {
		return "", e.assistantFailed(stepID, callErr)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", e.assistantFailed(stepID, fmt.Errorf("empty suggestion"))
	}

	e.offered = &offeredSuggestion{stepID: stepID, text: text}
	return text, nil
}

func (e *Engine) assistantFailed(stepID string, cause error) error {
	log.Printf("[FLOW] Suggestion failed for step %q: %v", stepID, cause)
	e.transcript = append(e.transcript, types.TranscriptEntry{
		Role: types.RoleEngine,
		Text: AssistantUnavailableNotice,
	})
	return &AssistantUnavailableError{StepID: stepID, Cause: cause}
}

// SuggestionRequest builds the assistant payload for the current step
func (e *Engine) SuggestionRequest() types.SuggestionRequest {
	step := e.Current()
	return types.SuggestionRequest{
		Intent:  step.Intent,
		Prompt:  step.Prompt,
		Fields:  e.contextFields(step.Intent),
		History: e.history(),
	}
}

// history returns the last HistoryWindow transcript entries as turns
func (e *Engine) history() []types.Turn {
	start := len(e.transcript) - e.opts.HistoryWindow
	if start < 0 {
		start = 0
	}

	turns := make([]types.Turn, 0, len(e.transcript)-start)
	for _, entry := range e.transcript[start:] {
		turns = append(turns, types.Turn{Role: entry.Role, Text: entry.Text})
	}
	return turns
}

// contextFields selects the parts of the document relevant to an intent
func (e *Engine) contextFields(intent string) map[string]string {
	doc := e.doc
	fields := map[string]string{
		"title": doc.PersonalInfo.Title,
	}

	switch intent {
	case "summary":
		fields["fullName"] = doc.PersonalInfo.FullName
		fields["experiences"] = experienceHeadlines(doc.Experiences)
		fields["skills"] = skillList(doc.SkillGroups)
	case "achievements":
		if i := e.state.ExperienceIndex; i < len(doc.Experiences) {
			exp := doc.Experiences[i]
			fields["position"] = exp.Position
			fields["company"] = exp.Company
			fields["period"] = joinPeriod(exp.StartDate, exp.EndDate)
		}
	case "education":
		if i := e.state.EducationIndex; i < len(doc.Education) {
			edu := doc.Education[i]
			fields["degree"] = edu.Degree
			fields["school"] = edu.School
		}
	case "skills":
		if i := e.state.SkillIndex; i < len(doc.SkillGroups) {
			fields["category"] = doc.SkillGroups[i].Category
		}
		fields["experiences"] = experienceHeadlines(doc.Experiences)
	}
	return fields
}

func experienceHeadlines(experiences []types.Experience) string {
	var lines []string
	for _, exp := range experiences {
		if exp.IsEmpty() {
			continue
		}
		line := exp.Position
		if exp.Company != "" {
			line += " chez " + exp.Company
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "; ")
}

func skillList(groups []types.SkillGroup) string {
	var items []string
	for _, g := range groups {
		items = append(items, g.Items...)
	}
	return strings.Join(items, ", ")
}

func joinPeriod(start, end string) string {
	if start == "" || start == end {
		return start
	}
	return start + " - " + end
}
