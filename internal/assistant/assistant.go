// Package assistant produces CV answer suggestions with an LLM. It only returns text;
// accepting a suggestion is the user's decision.
package assistant

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/prompts"
	"github.com/jonathan/cv-builder/internal/types"
)

// intentTiers picks a model per intent; prose gets the stronger tier
var intentTiers = map[string]llm.ModelTier{
	"summary":      llm.TierStandard,
	"achievements": llm.TierStandard,
	"education":    llm.TierLite,
	"skills":       llm.TierLite,
}

// contextKeys are the placeholders the suggestion prompts may reference
var contextKeys = []string{
	"title", "fullName", "experiences", "skills",
	"position", "company", "period",
	"degree", "school", "category",
}

// Assistant suggests answers for steps that declare an intent
type Assistant struct {
	client  llm.Client
	Verbose bool
}

// New creates an Assistant over client. The caller keeps ownership of client.
func New(client llm.Client) *Assistant {
	return &Assistant{client: client}
}

// Suggest returns a proposed answer for req. Any error means no suggestion.
func (a *Assistant) Suggest(ctx context.Context, req types.SuggestionRequest) (string, error) {
	if a.client == nil {
		return "", &APICallError{Message: "LLM client is not configured"}
	}

	chat, err := BuildChatRequest(req)
	if err != nil {
		return "", err
	}

	tier, ok := intentTiers[req.Intent]
	if !ok {
		tier = llm.TierStandard
	}

	if a.Verbose {
		log.Printf("[ASSISTANT] Requesting %s suggestion (%s, %d history turns)", req.Intent, a.client.GetModel(tier), len(chat.History))
	}

	reply, err := a.client.GenerateChat(ctx, chat, tier)
	if err != nil {
		return "", &APICallError{Message: "failed to generate suggestion", Cause: err}
	}

	text := llm.CleanSuggestion(reply)
	if text == "" {
		return "", &APICallError{Message: "model returned an empty suggestion"}
	}
	return text, nil
}

// BuildChatRequest renders the system instruction, history and intent prompt for req
func BuildChatRequest(req types.SuggestionRequest) (llm.ChatRequest, error) {
	if strings.TrimSpace(req.Intent) == "" {
		return llm.ChatRequest{}, &PromptError{Intent: req.Intent}
	}

	catalog, err := prompts.Suggestions()
	if err != nil {
		return llm.ChatRequest{}, &PromptError{Intent: req.Intent, Cause: err}
	}

	data := make(map[string]string, len(contextKeys)+1)
	for _, key := range contextKeys {
		data[key] = ""
	}
	for key, value := range req.Fields {
		data[key] = value
	}
	data["question"] = req.Prompt

	prompt, err := catalog.Render(req.Intent, data)
	if err != nil {
		return llm.ChatRequest{}, &PromptError{Intent: req.Intent, Cause: err}
	}

	history := make([]llm.Message, 0, len(req.History))
	for _, turn := range req.History {
		role := llm.RoleModel
		if turn.Role == types.RoleUser {
			role = llm.RoleUser
		}
		history = append(history, llm.Message{Role: role, Text: turn.Text})
	}

	return llm.ChatRequest{
		System:  catalog.System(),
		History: history,
		Prompt:  prompt,
	}, nil
}
