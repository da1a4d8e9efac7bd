package types

// Role identifies who produced a transcript entry
type Role string

const (
	// RoleEngine marks prompts and notices emitted by the flow engine
	RoleEngine Role = "engine"
	// RoleUser marks answers typed (or accepted) by the user
	RoleUser Role = "user"
)

// TranscriptEntry is one displayed message of the conversation.
// Entries are append-only and never read back by the engine.
type TranscriptEntry struct {
	Role          Role   `json:"role"`
	Text          string `json:"text"`
	Tip           string `json:"tip,omitempty"`
	IsAIGenerated bool   `json:"isAIGenerated,omitempty"`
}

// Turn is a prior conversation message forwarded to the assistant
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// SuggestionRequest is what the engine sends to an assistant for a step
type SuggestionRequest struct {
	Intent  string            `json:"intent"`
	Prompt  string            `json:"prompt"`
	Fields  map[string]string `json:"fields"`
	History []Turn            `json:"history"`
}
