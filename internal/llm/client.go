package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Role identifies the speaker of a chat message
type Role string

const (
	// RoleUser is the person filling in the CV
	RoleUser Role = "user"
	// RoleModel is the assistant side of the conversation
	RoleModel Role = "model"
)

// Message is one prior turn forwarded to the model
type Message struct {
	Role Role
	Text string
}

// ChatRequest is a single chat completion: a system instruction, prior turns and the new prompt
type ChatRequest struct {
	System      string
	History     []Message
	Prompt      string
	Temperature float32
}

// Client is the chat completion surface the assistant needs
type Client interface {
	// GenerateChat continues a conversation and returns the model's reply
	GenerateChat(ctx context.Context, req ChatRequest, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client. A nil config uses DefaultConfig.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateChat sends req.Prompt on a chat session seeded with req.History
func (c *GeminiClient) GenerateChat(ctx context.Context, req ChatRequest, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}

	model := c.client.GenerativeModel(modelName)
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.config.ChatTemperature
	}
	model.SetTemperature(temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	session := model.StartChat()
	session.History = buildHistory(req.History)

	resp, err := session.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to send chat message: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// buildHistory converts messages into chat contents. Gemini requires the history to open
// with a user turn and to alternate roles, so leading model turns are dropped and
// consecutive turns from the same role are merged.
func buildHistory(messages []Message) []*genai.Content {
	var history []*genai.Content
	for _, msg := range messages {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		role := string(msg.Role)
		if role != string(RoleModel) {
			role = string(RoleUser)
		}
		if len(history) == 0 && role == string(RoleModel) {
			continue
		}

		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, genai.Text(text))
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	return history
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
