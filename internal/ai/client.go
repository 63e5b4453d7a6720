package ai

import "context"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultMaxTokens = 4096
	temperature      = 0.2
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends a conversation to a text-generation model and returns the reply text.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// UserPrompt wraps a single prompt into a one-message conversation.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}
