package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient calls the Google Generative Language API (Gemini) through the genai SDK.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiClient creates a Gemini client; timeout bounds every single attempt.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration, maxTokens int) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &UpstreamError{Provider: ProviderGemini, Err: errors.New("gemini api key is missing")}
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: trimmed + "/"}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Chat sends the messages to Gemini and returns the concatenated reply text.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, error) {
	systemParts := make([]*genai.Part, 0)
	contents := make([]*genai.Content, 0, len(messages))

	for _, message := range messages {
		role := strings.ToLower(strings.TrimSpace(message.Role))
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch role {
		case "system":
			systemParts = append(systemParts, genai.NewPartFromText(text))
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}

	if len(contents) == 0 {
		return "", errors.New("gemini request has no user content")
	}

	generateConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](temperature),
		MaxOutputTokens:  int32(resolveMaxTokens(c.maxTokens)),
		ResponseMIMEType: "application/json",
	}
	if len(systemParts) > 0 {
		generateConfig.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	response, err := c.client.Models.GenerateContent(ctx, c.model, contents, generateConfig)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := response.Text()
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Provider: ProviderGemini, Err: errors.New("gemini response missing content")}
	}

	return text, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: ProviderGemini, StatusCode: apiErr.Code, Err: err}
	}
	return &UpstreamError{Provider: ProviderGemini, Err: err}
}
