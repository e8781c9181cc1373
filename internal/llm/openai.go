package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient implements the Client interface using OpenAI's API.
type OpenAIClient struct {
	apiKey       string
	model        string
	temperature  float64
	systemPrompt string
	httpClient   *http.Client
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey       string
	Model        string  // e.g., "gpt-4o-mini"
	Temperature  float64 // generation temperature; 0 uses the default
	SystemPrompt string  // Optional custom system prompt
	HTTPClient   *http.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = SystemPromptSpanish
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		model:        model,
		temperature:  temperature,
		systemPrompt: systemPrompt,
		httpClient:   httpClient,
	}
}

// chatRequest represents an OpenAI chat completion request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse represents an OpenAI chat completion response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces the agent's next reply.
func (c *OpenAIClient) Generate(ctx context.Context, utterance string, history []Message, fields map[string]string) (string, error) {
	msgs := []chatMessage{
		{Role: "system", Content: c.systemPrompt},
		{Role: "user", Content: buildUserPrompt(utterance, history, fields)},
	}

	content, err := c.complete(ctx, msgs, c.temperature, 0)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// Extract pulls lead attributes out of an utterance. The model is asked for a
// bare JSON object; markdown fences and surrounding prose are tolerated. When
// no JSON can be recovered, an empty map is returned alongside the error.
func (c *OpenAIClient) Extract(ctx context.Context, utterance string, fields map[string]string) (map[string]string, error) {
	msgs := []chatMessage{
		{Role: "system", Content: ExtractionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(extractionPromptTemplate, utterance, formatFields(fields))},
	}

	content, err := c.complete(ctx, msgs, 0.3, 500)
	if err != nil {
		return map[string]string{}, err
	}

	extracted, err := ParseExtraction(content)
	if err != nil {
		return map[string]string{}, err
	}
	return extracted, nil
}

// DetectIntent classifies the utterance into one of the known intents.
func (c *OpenAIClient) DetectIntent(ctx context.Context, utterance string) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return IntentIrrelevant, nil
	}

	msgs := []chatMessage{
		{Role: "system", Content: intentSystemPrompt()},
		{Role: "user", Content: fmt.Sprintf("Analiza la siguiente entrada del usuario y determina su intención principal:\n\n%q", utterance)},
	}

	content, err := c.complete(ctx, msgs, 0.3, 20)
	if err != nil {
		return IntentIrrelevant, err
	}

	intent := strings.ToUpper(strings.TrimSpace(content))
	if _, ok := Intents[intent]; !ok {
		return IntentIrrelevant, nil
	}
	return intent, nil
}

// complete performs a single chat completion call and returns the first
// choice's content.
func (c *OpenAIClient) complete(ctx context.Context, msgs []chatMessage, temperature float64, maxTokens int) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openaiAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API error: %s - %s", resp.Status, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ParseExtraction recovers a flat string map from model output. It strips
// markdown code fences first; if the remainder still isn't valid JSON, it
// falls back to the outermost {...} substring. Non-string values are
// stringified, null values are dropped.
func ParseExtraction(content string) (map[string]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	raw := map[string]any{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON object in extraction output")
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse extraction output: %w", err)
		}
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			// model uses null for "not found"
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}
