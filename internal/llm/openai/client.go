package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

const (
	// DefaultBaseURL is the public OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"
	providerName   = "openai"
	systemPrompt   = "You are Exporo, an export readiness assistant for Indonesian SMEs. Follow the output format requested in the user message exactly."
)

// Client implements llm.Engine using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Options configures NewClient.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs a new OpenAI client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, eris.New("llm.model is required for OpenAI")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("openai.api_key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Invoke sends prompt as a single user message and returns the reply text.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.2)
	if isReasoningModel(c.model) {
		// Reasoning models only accept the default temperature.
		temp = 1
	}
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "openai: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "openai: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", llm.Classify(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.Classify(providerName, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", llm.Unavailable(providerName, fmt.Errorf("http status %d", resp.StatusCode))
		}
		return "", llm.Unavailable(providerName, eris.Wrap(err, "response parse"))
	}
	if parsed.Error != nil {
		return "", llm.Unavailable(providerName, fmt.Errorf("http status %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", llm.Unavailable(providerName, fmt.Errorf("http status %d", resp.StatusCode))
	}
	if len(parsed.Choices) == 0 {
		return "", llm.Unavailable(providerName, eris.New("response missing choices"))
	}
	logUsage(c.model, parsed)
	return parsed.Choices[0].Message.Content, nil
}

func logUsage(model string, resp chatResponse) {
	fields := map[string]any{"provider": providerName, "model": model}
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("engine.response", fields)
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

var _ llm.Engine = (*Client)(nil)
