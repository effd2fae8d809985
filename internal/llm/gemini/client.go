// Package gemini adapts Google's Gemini API to llm.Engine.
package gemini

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// Client implements llm.Engine with the genai SDK.
type Client struct {
	client *genai.Client
	model  string
}

// Options configures NewClient. BaseURL is only set in tests.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a Gemini engine.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("gemini.api_key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &Client{client: client, model: model}, nil
}

// Invoke sends prompt as one user turn and returns the concatenated text parts.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", llm.Classify(providerName, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.Unavailable(providerName, eris.New("response contained no text"))
	}

	fields := map[string]any{"provider": providerName, "model": c.model}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
	}
	telemetry.Info("engine.response", fields)
	return text, nil
}

var _ llm.Engine = (*Client)(nil)
