// Package anthropic adapts the Anthropic Messages API to llm.Engine.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

const (
	providerName     = "anthropic"
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 4096
)

// Client implements llm.Engine with anthropic-sdk-go.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// Options configures NewClient.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// NewClient creates an Anthropic engine. SDK retries are disabled;
// llm.WithRetry owns the retry policy.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("anthropic.api_key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &Client{
		client:    sdk.NewClient(reqOpts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Invoke sends prompt as a user message and joins the text blocks of the reply.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", llm.Classify(providerName, eris.Wrap(err, "anthropic: create message"))
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", llm.Unavailable(providerName, eris.New("response contained no text"))
	}
	telemetry.Info("engine.response", map[string]any{
		"provider":          providerName,
		"model":             c.model,
		"prompt_tokens":     msg.Usage.InputTokens,
		"completion_tokens": msg.Usage.OutputTokens,
		"stop_reason":       string(msg.StopReason),
	})
	return b.String(), nil
}

var _ llm.Engine = (*Client)(nil)
