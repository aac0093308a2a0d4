package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultClaudeModel     = "claude-3-5-haiku-latest"
	defaultClaudeMaxTokens = 1024
)

// Claude completes prompts with the Anthropic Messages API.
type Claude struct {
	messages  *anthropic.MessageService
	model     string
	maxTokens int64
}

// NewClaude creates a Claude backend. An empty model selects the default.
func NewClaude(apiKey, model string) (*Claude, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("claude: api key is required")
	}
	if model == "" {
		model = defaultClaudeModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Claude{messages: &client.Messages, model: model, maxTokens: defaultClaudeMaxTokens}, nil
}

func (c *Claude) Name() string { return "anthropic" }

func (c *Claude) Complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
