package sitegen

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const pageSystemPrompt = "You generate a single self-contained index.html for a static site " +
	"hosted on GitHub Pages. Use Bootstrap 5 from the jsDelivr CDN. Respond with " +
	"the raw HTML document only, no commentary."

// LLM wraps the OpenAI chat completions API for generic page generation.
type LLM struct {
	client openai.Client
	model  string
}

// NewLLM returns nil when no API key is configured, which disables the
// LLM-assisted path entirely.
func NewLLM(apiKey, model string) *LLM {
	if apiKey == "" {
		return nil
	}
	return &LLM{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// GeneratePage asks the model for an index.html satisfying the brief.
func (l *LLM) GeneratePage(ctx context.Context, brief string, checks []string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Brief:\n" + brief + "\n")
	if len(checks) > 0 {
		prompt.WriteString("\nThe page must satisfy these checks:\n")
		for _, check := range checks {
			prompt.WriteString("- " + check + "\n")
		}
	}

	resp, err := l.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(pageSystemPrompt),
			openai.UserMessage(prompt.String()),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	page := stripFences(resp.Choices[0].Message.Content)
	if strings.TrimSpace(page) == "" {
		return "", errors.New("completion contained no page content")
	}
	return page, nil
}

// stripFences removes a surrounding markdown code fence when the model adds one.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```html")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
