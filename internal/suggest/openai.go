package suggest

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdvisor asks an OpenAI chat model for alternate tickers.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

// NewOpenAIAdvisor creates the advisor. Returns nil when no API key is
// configured so the chain silently skips it.
func NewOpenAIAdvisor(apiKey string) *OpenAIAdvisor {
	if apiKey == "" {
		return nil
	}

	return &OpenAIAdvisor{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// Name implements Advisor.
func (a *OpenAIAdvisor) Name() string { return "openai" }

// SuggestTickers implements Advisor.
func (a *OpenAIAdvisor) SuggestTickers(ctx context.Context, failedTicker string) ([]string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: suggestionPrompt(failedTicker),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoSuggestions
	}

	suggestions := parseTickerList(resp.Choices[0].Message.Content)
	if len(suggestions) == 0 {
		return nil, ErrNoSuggestions
	}

	return suggestions, nil
}
