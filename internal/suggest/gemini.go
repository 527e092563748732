package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultGeminiURL targets the Gemini flash model's generateContent call.
const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// GeminiAdvisor asks Google Gemini for alternate tickers over raw HTTP.
type GeminiAdvisor struct {
	apiKey string
	url    string
	client *http.Client
}

// NewGeminiAdvisor creates the advisor. Returns nil when no API key is
// configured so the chain silently skips it. A non-empty url overrides the
// endpoint, which tests use.
func NewGeminiAdvisor(apiKey, url string) *GeminiAdvisor {
	if apiKey == "" {
		return nil
	}

	if url == "" {
		url = defaultGeminiURL
	}

	return &GeminiAdvisor{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Advisor.
func (a *GeminiAdvisor) Name() string { return "gemini" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// SuggestTickers implements Advisor. Transient HTTP failures are retried
// with exponential backoff for a bounded few seconds.
func (a *GeminiAdvisor) SuggestTickers(ctx context.Context, failedTicker string) ([]string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: suggestionPrompt(failedTicker)}}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	var parsed geminiResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-goog-api-key", a.apiKey)

		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("gemini returned status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}

			return err
		}

		return json.NewDecoder(resp.Body).Decode(&parsed)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoSuggestions
	}

	suggestions := parseTickerList(parsed.Candidates[0].Content.Parts[0].Text)
	if len(suggestions) == 0 {
		return nil, ErrNoSuggestions
	}

	return suggestions, nil
}
