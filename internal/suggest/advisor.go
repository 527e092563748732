// Package suggest resolves failed ticker downloads into likely alternate
// symbols. Generative-AI providers sit behind a single capability
// interface with a pattern-matching fallback at the end of the chain.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/quantlab-io/quantsandbox/internal/logger"
	"go.uber.org/zap"
)

// maxSuggestions caps how many alternate tickers an advisor returns.
const maxSuggestions = 5

// ErrNoSuggestions is returned when an advisor has nothing to offer.
var ErrNoSuggestions = errors.New("no ticker suggestions available")

// Advisor suggests alternate tickers for a symbol that failed to download.
type Advisor interface {
	// Name identifies the advisor in logs.
	Name() string
	// SuggestTickers returns up to five likely alternate symbols.
	SuggestTickers(ctx context.Context, failedTicker string) ([]string, error)
}

// Chain tries each advisor in order and returns the first non-empty
// suggestion list. Advisor failures are logged and skipped.
type Chain struct {
	advisors []Advisor
	log      *logger.Logger
}

// NewChain builds an advisor chain. Nil advisors are dropped.
func NewChain(log *logger.Logger, advisors ...Advisor) *Chain {
	kept := make([]Advisor, 0, len(advisors))

	for _, advisor := range advisors {
		if advisor != nil {
			kept = append(kept, advisor)
		}
	}

	return &Chain{advisors: kept, log: log}
}

// SuggestTickers implements Advisor.
func (c *Chain) SuggestTickers(ctx context.Context, failedTicker string) ([]string, error) {
	for _, advisor := range c.advisors {
		suggestions, err := advisor.SuggestTickers(ctx, failedTicker)
		if err != nil {
			if c.log != nil {
				c.log.Warn("ticker advisor failed",
					zap.String("advisor", advisor.Name()),
					zap.String("ticker", failedTicker),
					zap.Error(err),
				)
			}

			continue
		}

		if len(suggestions) > 0 {
			return capSuggestions(suggestions), nil
		}
	}

	return nil, ErrNoSuggestions
}

// Name implements Advisor.
func (c *Chain) Name() string { return "chain" }

// parseTickerList extracts a JSON string array from a model reply, which
// may wrap the array in prose or a code fence.
func parseTickerList(text string) []string {
	start := strings.Index(text, "[")
	end := strings.Index(text[max(start, 0):], "]")

	if start < 0 || end < 0 {
		return nil
	}

	var tickers []string
	if err := json.Unmarshal([]byte(text[start:start+end+1]), &tickers); err != nil {
		return nil
	}

	cleaned := make([]string, 0, len(tickers))

	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker != "" {
			cleaned = append(cleaned, ticker)
		}
	}

	return capSuggestions(cleaned)
}

func capSuggestions(suggestions []string) []string {
	seen := make(map[string]struct{}, len(suggestions))
	unique := make([]string, 0, len(suggestions))

	for _, s := range suggestions {
		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		unique = append(unique, s)

		if len(unique) == maxSuggestions {
			break
		}
	}

	return unique
}

// suggestionPrompt is the instruction sent to generative providers.
func suggestionPrompt(failedTicker string) string {
	var sb strings.Builder

	sb.WriteString("The user tried to download market data for ticker \"")
	sb.WriteString(failedTicker)
	sb.WriteString("\" but it failed. Suggest the 5 most likely correct ticker symbols they might have meant.\n\n")
	sb.WriteString("Consider common misspellings (APL -> AAPL), missing exchange suffixes (CSPX -> CSPX.L), ")
	sb.WriteString("company names (Tesla -> TSLA), and crypto formats (BTC -> BTC-USD).\n\n")
	sb.WriteString("Respond with ONLY a JSON array of ticker strings, like: [\"AAPL\", \"MSFT\", \"GOOGL\"]")

	return sb.String()
}
