package suggest

import (
	"context"
	"strings"
)

// corrections maps frequent misspellings and company names to tickers.
var corrections = map[string]string{
	"APL":       "AAPL",
	"APPL":      "AAPL",
	"TESLA":     "TSLA",
	"MICROSOFT": "MSFT",
	"AMAZON":    "AMZN",
	"GOOGLE":    "GOOGL",
	"BTC":       "BTC-USD",
	"ETH":       "ETH-USD",
	"BITCOIN":   "BTC-USD",
}

// PatternAdvisor guesses alternate tickers from symbol shape alone. It is
// the last advisor in the chain and needs no network access.
type PatternAdvisor struct{}

// NewPatternAdvisor creates the pattern-matching fallback advisor.
func NewPatternAdvisor() *PatternAdvisor {
	return &PatternAdvisor{}
}

// Name implements Advisor.
func (a *PatternAdvisor) Name() string { return "pattern" }

// SuggestTickers implements Advisor.
func (a *PatternAdvisor) SuggestTickers(_ context.Context, failedTicker string) ([]string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(failedTicker))
	if ticker == "" {
		return nil, ErrNoSuggestions
	}

	var suggestions []string

	if corrected, ok := corrections[ticker]; ok {
		suggestions = append(suggestions, corrected)
	}

	// European listings often just miss the exchange suffix.
	if len(ticker) <= 5 && !strings.Contains(ticker, ".") {
		suggestions = append(suggestions,
			ticker+".L",
			ticker+".AS",
			ticker+".DE",
		)
	}

	// Short symbols may be crypto without the quote currency.
	if len(ticker) <= 4 && !strings.Contains(ticker, "-") {
		suggestions = append(suggestions, ticker+"-USD")
	}

	if len(suggestions) == 0 {
		return nil, ErrNoSuggestions
	}

	return capSuggestions(suggestions), nil
}
