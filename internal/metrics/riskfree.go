package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrRateUnavailable is returned when the live risk-free rate cannot be
// fetched or fails the sanity bounds.
var ErrRateUnavailable = errors.New("risk-free rate unavailable")

// defaultTreasuryURL serves the 10-year US treasury yield quote.
const defaultTreasuryURL = "https://query1.finance.yahoo.com/v8/finance/chart/%5ETNX"

// RateProvider supplies an annualized risk-free rate.
type RateProvider interface {
	// AnnualRate returns the rate as a fraction (0.04 for 4%) together
	// with a description of the source.
	AnnualRate(ctx context.Context) (rate float64, source string, err error)
}

// TreasuryYieldProvider fetches the current 10-year US treasury yield.
type TreasuryYieldProvider struct {
	client *http.Client
	url    string
}

// NewTreasuryYieldProvider creates a provider against the default quote
// endpoint. A non-empty url overrides the endpoint, which tests use.
func NewTreasuryYieldProvider(url string) *TreasuryYieldProvider {
	if url == "" {
		url = defaultTreasuryURL
	}

	return &TreasuryYieldProvider{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// AnnualRate implements RateProvider. Transient failures are retried with
// exponential backoff for a bounded few seconds.
func (p *TreasuryYieldProvider) AnnualRate(ctx context.Context) (float64, string, error) {
	var yield float64

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("User-Agent", "quantsandbox/1.0")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var parsed chartResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}

		if len(parsed.Chart.Result) == 0 {
			return backoff.Permanent(fmt.Errorf("empty chart result"))
		}

		yield = parsed.Chart.Result[0].Meta.RegularMarketPrice

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	rate := yield / 100

	// Sanity bounds: anything outside 0.1%..20% is a bad quote.
	if rate <= 0.001 || rate >= 0.20 {
		return 0, "", fmt.Errorf("%w: quote %g outside sanity bounds", ErrRateUnavailable, rate)
	}

	return rate, "10Y US Treasury (^TNX)", nil
}

// ResolveRate returns the live rate from the provider, or the fixed
// fallback when the provider is nil or fails.
func ResolveRate(ctx context.Context, provider RateProvider, fallback float64) (rate float64, source string) {
	if provider != nil {
		if live, src, err := provider.AnnualRate(ctx); err == nil {
			return live, src
		}
	}

	return fallback, "fixed fallback"
}
