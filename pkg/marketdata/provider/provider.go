// Package provider fetches historical daily bars from external market
// data services. Each provider returns an ordered price series or an
// error the caller can route to the ticker-suggestion fallback.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantlab-io/quantsandbox/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// ErrNoData is returned when a provider finds no bars for the ticker and
// range, e.g. an unknown or delisted symbol.
var ErrNoData = errors.New("no market data for ticker")

// OnDownloadProgress reports download progress to the caller.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads daily bars for a ticker and date range.
type Provider interface {
	// FetchBars returns the ordered daily price series for the ticker.
	// The context can be used to cancel the download.
	FetchBars(ctx context.Context, ticker string, startDate, endDate time.Time, onProgress OnDownloadProgress) ([]types.PriceBar, error)
}

// NewProvider creates a market data provider of the given type.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	case ProviderBinance:
		return NewBinanceProvider()
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}
