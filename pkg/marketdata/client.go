// Package marketdata wires a provider to the local bar store: it downloads
// a ticker's history, shows progress, and persists the series for reuse.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/quantlab-io/quantsandbox/internal/store"
	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/quantlab-io/quantsandbox/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	PolygonAPIKey string                `validate:"required_if=ProviderType polygon"`
}

// FetchParams holds the parameters for a market data request.
type FetchParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// Client downloads price series from a provider and caches them in a
// bar store.
type Client struct {
	provider provider.Provider
	store    store.BarStore
	validate *validator.Validate
	progress bool
}

// NewClient creates a market data client. The store may be nil, in which
// case fetched series are not cached.
func NewClient(config ClientConfig, barStore store.BarStore, showProgress bool) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	marketProvider, err := provider.NewProvider(config.ProviderType, config.PolygonAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", config.ProviderType, err)
	}

	return &Client{
		provider: marketProvider,
		store:    barStore,
		validate: validate,
		progress: showProgress,
	}, nil
}

// Fetch returns the price series for the given parameters, preferring the
// local store and downloading (then caching) on a miss.
func (c *Client) Fetch(ctx context.Context, params FetchParams) ([]types.PriceBar, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid fetch parameters: %w", err)
	}

	if c.store != nil {
		bars, err := c.store.LoadBars(params.Ticker, optional.Some(params.StartDate), optional.Some(params.EndDate))
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
	}

	return c.Download(ctx, params)
}

// Download fetches the series from the provider, bypassing the store for
// reading but still caching the result.
func (c *Client) Download(ctx context.Context, params FetchParams) ([]types.PriceBar, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid fetch parameters: %w", err)
	}

	onProgress := c.progressCallback(params)

	bars, err := c.provider.FetchBars(ctx, params.Ticker, params.StartDate, params.EndDate, onProgress)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.SaveBars(params.Ticker, bars); err != nil {
			return nil, fmt.Errorf("failed to cache bars for %s: %w", params.Ticker, err)
		}
	}

	return bars, nil
}

func (c *Client) progressCallback(params FetchParams) provider.OnDownloadProgress {
	if !c.progress {
		return nil
	}

	totalDays := int(params.EndDate.Sub(params.StartDate).Hours()/24) + 1
	bar := progressbar.NewOptions(totalDays,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", params.Ticker)),
		progressbar.OptionShowCount(),
	)

	return func(current, total float64, _ string) {
		if total > 0 {
			_ = bar.Set(int(current / total * float64(totalDays)))
		}
	}
}
