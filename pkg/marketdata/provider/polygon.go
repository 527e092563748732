package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/quantlab-io/quantsandbox/internal/types"
)

// PolygonProvider downloads daily aggregates from Polygon.io.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider creates the provider with the given API key.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("polygon provider requires an API key")
	}

	return &PolygonProvider{client: polygon.New(apiKey)}, nil
}

// FetchBars implements Provider.
func (p *PolygonProvider) FetchBars(ctx context.Context, ticker string, startDate, endDate time.Time, onProgress OnDownloadProgress) ([]types.PriceBar, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	totalDays := endDate.Sub(startDate).Hours() / 24

	iter := p.client.ListAggs(ctx, params)

	var bars []types.PriceBar

	for iter.Next() {
		agg := iter.Item()
		barTime := time.Time(agg.Timestamp)

		bars = append(bars, types.PriceBar{
			Time:   barTime,
			Symbol: ticker,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})

		if onProgress != nil {
			elapsed := barTime.Sub(startDate).Hours() / 24
			onProgress(elapsed, totalDays, fmt.Sprintf("Downloading %s from Polygon", ticker))
		}
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polygon aggregates: %w", err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	if err := types.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("polygon returned an invalid series for %s: %w", ticker, err)
	}

	return bars, nil
}
