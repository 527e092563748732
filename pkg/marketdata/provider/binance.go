package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/quantlab-io/quantsandbox/internal/types"
)

// klinePageSize is the Binance API maximum per klines request.
const klinePageSize = 1000

// BinanceProvider downloads daily klines from Binance. No API key is
// needed for historical market data.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates the provider.
func NewBinanceProvider() (*BinanceProvider, error) {
	return &BinanceProvider{client: binance.NewClient("", "")}, nil
}

// FetchBars implements Provider. Binance pages klines, so requests repeat
// from the last seen open time until the range is covered. Dash-form
// crypto tickers are translated to Binance symbols first.
func (p *BinanceProvider) FetchBars(ctx context.Context, ticker string, startDate, endDate time.Time, onProgress OnDownloadProgress) ([]types.PriceBar, error) {
	symbol := binanceSymbol(ticker)
	startMillis := startDate.UnixMilli()
	endMillis := endDate.UnixMilli()

	var bars []types.PriceBar

	for currentStart := startMillis; currentStart < endMillis; {
		klines, err := p.client.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(currentStart).
			EndTime(endMillis).
			Limit(klinePageSize).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch klines from Binance: %w", err)
		}

		if len(klines) == 0 {
			break
		}

		for _, kline := range klines {
			bar, err := klineToBar(ticker, kline)
			if err != nil {
				return nil, err
			}

			bars = append(bars, bar)
		}

		if onProgress != nil {
			onProgress(float64(klines[len(klines)-1].OpenTime-startMillis), float64(endMillis-startMillis),
				fmt.Sprintf("Downloading %s from Binance", ticker))
		}

		if len(klines) < klinePageSize {
			break
		}

		currentStart = klines[len(klines)-1].OpenTime + 1
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	if err := types.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("binance returned an invalid series for %s: %w", ticker, err)
	}

	return bars, nil
}

// binanceSymbol maps a ticker to Binance's symbol format: uppercase, no
// dash, and a USDT quote for the common dash-USD crypto form (BTC-USD
// trades on Binance as BTCUSDT).
func binanceSymbol(ticker string) string {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))

	base, quote, dashed := strings.Cut(symbol, "-")
	if !dashed {
		return symbol
	}

	if quote == "USD" {
		quote = "USDT"
	}

	return base + quote
}

func klineToBar(ticker string, kline *binance.Kline) (types.PriceBar, error) {
	open, err := strconv.ParseFloat(kline.Open, 64)
	if err != nil {
		return types.PriceBar{}, fmt.Errorf("failed to parse kline open: %w", err)
	}

	high, err := strconv.ParseFloat(kline.High, 64)
	if err != nil {
		return types.PriceBar{}, fmt.Errorf("failed to parse kline high: %w", err)
	}

	low, err := strconv.ParseFloat(kline.Low, 64)
	if err != nil {
		return types.PriceBar{}, fmt.Errorf("failed to parse kline low: %w", err)
	}

	closePrice, err := strconv.ParseFloat(kline.Close, 64)
	if err != nil {
		return types.PriceBar{}, fmt.Errorf("failed to parse kline close: %w", err)
	}

	volume, err := strconv.ParseFloat(kline.Volume, 64)
	if err != nil {
		return types.PriceBar{}, fmt.Errorf("failed to parse kline volume: %w", err)
	}

	return types.PriceBar{
		Time:   time.UnixMilli(kline.OpenTime).UTC(),
		Symbol: ticker,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
