// Package types holds the value types shared across the sandbox: price
// bars, signals, strategy results and suggestions.
package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptySeries is returned when an operation needs at least one bar.
	ErrEmptySeries = errors.New("price series is empty")
	// ErrUnorderedSeries is returned when bar dates are not strictly
	// increasing.
	ErrUnorderedSeries = errors.New("price series is not strictly ordered by date")
)

// PriceBar is a single OHLCV bar of a ticker's daily series.
type PriceBar struct {
	// Time is the start of the bar's trading day, UTC.
	Time time.Time `yaml:"time" json:"time" csv:"time"`
	// Symbol is the ticker the bar belongs to.
	Symbol string `yaml:"symbol" json:"symbol" csv:"symbol"`
	// Open is the opening price of the bar.
	Open float64 `yaml:"open" json:"open" csv:"open"`
	// High is the highest price of the bar.
	High float64 `yaml:"high" json:"high" csv:"high"`
	// Low is the lowest price of the bar.
	Low float64 `yaml:"low" json:"low" csv:"low"`
	// Close is the closing price of the bar. Signals and fills use it.
	Close float64 `yaml:"close" json:"close" csv:"close"`
	// Volume is the traded volume of the bar.
	Volume float64 `yaml:"volume" json:"volume" csv:"volume"`
}

// ValidateSeries checks that a series is non-empty and strictly ordered
// by date. Duplicate dates count as unordered.
func ValidateSeries(bars []PriceBar) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}

	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d (%s) does not follow bar %d (%s)",
				ErrUnorderedSeries,
				i, bars[i].Time.Format("2006-01-02"),
				i-1, bars[i-1].Time.Format("2006-01-02"))
		}
	}

	return nil
}
