// Package strategy implements the trading signal generators: rolling-mean
// momentum and mean-reversion bands. Signals are computed with an explicit
// one-bar lag on the indicator so a decision at bar t only uses data
// available through bar t-1.
package strategy

import (
	"errors"
	"fmt"

	"github.com/quantlab-io/quantsandbox/internal/types"
)

var (
	// ErrInvalidWindow is returned for a non-positive window size.
	ErrInvalidWindow = errors.New("window must be a positive integer")
	// ErrInvalidThreshold is returned for a threshold outside (0, 1).
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1 exclusive")
)

// Strategy generates a signal sequence from a price series.
type Strategy interface {
	// Params returns the parameters the strategy was built with.
	Params() types.StrategyParams
	// Evaluate computes the signal row per input bar. The output has the
	// same length as the input; rows before the rolling window fills are
	// flat warmup rows with no position change.
	Evaluate(bars []types.PriceBar) ([]types.SignalRow, error)
}

// New builds the strategy described by the given parameters.
func New(params types.StrategyParams) (Strategy, error) {
	switch params.Kind {
	case types.StrategyMomentum:
		return NewMomentum(params.Window)
	case types.StrategyMeanReversion:
		return NewMeanReversion(params.Window, params.Threshold)
	default:
		return nil, fmt.Errorf("unknown strategy kind: %q", params.Kind)
	}
}

// laggedRollingMean returns the one-bar-lagged rolling mean of the closing
// prices: out[i] is the mean of the window bars ending at i-1. ok[i] is
// false while the window has not filled.
func laggedRollingMean(bars []types.PriceBar, window int) (out []float64, ok []bool) {
	out = make([]float64, len(bars))
	ok = make([]bool, len(bars))

	var sum float64

	for i := range bars {
		if i >= window {
			out[i] = sum / float64(window)
			ok[i] = true
			sum -= bars[i-window].Close
		}

		sum += bars[i].Close
	}

	return out, ok
}
