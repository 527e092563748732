package strategy

import (
	"fmt"

	"github.com/quantlab-io/quantsandbox/internal/types"
)

// MeanReversion trades bands around the rolling mean: it goes long when the
// previous close drops below the lower band, exits to flat when it rises
// above the upper band, and holds the prior signal inside the bands.
type MeanReversion struct {
	window    int
	threshold float64
}

// NewMeanReversion creates a mean reversion strategy with the given window
// size and band width fraction.
func NewMeanReversion(window int, threshold float64) (*MeanReversion, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidThreshold, threshold)
	}

	return &MeanReversion{window: window, threshold: threshold}, nil
}

// Params implements Strategy.
func (m *MeanReversion) Params() types.StrategyParams {
	return types.StrategyParams{
		Kind:      types.StrategyMeanReversion,
		Window:    m.window,
		Threshold: m.threshold,
	}
}

// Evaluate implements Strategy.
func (m *MeanReversion) Evaluate(bars []types.PriceBar) ([]types.SignalRow, error) {
	if err := types.ValidateSeries(bars); err != nil {
		return nil, err
	}

	means, ready := laggedRollingMean(bars, m.window)
	rows := make([]types.SignalRow, len(bars))
	previous := types.SignalFlat

	for i, bar := range bars {
		row := types.SignalRow{
			Time:  bar.Time,
			Close: bar.Close,
		}

		if !ready[i] {
			row.Warmup = true
			row.Signal = types.SignalFlat
			row.Position = types.PositionHold
			rows[i] = row

			continue
		}

		row.RollingMean = means[i]
		row.LowerBand = means[i] * (1 - m.threshold)
		row.UpperBand = means[i] * (1 + m.threshold)

		prevClose := bars[i-1].Close

		switch {
		case prevClose < row.LowerBand:
			row.Signal = types.SignalLong
		case prevClose > row.UpperBand:
			row.Signal = types.SignalFlat
		default:
			// Inside the bands the prior signal carries forward.
			row.Signal = previous
		}

		row.Position = transition(previous, row.Signal)
		previous = row.Signal
		rows[i] = row
	}

	return rows, nil
}
