package strategy

import (
	"fmt"

	"github.com/quantlab-io/quantsandbox/internal/types"
)

// Momentum goes long while the previous close sits above the rolling mean
// of the previous window bars, flat otherwise. Ties resolve to flat.
type Momentum struct {
	window int
}

// NewMomentum creates a momentum strategy with the given window size.
func NewMomentum(window int) (*Momentum, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	return &Momentum{window: window}, nil
}

// Params implements Strategy.
func (m *Momentum) Params() types.StrategyParams {
	return types.StrategyParams{
		Kind:   types.StrategyMomentum,
		Window: m.window,
	}
}

// Evaluate implements Strategy.
func (m *Momentum) Evaluate(bars []types.PriceBar) ([]types.SignalRow, error) {
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

		// Strict comparison: a close exactly on the mean stays flat.
		if bars[i-1].Close > means[i] {
			row.Signal = types.SignalLong
		} else {
			row.Signal = types.SignalFlat
		}

		row.Position = transition(previous, row.Signal)
		previous = row.Signal
		rows[i] = row
	}

	return rows, nil
}

// transition maps a signal change to the corresponding position change.
func transition(from, to types.Signal) types.PositionChange {
	switch {
	case from == types.SignalFlat && to == types.SignalLong:
		return types.PositionBuy
	case from == types.SignalLong && to == types.SignalFlat:
		return types.PositionSell
	default:
		return types.PositionHold
	}
}
