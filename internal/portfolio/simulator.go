// Package portfolio simulates an all-in/all-out portfolio over a signal
// sequence: a buy converts the whole cash balance to the asset at that
// bar's close, a sell liquidates the whole position back to cash.
package portfolio

import (
	"errors"
	"fmt"

	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoRows is returned when the signal sequence is empty.
	ErrNoRows = errors.New("signal sequence is empty")
	// ErrInvalidCapital is returned for a non-positive initial capital.
	ErrInvalidCapital = errors.New("initial capital must be positive")
	// ErrInvalidPrice is returned when a buy fires at a non-positive price.
	ErrInvalidPrice = errors.New("cannot open a position at a non-positive price")
)

// Simulator turns signal rows into an equity curve.
type Simulator struct {
	initialCapital decimal.Decimal
}

// NewSimulator creates a simulator with the given starting cash.
func NewSimulator(initialCapital float64) (*Simulator, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidCapital, initialCapital)
	}

	return &Simulator{initialCapital: decimal.NewFromFloat(initialCapital)}, nil
}

// Run produces one equity point per signal row. Equity equals the initial
// capital until the first buy fires, and stays frozen after a sell until
// the next buy.
func (s *Simulator) Run(rows []types.SignalRow) ([]types.EquityPoint, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	cash := s.initialCapital
	shares := decimal.Zero
	inMarket := false
	equity := make([]types.EquityPoint, len(rows))

	for i, row := range rows {
		price := decimal.NewFromFloat(row.Close)

		switch {
		case !inMarket && row.Position == types.PositionBuy:
			if price.Sign() <= 0 {
				return nil, fmt.Errorf("%w: %g at %s", ErrInvalidPrice, row.Close, row.Time.Format("2006-01-02"))
			}

			shares = cash.Div(price)
			cash = decimal.Zero
			inMarket = true
		case inMarket && row.Position == types.PositionSell:
			cash = shares.Mul(price)
			shares = decimal.Zero
			inMarket = false
		}

		value := cash.Add(shares.Mul(price))
		equity[i] = types.EquityPoint{
			Time:  row.Time,
			Value: value.InexactFloat64(),
		}
	}

	return equity, nil
}
