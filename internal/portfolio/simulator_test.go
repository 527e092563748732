package portfolio

import (
	"testing"
	"time"

	"github.com/quantlab-io/quantsandbox/internal/strategy"
	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/stretchr/testify/suite"
)

type SimulatorTestSuite struct {
	suite.Suite
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func rowsFrom(closes []float64, positions []types.PositionChange) []types.SignalRow {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]types.SignalRow, len(closes))

	for i := range closes {
		rows[i] = types.SignalRow{
			Time:     start.AddDate(0, 0, i),
			Close:    closes[i],
			Position: positions[i],
		}
	}

	return rows
}

func (suite *SimulatorTestSuite) TestNewSimulatorInvalidCapital() {
	_, err := NewSimulator(0)
	suite.ErrorIs(err, ErrInvalidCapital)

	_, err = NewSimulator(-100)
	suite.ErrorIs(err, ErrInvalidCapital)
}

func (suite *SimulatorTestSuite) TestRunEmptyRows() {
	sim, err := NewSimulator(100)
	suite.Require().NoError(err)

	_, err = sim.Run(nil)
	suite.ErrorIs(err, ErrNoRows)
}

func (suite *SimulatorTestSuite) TestEquityConstantBeforeFirstBuy() {
	sim, err := NewSimulator(100)
	suite.Require().NoError(err)

	hold := types.PositionHold
	equity, err := sim.Run(rowsFrom(
		[]float64{50, 60, 70, 80},
		[]types.PositionChange{hold, hold, hold, types.PositionBuy},
	))
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		suite.Equal(100.0, equity[i].Value, "bar %d", i)
	}
	// The buy itself converts cash at that bar's close; equity unchanged.
	suite.InDelta(100.0, equity[3].Value, 1e-9)
}

func (suite *SimulatorTestSuite) TestEquityTracksPriceWhileLong() {
	sim, err := NewSimulator(100)
	suite.Require().NoError(err)

	equity, err := sim.Run(rowsFrom(
		[]float64{100, 110, 121},
		[]types.PositionChange{types.PositionBuy, types.PositionHold, types.PositionHold},
	))
	suite.Require().NoError(err)

	suite.InDelta(100.0, equity[0].Value, 1e-9)
	suite.InDelta(110.0, equity[1].Value, 1e-9)
	suite.InDelta(121.0, equity[2].Value, 1e-9)
}

func (suite *SimulatorTestSuite) TestEquityFrozenAfterSell() {
	sim, err := NewSimulator(100)
	suite.Require().NoError(err)

	equity, err := sim.Run(rowsFrom(
		[]float64{100, 120, 60, 30},
		[]types.PositionChange{types.PositionBuy, types.PositionSell, types.PositionHold, types.PositionHold},
	))
	suite.Require().NoError(err)

	suite.InDelta(120.0, equity[1].Value, 1e-9)
	// Price keeps falling but the portfolio is all cash.
	suite.InDelta(120.0, equity[2].Value, 1e-9)
	suite.InDelta(120.0, equity[3].Value, 1e-9)
}

func (suite *SimulatorTestSuite) TestBuyAtZeroPriceRejected() {
	sim, err := NewSimulator(100)
	suite.Require().NoError(err)

	_, err = sim.Run(rowsFrom(
		[]float64{0},
		[]types.PositionChange{types.PositionBuy},
	))
	suite.ErrorIs(err, ErrInvalidPrice)
}

func (suite *SimulatorTestSuite) TestMomentumOnLinearRampApproximatelyDoubles() {
	// Price rises 100 -> 200 linearly; momentum with window 3 crosses long
	// early and stays long, so equity roughly matches buy-and-hold over
	// the post-warmup span.
	closes := make([]float64, 21)
	for i := range closes {
		closes[i] = 100 + float64(i)*5
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = types.PriceBar{Time: start.AddDate(0, 0, i), Symbol: "RAMP", Close: c}
	}

	momentum, err := strategy.NewMomentum(3)
	suite.Require().NoError(err)

	rows, err := momentum.Evaluate(bars)
	suite.Require().NoError(err)

	sim, err := NewSimulator(100)
	suite.Require().NoError(err)

	equity, err := sim.Run(rows)
	suite.Require().NoError(err)

	// Entered at the first post-warmup bar (close 115) and held to 200.
	final := equity[len(equity)-1].Value
	suite.InDelta(100.0*200.0/115.0, final, 1e-6)
	suite.Greater(final, 170.0)
}
