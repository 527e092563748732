package strategy

import (
	"testing"

	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/stretchr/testify/suite"
)

type MeanReversionTestSuite struct {
	suite.Suite
}

func TestMeanReversionSuite(t *testing.T) {
	suite.Run(t, new(MeanReversionTestSuite))
}

func (suite *MeanReversionTestSuite) TestNewMeanReversionInvalidParams() {
	_, err := NewMeanReversion(0, 0.02)
	suite.ErrorIs(err, ErrInvalidWindow)

	_, err = NewMeanReversion(10, 0)
	suite.ErrorIs(err, ErrInvalidThreshold)

	_, err = NewMeanReversion(10, 1)
	suite.ErrorIs(err, ErrInvalidThreshold)

	_, err = NewMeanReversion(10, -0.1)
	suite.ErrorIs(err, ErrInvalidThreshold)
}

func (suite *MeanReversionTestSuite) TestParams() {
	m, err := NewMeanReversion(10, 0.05)
	suite.Require().NoError(err)
	suite.Equal(types.StrategyParams{
		Kind:      types.StrategyMeanReversion,
		Window:    10,
		Threshold: 0.05,
	}, m.Params())
}

func (suite *MeanReversionTestSuite) TestBandsOnRows() {
	m, err := NewMeanReversion(2, 0.1)
	suite.Require().NoError(err)

	rows, err := m.Evaluate(barsFromCloses(100, 100, 100))
	suite.Require().NoError(err)

	suite.Equal(100.0, rows[2].RollingMean)
	suite.InDelta(90.0, rows[2].LowerBand, 1e-9)
	suite.InDelta(110.0, rows[2].UpperBand, 1e-9)
}

func (suite *MeanReversionTestSuite) TestBuyBelowLowerSellAboveUpper() {
	m, err := NewMeanReversion(2, 0.1)
	suite.Require().NoError(err)

	rows, err := m.Evaluate(barsFromCloses(100, 100, 80, 100, 100))
	suite.Require().NoError(err)

	// Row 2: previous close 100 inside [90, 110] -> stays flat.
	suite.Equal(types.SignalFlat, rows[2].Signal)
	suite.Equal(types.PositionHold, rows[2].Position)

	// Row 3: mean of (100, 80) is 90, previous close 80 < 81 -> long.
	suite.Equal(types.SignalLong, rows[3].Signal)
	suite.Equal(types.PositionBuy, rows[3].Position)

	// Row 4: mean of (80, 100) is 90, previous close 100 > 99 -> flat.
	suite.Equal(types.SignalFlat, rows[4].Signal)
	suite.Equal(types.PositionSell, rows[4].Position)
}

func (suite *MeanReversionTestSuite) TestHoldsSignalInsideBands() {
	m, err := NewMeanReversion(2, 0.1)
	suite.Require().NoError(err)

	rows, err := m.Evaluate(barsFromCloses(100, 100, 80, 90, 92))
	suite.Require().NoError(err)

	// Row 3 enters long, row 4 has previous close 90 inside the bands of
	// mean 85 -> long carries forward with no position change.
	suite.Equal(types.SignalLong, rows[3].Signal)
	suite.Equal(types.PositionBuy, rows[3].Position)
	suite.Equal(types.SignalLong, rows[4].Signal)
	suite.Equal(types.PositionHold, rows[4].Position)
}

func (suite *MeanReversionTestSuite) TestConstantSeriesNeverTrades() {
	m, err := NewMeanReversion(3, 0.02)
	suite.Require().NoError(err)

	rows, err := m.Evaluate(barsFromCloses(100, 100, 100, 100, 100, 100))
	suite.Require().NoError(err)

	for i, row := range rows {
		suite.Equal(types.SignalFlat, row.Signal, "row %d", i)
		suite.Equal(types.PositionHold, row.Position, "row %d", i)
	}
}

func (suite *MeanReversionTestSuite) TestFactoryDispatch() {
	s, err := New(types.StrategyParams{Kind: types.StrategyMomentum, Window: 5})
	suite.NoError(err)
	suite.IsType(&Momentum{}, s)

	s, err = New(types.StrategyParams{Kind: types.StrategyMeanReversion, Window: 5, Threshold: 0.02})
	suite.NoError(err)
	suite.IsType(&MeanReversion{}, s)

	_, err = New(types.StrategyParams{Kind: "martingale", Window: 5})
	suite.Error(err)
}
