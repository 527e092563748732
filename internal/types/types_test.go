package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func (suite *TypesTestSuite) TestValidateSeriesEmpty() {
	err := ValidateSeries(nil)
	suite.ErrorIs(err, ErrEmptySeries)
}

func (suite *TypesTestSuite) TestValidateSeriesOrdered() {
	bars := []PriceBar{
		{Time: day(0), Close: 100},
		{Time: day(1), Close: 101},
		{Time: day(2), Close: 102},
	}
	suite.NoError(ValidateSeries(bars))
}

func (suite *TypesTestSuite) TestValidateSeriesDuplicateDate() {
	bars := []PriceBar{
		{Time: day(0), Close: 100},
		{Time: day(0), Close: 101},
	}
	err := ValidateSeries(bars)
	suite.ErrorIs(err, ErrUnorderedSeries)
}

func (suite *TypesTestSuite) TestValidateSeriesOutOfOrder() {
	bars := []PriceBar{
		{Time: day(5), Close: 100},
		{Time: day(3), Close: 101},
	}
	suite.ErrorIs(ValidateSeries(bars), ErrUnorderedSeries)
}

func (suite *TypesTestSuite) TestParamsLabel() {
	momentum := StrategyParams{Kind: StrategyMomentum, Window: 20}
	suite.Equal("Momentum (W=20)", momentum.Label())

	reversion := StrategyParams{Kind: StrategyMeanReversion, Window: 10, Threshold: 0.02}
	suite.Equal("Mean Reversion (W=10, T=0.020)", reversion.Label())
}

func (suite *TypesTestSuite) TestNewSuggestionEmptyResult() {
	suggestion := NewSuggestion(nil)
	suite.Equal(ActionHold, suggestion.Action)
	suite.Equal(StateFlat, suggestion.State)

	suggestion = NewSuggestion(&StrategyResult{})
	suite.Equal(ActionHold, suggestion.Action)
	suite.Equal(StateFlat, suggestion.State)
}

func (suite *TypesTestSuite) TestNewSuggestionFromLastRow() {
	result := &StrategyResult{
		Params: StrategyParams{Kind: StrategyMomentum, Window: 20},
		Rows: []SignalRow{
			{Time: day(0), Close: 100, Signal: SignalFlat, Position: PositionHold},
			{Time: day(1), Close: 110, RollingMean: 105, Signal: SignalLong, Position: PositionBuy},
		},
	}

	suggestion := NewSuggestion(result)
	suite.Equal(ActionBuy, suggestion.Action)
	suite.Equal(StateLong, suggestion.State)
	suite.Equal(day(1), suggestion.AsOf)
	suite.Equal(110.0, suggestion.Price)
	suite.Equal(105.0, suggestion.RollingMean)
	suite.Equal("Momentum (W=20)", suggestion.Strategy)
}

func (suite *TypesTestSuite) TestNewSuggestionSell() {
	result := &StrategyResult{
		Rows: []SignalRow{
			{Time: day(0), Close: 100, Signal: SignalLong, Position: PositionBuy},
			{Time: day(1), Close: 90, Signal: SignalFlat, Position: PositionSell},
		},
	}

	suggestion := NewSuggestion(result)
	suite.Equal(ActionSell, suggestion.Action)
	suite.Equal(StateFlat, suggestion.State)
}

func (suite *TypesTestSuite) TestFinalEquity() {
	result := &StrategyResult{}
	suite.Equal(0.0, result.FinalEquity())

	result.Equity = []EquityPoint{{Time: day(0), Value: 100}, {Time: day(1), Value: 120}}
	suite.Equal(120.0, result.FinalEquity())
}
