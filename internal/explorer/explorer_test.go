package explorer

import (
	"math"
	"testing"
	"time"

	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/stretchr/testify/suite"
)

type ExplorerTestSuite struct {
	suite.Suite
	bars []types.PriceBar
}

func TestExplorerSuite(t *testing.T) {
	suite.Run(t, new(ExplorerTestSuite))
}

func (suite *ExplorerTestSuite) SetupTest() {
	// A wavy series long enough for every window in the test grids.
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.bars = make([]types.PriceBar, 120)

	for i := range suite.bars {
		price := 100 + 10*math.Sin(float64(i)/7) + float64(i)*0.3
		suite.bars[i] = types.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Symbol: "WAVE",
			Close:  price,
		}
	}
}

func (suite *ExplorerTestSuite) newExplorer() *Explorer {
	explorer, err := NewExplorer("WAVE", suite.bars, 100, 0.02, 252, nil)
	suite.Require().NoError(err)

	return explorer
}

func (suite *ExplorerTestSuite) TestNewExplorerEmptySeries() {
	_, err := NewExplorer("X", nil, 100, 0.02, 252, nil)
	suite.ErrorIs(err, types.ErrEmptySeries)
}

func (suite *ExplorerTestSuite) TestEvaluateProducesFullResult() {
	explorer := suite.newExplorer()

	result, err := explorer.Evaluate(types.StrategyParams{Kind: types.StrategyMomentum, Window: 10})
	suite.Require().NoError(err)

	suite.NotEmpty(result.ID)
	suite.Equal("WAVE", result.Symbol)
	suite.Len(result.Rows, len(suite.bars))
	suite.Len(result.Equity, len(suite.bars))
	suite.LessOrEqual(result.MaxDrawdown, 0.0)
}

func (suite *ExplorerTestSuite) TestEvaluateInvalidParams() {
	explorer := suite.newExplorer()

	_, err := explorer.Evaluate(types.StrategyParams{Kind: types.StrategyMomentum, Window: -1})
	suite.Error(err)

	_, err = explorer.Evaluate(types.StrategyParams{Kind: types.StrategyMeanReversion, Window: 10, Threshold: 2})
	suite.Error(err)
}

func (suite *ExplorerTestSuite) TestGridEvaluatesExactlyMxNCombinations() {
	explorer := suite.newExplorer()

	windows := []int{10, 20, 30}
	thresholds := []float64{0.01, 0.02}

	results, best, err := explorer.ExploreMeanReversion(windows, thresholds)
	suite.Require().NoError(err)
	suite.Len(results, len(windows)*len(thresholds))
	suite.NotNil(best)

	// Enumeration order: windows outer, thresholds inner.
	suite.Equal(10, results[0].Params.Window)
	suite.Equal(0.01, results[0].Params.Threshold)
	suite.Equal(10, results[1].Params.Window)
	suite.Equal(0.02, results[1].Params.Threshold)
	suite.Equal(20, results[2].Params.Window)
}

func (suite *ExplorerTestSuite) TestBestHasMaximalSharpe() {
	explorer := suite.newExplorer()

	results, best, err := explorer.ExploreMomentum([]int{5, 10, 20, 40})
	suite.Require().NoError(err)
	suite.Require().NotNil(best)

	for _, result := range results {
		suite.LessOrEqual(result.SharpeRatio, best.SharpeRatio)
	}
}

func (suite *ExplorerTestSuite) TestTieBreakKeepsFirstSeen() {
	explorer := suite.newExplorer()

	// A window larger than the series yields all-warmup rows for every
	// combination, so each Sharpe is the same degenerate zero.
	results, best, err := explorer.ExploreMomentum([]int{500, 600, 700})
	suite.Require().NoError(err)
	suite.Require().NotNil(best)
	suite.Len(results, 3)

	for _, result := range results {
		suite.Equal(0.0, result.SharpeRatio)
	}

	suite.Equal(500, best.Params.Window)
}

func (suite *ExplorerTestSuite) TestDeterministicAcrossRuns() {
	explorer := suite.newExplorer()

	_, first, err := explorer.ExploreMomentum([]int{5, 10, 20})
	suite.Require().NoError(err)

	_, second, err := explorer.ExploreMomentum([]int{5, 10, 20})
	suite.Require().NoError(err)

	suite.Equal(first.Params, second.Params)
	suite.Equal(first.SharpeRatio, second.SharpeRatio)
}

func (suite *ExplorerTestSuite) TestWinner() {
	low := &types.StrategyResult{SharpeRatio: 0.5}
	high := &types.StrategyResult{SharpeRatio: 1.5}

	suite.Equal(high, Winner(low, high))
	suite.Equal(high, Winner(high, low))
	suite.Equal(low, Winner(low, nil))
	suite.Equal(low, Winner(nil, low))

	// Ties prefer the first argument.
	other := &types.StrategyResult{SharpeRatio: 0.5}
	suite.Same(low, Winner(low, other))
}
