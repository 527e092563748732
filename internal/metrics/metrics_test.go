package metrics

import (
	"testing"
	"time"

	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func equityFrom(values ...float64) []types.EquityPoint {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.EquityPoint, len(values))

	for i, v := range values {
		points[i] = types.EquityPoint{Time: start.AddDate(0, 0, i), Value: v}
	}

	return points
}

func (suite *MetricsTestSuite) TestSharpeZeroVariance() {
	// Constant equity, e.g. no trades taken.
	suite.Equal(0.0, SharpeRatio(equityFrom(100, 100, 100, 100), 0.02, 252))
}

func (suite *MetricsTestSuite) TestSharpeTooFewPoints() {
	suite.Equal(0.0, SharpeRatio(nil, 0.02, 252))
	suite.Equal(0.0, SharpeRatio(equityFrom(100), 0.02, 252))
	suite.Equal(0.0, SharpeRatio(equityFrom(100, 110), 0.02, 252))
}

func (suite *MetricsTestSuite) TestSharpePositiveForSteadyGains() {
	equity := equityFrom(100, 101, 102.5, 103, 104.8, 106)
	sharpe := SharpeRatio(equity, 0.02, 252)
	suite.Greater(sharpe, 0.0)
}

func (suite *MetricsTestSuite) TestSharpeDecreasesWithRiskFreeRate() {
	equity := equityFrom(100, 101, 102.5, 103, 104.8, 106)
	low := SharpeRatio(equity, 0.01, 252)
	high := SharpeRatio(equity, 0.05, 252)
	suite.Greater(low, high)
}

func (suite *MetricsTestSuite) TestMaxDrawdownNonDecreasing() {
	suite.Equal(0.0, MaxDrawdown(equityFrom(100, 100, 120, 150)))
	suite.Equal(0.0, MaxDrawdown(nil))
}

func (suite *MetricsTestSuite) TestMaxDrawdownKnownValue() {
	// Peak 200, trough 120: drawdown = 120/200 - 1 = -0.4.
	drawdown := MaxDrawdown(equityFrom(100, 200, 120, 180))
	suite.InDelta(-0.4, drawdown, 1e-9)
}

func (suite *MetricsTestSuite) TestMaxDrawdownNeverPositive() {
	curves := [][]float64{
		{100, 90, 95, 130},
		{100, 110, 105, 120, 80},
		{50, 50, 50},
	}

	for _, values := range curves {
		suite.LessOrEqual(MaxDrawdown(equityFrom(values...)), 0.0)
	}
}
