// Package metrics computes risk metrics over an equity curve: the
// annualized Sharpe ratio and the maximum drawdown.
package metrics

import (
	"math"

	"github.com/quantlab-io/quantsandbox/internal/types"
)

// SharpeRatio computes the annualized Sharpe ratio of an equity curve
// against the given annual risk-free rate. periodsPerYear scales per-bar
// returns to annual terms (252 for daily bars).
//
// The degenerate cases all report zero: fewer than three equity points,
// or zero return variance (e.g. no trades taken).
func SharpeRatio(equity []types.EquityPoint, annualRiskFree float64, periodsPerYear int) float64 {
	returns := periodReturns(equity)
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}

	// Sample variance, matching the usual convention for return series.
	variance /= float64(len(returns) - 1)

	if variance == 0 {
		return 0
	}

	annualReturn := mean * float64(periodsPerYear)
	annualVolatility := math.Sqrt(variance) * math.Sqrt(float64(periodsPerYear))

	return (annualReturn - annualRiskFree) / annualVolatility
}

// MaxDrawdown returns the largest peak-to-trough decline of the equity
// curve as a negative fraction. Zero when equity never declines.
func MaxDrawdown(equity []types.EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0].Value
	worst := 0.0

	for _, point := range equity {
		if point.Value > peak {
			peak = point.Value
		}

		if peak > 0 {
			drawdown := point.Value/peak - 1
			if drawdown < worst {
				worst = drawdown
			}
		}
	}

	return worst
}

func periodReturns(equity []types.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(equity)-1)

	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			continue
		}

		returns = append(returns, equity[i].Value/prev-1)
	}

	return returns
}
