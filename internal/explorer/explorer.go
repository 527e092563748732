// Package explorer runs the brute-force parameter grid search: every
// combination is pushed through signal generation, portfolio simulation
// and risk metrics, and the best result per strategy family is tracked.
package explorer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/quantlab-io/quantsandbox/internal/logger"
	"github.com/quantlab-io/quantsandbox/internal/metrics"
	"github.com/quantlab-io/quantsandbox/internal/portfolio"
	"github.com/quantlab-io/quantsandbox/internal/strategy"
	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Explorer evaluates strategy parameter combinations over one price series.
type Explorer struct {
	symbol         string
	bars           []types.PriceBar
	initialCapital float64
	riskFreeRate   float64
	periodsPerYear int
	log            *logger.Logger
	showProgress   bool
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithProgressBar enables the console progress bar during grid searches.
func WithProgressBar() Option {
	return func(e *Explorer) {
		e.showProgress = true
	}
}

// NewExplorer creates an explorer for the given price series. The risk-free
// rate is resolved once by the caller and reused for every combination so
// the grid search stays deterministic.
func NewExplorer(symbol string, bars []types.PriceBar, initialCapital, riskFreeRate float64, periodsPerYear int, log *logger.Logger, opts ...Option) (*Explorer, error) {
	if err := types.ValidateSeries(bars); err != nil {
		return nil, err
	}

	if log == nil {
		var err error

		log, err = logger.NewLogger()
		if err != nil {
			return nil, err
		}
	}

	e := &Explorer{
		symbol:         symbol,
		bars:           bars,
		initialCapital: initialCapital,
		riskFreeRate:   riskFreeRate,
		periodsPerYear: periodsPerYear,
		log:            log,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Evaluate runs a single parameter combination end to end.
func (e *Explorer) Evaluate(params types.StrategyParams) (*types.StrategyResult, error) {
	strat, err := strategy.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy %s: %w", params.Label(), err)
	}

	rows, err := strat.Evaluate(e.bars)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", params.Label(), err)
	}

	sim, err := portfolio.NewSimulator(e.initialCapital)
	if err != nil {
		return nil, err
	}

	equity, err := sim.Run(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate %s: %w", params.Label(), err)
	}

	return &types.StrategyResult{
		ID:          uuid.New().String(),
		Symbol:      e.symbol,
		Params:      params,
		Rows:        rows,
		Equity:      equity,
		SharpeRatio: metrics.SharpeRatio(equity, e.riskFreeRate, e.periodsPerYear),
		MaxDrawdown: metrics.MaxDrawdown(equity),
	}, nil
}

// ExploreMomentum evaluates the momentum strategy for every window in the
// given order and returns all results plus the best one. Ties on Sharpe
// keep the first-encountered combination.
func (e *Explorer) ExploreMomentum(windows []int) ([]types.StrategyResult, *types.StrategyResult, error) {
	grid := make([]types.StrategyParams, 0, len(windows))
	for _, window := range windows {
		grid = append(grid, types.StrategyParams{
			Kind:   types.StrategyMomentum,
			Window: window,
		})
	}

	return e.explore("momentum", grid)
}

// ExploreMeanReversion evaluates the mean reversion strategy over the full
// windows x thresholds grid in declaration order (windows outer, thresholds
// inner) and returns all results plus the best one.
func (e *Explorer) ExploreMeanReversion(windows []int, thresholds []float64) ([]types.StrategyResult, *types.StrategyResult, error) {
	grid := make([]types.StrategyParams, 0, len(windows)*len(thresholds))

	for _, window := range windows {
		for _, threshold := range thresholds {
			grid = append(grid, types.StrategyParams{
				Kind:      types.StrategyMeanReversion,
				Window:    window,
				Threshold: threshold,
			})
		}
	}

	return e.explore("mean reversion", grid)
}

func (e *Explorer) explore(name string, grid []types.StrategyParams) ([]types.StrategyResult, *types.StrategyResult, error) {
	e.log.Info("exploring parameters",
		zap.String("strategy", name),
		zap.String("symbol", e.symbol),
		zap.Int("combinations", len(grid)),
	)

	var bar *progressbar.ProgressBar
	if e.showProgress {
		bar = progressbar.NewOptions(len(grid),
			progressbar.OptionSetDescription(fmt.Sprintf("Exploring %s", name)),
			progressbar.OptionShowCount(),
		)
	}

	results := make([]types.StrategyResult, 0, len(grid))

	var best *types.StrategyResult

	for _, params := range grid {
		result, err := e.Evaluate(params)
		if err != nil {
			return nil, nil, err
		}

		results = append(results, *result)

		// Strictly greater keeps the first-seen combination on ties.
		if best == nil || result.SharpeRatio > best.SharpeRatio {
			best = result
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if best != nil {
		e.log.Info("best combination found",
			zap.String("strategy", name),
			zap.String("params", best.Params.Label()),
			zap.Float64("sharpe", best.SharpeRatio),
		)
	}

	return results, best, nil
}

// Winner returns the better of two results by Sharpe ratio, preferring the
// first argument on ties. Nil results lose to non-nil ones.
func Winner(a, b *types.StrategyResult) *types.StrategyResult {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.SharpeRatio > a.SharpeRatio:
		return b
	default:
		return a
	}
}
