package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyKind names a strategy family.
type StrategyKind string

const (
	StrategyMomentum      StrategyKind = "momentum"
	StrategyMeanReversion StrategyKind = "mean_reversion"
)

// StrategyParams holds the parameters of a single strategy run.
type StrategyParams struct {
	// Kind is the strategy family.
	Kind StrategyKind `yaml:"kind" json:"kind" validate:"required,oneof=momentum mean_reversion"`
	// Window is the rolling mean lookback in bars.
	Window int `yaml:"window" json:"window" validate:"required,gt=0"`
	// Threshold is the mean reversion band width as a fraction of the
	// rolling mean. Ignored for momentum.
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Label returns a short human-readable description of the parameters.
func (p StrategyParams) Label() string {
	if p.Kind == StrategyMeanReversion {
		return fmt.Sprintf("Mean Reversion (W=%d, T=%.3f)", p.Window, p.Threshold)
	}

	return fmt.Sprintf("Momentum (W=%d)", p.Window)
}

// EquityPoint is the portfolio value at one bar.
type EquityPoint struct {
	// Time is the bar date.
	Time time.Time `yaml:"time" json:"time"`
	// Value is the portfolio value (cash plus asset holdings at close).
	Value float64 `yaml:"value" json:"value"`
}

// StrategyResult is the immutable outcome of one strategy evaluation:
// the parameters used, the full signal and equity sequences, and the
// computed risk metrics.
type StrategyResult struct {
	// ID uniquely identifies the evaluation.
	ID string `yaml:"id" json:"id"`
	// Symbol is the ticker the result was computed for.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Params are the parameters the strategy ran with.
	Params StrategyParams `yaml:"params" json:"params"`
	// Rows is the per-bar signal sequence.
	Rows []SignalRow `yaml:"-" json:"-"`
	// Equity is the per-bar portfolio value sequence.
	Equity []EquityPoint `yaml:"-" json:"-"`
	// SharpeRatio is the annualized risk-adjusted return. Zero when the
	// return variance is zero.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// MaxDrawdown is the largest peak-to-trough equity decline as a
	// negative fraction. Zero when equity never declines.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
}

// FinalEquity returns the portfolio value at the last bar, or zero for an
// empty result.
func (r *StrategyResult) FinalEquity() float64 {
	if len(r.Equity) == 0 {
		return 0
	}

	return r.Equity[len(r.Equity)-1].Value
}

// RunSummary is the yaml-serializable record of a full sandbox run.
type RunSummary struct {
	// ID is the unique identifier of the run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol is the ticker analyzed.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Results holds the metric summaries per evaluated combination.
	Results []StrategyResult `yaml:"results" json:"results"`
	// Best is the winning result per strategy family, keyed by kind.
	Best map[StrategyKind]StrategyResult `yaml:"best" json:"best"`
	// Suggestion is the trade suggestion from the overall winner.
	Suggestion Suggestion `yaml:"suggestion" json:"suggestion"`
}

// Write serializes the summary to the given path in yaml format.
func (s *RunSummary) Write(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	return nil
}
