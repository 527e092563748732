package types

import "time"

// Signal is the position the strategy wants to hold after a bar.
type Signal int

const (
	// SignalFlat means the strategy holds no position.
	SignalFlat Signal = 0
	// SignalLong means the strategy is fully invested.
	SignalLong Signal = 1
)

// PositionChange describes the transition between consecutive signals.
type PositionChange int

const (
	// PositionHold means the signal did not change.
	PositionHold PositionChange = 0
	// PositionBuy means the signal flipped from flat to long.
	PositionBuy PositionChange = 1
	// PositionSell means the signal flipped from long to flat.
	PositionSell PositionChange = -1
)

// SignalRow is one bar of strategy output. The signal at a bar depends only
// on data available through the previous bar.
type SignalRow struct {
	// Time is the bar date.
	Time time.Time `yaml:"time" json:"time"`
	// Close is the bar closing price.
	Close float64 `yaml:"close" json:"close"`
	// RollingMean is the lagged rolling mean used for the decision.
	// Zero with Warmup set while the window has not filled.
	RollingMean float64 `yaml:"rolling_mean" json:"rolling_mean"`
	// LowerBand and UpperBand are the mean reversion bands.
	// Unused (zero) for momentum rows.
	LowerBand float64 `yaml:"lower_band,omitempty" json:"lower_band,omitempty"`
	UpperBand float64 `yaml:"upper_band,omitempty" json:"upper_band,omitempty"`
	// Warmup marks rows where the rolling statistics are undefined.
	Warmup bool `yaml:"warmup,omitempty" json:"warmup,omitempty"`
	// Signal is the desired position after this bar.
	Signal Signal `yaml:"signal" json:"signal"`
	// Position is the change from the previous row's signal.
	Position PositionChange `yaml:"position" json:"position"`
}
