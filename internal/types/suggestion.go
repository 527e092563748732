package types

import "time"

// Action is the trade action a suggestion recommends.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

// PositionState is the position implied by the latest signal.
type PositionState string

const (
	StateLong PositionState = "Long"
	StateFlat PositionState = "Flat"
)

// Suggestion is the trade suggestion derived from the last row of the
// winning strategy's signal sequence.
type Suggestion struct {
	// Action is Buy, Sell or Hold depending on the last position change.
	Action Action `yaml:"action" json:"action"`
	// State is Long or Flat depending on the last signal.
	State PositionState `yaml:"state" json:"state"`
	// AsOf is the date of the last bar.
	AsOf time.Time `yaml:"as_of" json:"as_of"`
	// Price is the closing price of the last bar.
	Price float64 `yaml:"price" json:"price"`
	// RollingMean is the indicator value at the last bar.
	RollingMean float64 `yaml:"rolling_mean" json:"rolling_mean"`
	// Strategy labels the strategy that produced the suggestion.
	Strategy string `yaml:"strategy" json:"strategy"`
}

// NewSuggestion derives a suggestion from a strategy result. Returns a
// Hold/Flat suggestion when the result has no rows.
func NewSuggestion(result *StrategyResult) Suggestion {
	suggestion := Suggestion{
		Action: ActionHold,
		State:  StateFlat,
	}

	if result == nil || len(result.Rows) == 0 {
		return suggestion
	}

	last := result.Rows[len(result.Rows)-1]
	suggestion.AsOf = last.Time
	suggestion.Price = last.Close
	suggestion.RollingMean = last.RollingMean
	suggestion.Strategy = result.Params.Label()

	switch last.Position {
	case PositionBuy:
		suggestion.Action = ActionBuy
	case PositionSell:
		suggestion.Action = ActionSell
	case PositionHold:
		suggestion.Action = ActionHold
	}

	if last.Signal == SignalLong {
		suggestion.State = StateLong
	}

	return suggestion
}
