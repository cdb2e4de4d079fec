package model

import (
	"fmt"
	"time"
)

// MaxChainConditions caps the number of conditions in one chain.
const MaxChainConditions = 5

// ValueType tells what the main operand is compared against.
type ValueType string

const (
	ValueNumber        ValueType = "NUMBER"
	ValuePrice         ValueType = "PRICE"
	ValueIndicatorLine ValueType = "INDICATOR_LINE"
)

// Params carries user-supplied indicator parameters as loosely typed values
// (JSON numbers and strings) until the indicator library coerces them.
type Params map[string]any

// Condition is one link of an indicator chain: a main indicator operand, a
// comparison operator and a comparison operand.
type Condition struct {
	Position int `json:"position_in_chain"`

	Indicator string    `json:"indicator"`
	Line      string    `json:"indicator_line,omitempty"`
	Timeframe Timeframe `json:"indicator_timeframe"`
	Params    Params    `json:"indicator_parameters,omitempty"`

	Operator Operator `json:"condition_operator"`

	ValueType      ValueType `json:"value_type"`
	Number         float64   `json:"value_number,omitempty"`
	ValueIndicator string    `json:"value_indicator,omitempty"`
	ValueLine      string    `json:"value_indicator_line,omitempty"`
	ValueTimeframe Timeframe `json:"value_timeframe,omitempty"`
	ValueParams    Params    `json:"value_indicator_parameters,omitempty"`
}

// ConditionResult is the diagnostic outcome of evaluating one condition.
type ConditionResult struct {
	Position        int     `json:"position"`
	Indicator       string  `json:"indicator"`
	Line            string  `json:"line,omitempty"`
	Operator        string  `json:"operator"`
	MainValue       float64 `json:"main_value"`
	ComparisonValue float64 `json:"comparison_value"`
	Met             bool    `json:"met"`
}

// TriggerContext is the structured payload handed to the notification
// collaborator when an alert fires. It carries enough data to render
// channel-specific messages; the engine itself formats nothing.
type TriggerContext struct {
	Kind         AlertKind         `json:"kind"`
	Symbol       string            `json:"symbol"`
	TriggeredAt  time.Time         `json:"triggered_at"`
	CurrentValue float64           `json:"current_value"`
	TargetValue  float64           `json:"target_value"`
	Conditions   []ConditionResult `json:"conditions,omitempty"`
}

func (c Condition) String() string {
	return fmt.Sprintf("condition %d: %s[%s]@%s %s %s", c.Position, c.Indicator, c.Line, c.Timeframe, c.Operator, c.ValueType)
}
