package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertKind discriminates the three supported alert types.
type AlertKind string

const (
	KindPriceTarget      AlertKind = "PRICE"
	KindPercentageChange AlertKind = "PERCENT_CHANGE"
	KindIndicatorChain   AlertKind = "INDICATOR_CHAIN"
)

// Operator is a comparison operator between two scalar values.
type Operator string

const (
	OpGreaterThan Operator = "GT"
	OpLessThan    Operator = "LT"
	// OpEqualTo compares computed float64 values exactly, no epsilon. On
	// indicator outputs this will almost never fire; preserved as the
	// documented product behavior.
	OpEqualTo Operator = "EQ"
)

// Direction of a percentage-change alert.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// LookbackPeriod is the fixed enum of percentage-change lookbacks.
type LookbackPeriod string

const (
	Lookback1Day   LookbackPeriod = "1D"
	Lookback1Week  LookbackPeriod = "1W"
	Lookback1Month LookbackPeriod = "1M"
	Lookback1Year  LookbackPeriod = "1Y"
	LookbackCustom LookbackPeriod = "CUSTOM"
)

// PriceTargetPayload describes a price-target alert.
type PriceTargetPayload struct {
	TargetPrice      decimal.Decimal `json:"target_price"`
	Operator         Operator        `json:"operator"`
	CheckIntervalMin int             `json:"check_interval"`
}

// PercentageChangePayload describes a percentage-change alert.
type PercentageChangePayload struct {
	Lookback         LookbackPeriod  `json:"lookback_period"`
	CustomDays       int             `json:"custom_lookback_days,omitempty"`
	Direction        Direction       `json:"direction"`
	Percent          decimal.Decimal `json:"percentage_change"`
	CheckIntervalMin int             `json:"check_interval"`
}

// IndicatorChainPayload describes an indicator-chain alert.
type IndicatorChainPayload struct {
	CheckIntervalMin int         `json:"check_interval"`
	Conditions       []Condition `json:"conditions"`
}

// Alert is a user-defined alert on one instrument. Exactly one payload field
// is set, matching Kind.
type Alert struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Symbol          string     `json:"symbol"`
	Kind            AlertKind  `json:"kind"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`

	PriceTarget      *PriceTargetPayload      `json:"price_target,omitempty"`
	PercentageChange *PercentageChangePayload `json:"percentage_change,omitempty"`
	IndicatorChain   *IndicatorChainPayload   `json:"indicator_chain,omitempty"`
}

// NewAlert creates an active alert with a fresh ID.
func NewAlert(userID, symbol string, kind AlertKind) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Symbol:    symbol,
		Kind:      kind,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// CheckInterval returns the alert's check interval.
func (a *Alert) CheckInterval() time.Duration {
	minutes := 1
	switch a.Kind {
	case KindPriceTarget:
		if a.PriceTarget != nil {
			minutes = a.PriceTarget.CheckIntervalMin
		}
	case KindPercentageChange:
		if a.PercentageChange != nil {
			minutes = a.PercentageChange.CheckIntervalMin
		}
	case KindIndicatorChain:
		if a.IndicatorChain != nil {
			minutes = a.IndicatorChain.CheckIntervalMin
		}
	}
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}

// Due reports whether the alert should be evaluated at now. The reference
// point is the last trigger, falling back to creation time.
func (a *Alert) Due(now time.Time) bool {
	last := a.CreatedAt
	if a.LastTriggeredAt != nil {
		last = *a.LastTriggeredAt
	}
	return now.Sub(last) >= a.CheckInterval()
}

// Validate checks that the payload matches the alert kind.
func (a *Alert) Validate() error {
	switch a.Kind {
	case KindPriceTarget:
		if a.PriceTarget == nil || a.PercentageChange != nil || a.IndicatorChain != nil {
			return fmt.Errorf("alert %s: kind %s requires exactly a price-target payload", a.ID, a.Kind)
		}
	case KindPercentageChange:
		if a.PercentageChange == nil || a.PriceTarget != nil || a.IndicatorChain != nil {
			return fmt.Errorf("alert %s: kind %s requires exactly a percentage-change payload", a.ID, a.Kind)
		}
	case KindIndicatorChain:
		if a.IndicatorChain == nil || a.PriceTarget != nil || a.PercentageChange != nil {
			return fmt.Errorf("alert %s: kind %s requires exactly an indicator-chain payload", a.ID, a.Kind)
		}
	default:
		return fmt.Errorf("alert %s: unknown kind %q", a.ID, a.Kind)
	}
	return nil
}
