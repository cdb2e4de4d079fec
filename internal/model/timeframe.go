package model

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the bar granularity used for an indicator calculation.
type Timeframe string

const (
	TF1Min  Timeframe = "1MIN"
	TF5Min  Timeframe = "5MIN"
	TF15Min Timeframe = "15MIN"
	TF30Min Timeframe = "30MIN"
	TF1Hour Timeframe = "1H"
	TF4Hour Timeframe = "4H"
	TF1Day  Timeframe = "1D"
)

// Timeframes lists all supported timeframes, finest first.
var Timeframes = []Timeframe{TF1Min, TF5Min, TF15Min, TF30Min, TF1Hour, TF4Hour, TF1Day}

// ParseTimeframe normalizes and validates a timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Timeframes {
		if tf == known {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// Duration returns the span of a single bar at this timeframe.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF1Min:
		return time.Minute
	case TF5Min:
		return 5 * time.Minute
	case TF15Min:
		return 15 * time.Minute
	case TF30Min:
		return 30 * time.Minute
	case TF1Hour:
		return time.Hour
	case TF4Hour:
		return 4 * time.Hour
	case TF1Day:
		return 24 * time.Hour
	}
	return 24 * time.Hour
}

// BarsPerDay returns the approximate number of bars per trading day
// (6.5-hour US session, rounded up for the coarser intraday frames).
func (tf Timeframe) BarsPerDay() int {
	switch tf {
	case TF1Min:
		return 390
	case TF5Min:
		return 78
	case TF15Min:
		return 26
	case TF30Min:
		return 13
	case TF1Hour:
		return 7
	case TF4Hour:
		return 2
	case TF1Day:
		return 1
	}
	return 1
}

// FetchInterval returns the provider interval used to fetch this timeframe.
// 4H has no native interval at the provider; it is fetched as 1h and
// resampled by the evaluator.
func (tf Timeframe) FetchInterval() string {
	switch tf {
	case TF1Min:
		return "1m"
	case TF5Min:
		return "5m"
	case TF15Min:
		return "15m"
	case TF30Min:
		return "30m"
	case TF1Hour, TF4Hour:
		return "1h"
	case TF1Day:
		return "1d"
	}
	return "1d"
}

// FetchTimeframe returns the timeframe actually delivered by the provider
// for this timeframe's FetchInterval.
func (tf Timeframe) FetchTimeframe() Timeframe {
	if tf == TF4Hour {
		return TF1Hour
	}
	return tf
}
