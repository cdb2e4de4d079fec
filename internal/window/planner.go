// Package window plans historical data fetches for indicator evaluation.
//
// Given the timeframes and window lengths a chain of conditions needs, it
// produces one FetchSpec per distinct timeframe: the provider period string
// covering the required calendar span and the native interval for the
// timeframe. Sharing one fetch per timeframe is what keeps a multi-condition
// chain at one network round-trip per granularity.
package window

import (
	"errors"
	"math"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// ErrNoTimeframes is returned for an empty requirement set. A valid chain
// always produces at least one requirement.
var ErrNoTimeframes = errors.New("no timeframes requested")

// Requirement asks for at least Length bars at Timeframe.
type Requirement struct {
	Timeframe model.Timeframe
	Length    int
}

// FetchSpec is a concrete provider request: a discrete period covering the
// required span and the bar interval to fetch.
type FetchSpec struct {
	Period   string
	Interval string
}

// periodLadder maps a day span to the smallest discrete provider period
// covering it, in ascending order.
var periodLadder = []struct {
	Days   int
	Period string
}{
	{1, "1d"},
	{5, "5d"},
	{30, "1mo"},
	{90, "3mo"},
	{180, "6mo"},
	{365, "1y"},
	{730, "2y"},
	{1825, "5y"},
	{3650, "10y"},
}

// maxPeriod requests everything the provider has, for spans beyond the ladder.
const maxPeriod = "max"

// Plan deduplicates requirements by timeframe (keeping the maximum length),
// converts bar counts to calendar days with a 10% safety buffer, and picks
// the smallest covering period per timeframe.
func Plan(reqs []Requirement) (map[model.Timeframe]FetchSpec, error) {
	if len(reqs) == 0 {
		return nil, ErrNoTimeframes
	}

	maxLen := make(map[model.Timeframe]int)
	for _, r := range reqs {
		length := r.Length
		if length < 1 {
			length = 1
		}
		if length > maxLen[r.Timeframe] {
			maxLen[r.Timeframe] = length
		}
	}

	plan := make(map[model.Timeframe]FetchSpec, len(maxLen))
	for tf, length := range maxLen {
		days := requiredDays(tf, length)
		plan[tf] = FetchSpec{
			Period:   PeriodForDays(days),
			Interval: tf.FetchInterval(),
		}
	}
	return plan, nil
}

// requiredDays converts a bar count at tf into calendar days, adding a 10%
// buffer of at least one day for holidays and partial sessions.
func requiredDays(tf model.Timeframe, length int) int {
	days := int(math.Ceil(float64(length) / float64(tf.BarsPerDay())))
	buffer := int(math.Ceil(float64(days) * 0.1))
	if buffer < 1 {
		buffer = 1
	}
	return days + buffer
}

// PeriodForDays returns the smallest ladder period covering the span.
func PeriodForDays(days int) string {
	for _, step := range periodLadder {
		if days <= step.Days {
			return step.Period
		}
	}
	return maxPeriod
}
