// Package engine evaluates alert conditions against fetched market data.
package engine

import (
	"errors"
	"fmt"

	"github.com/Heightsdesign/stockwatch/internal/indicator"
	"github.com/Heightsdesign/stockwatch/internal/model"
)

var (
	// ErrUnsupportedOperator means the condition carries an operator the
	// evaluator does not implement.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrMalformedCondition means an indicator-typed comparison operand is
	// missing its indicator, line or timeframe.
	ErrMalformedCondition = errors.New("malformed condition")
	// ErrSeriesMissing means the cache holds no series for a timeframe the
	// condition needs. Treated as data unavailable by the chain evaluator.
	ErrSeriesMissing = errors.New("no cached series for timeframe")
)

// seriesCache holds one fetched series per timeframe, at the provider's
// fetch granularity, resampling lazily to the requested timeframe.
type seriesCache struct {
	raw       map[model.Timeframe][]model.OHLCV
	resampled map[model.Timeframe][]model.OHLCV
}

func newSeriesCache() *seriesCache {
	return &seriesCache{
		raw:       make(map[model.Timeframe][]model.OHLCV),
		resampled: make(map[model.Timeframe][]model.OHLCV),
	}
}

func (c *seriesCache) put(tf model.Timeframe, bars []model.OHLCV) {
	c.raw[tf] = bars
}

// series returns the cached bars for tf at tf granularity.
func (c *seriesCache) series(tf model.Timeframe) ([]model.OHLCV, error) {
	if bars, ok := c.resampled[tf]; ok {
		return bars, nil
	}
	raw, ok := c.raw[tf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeriesMissing, tf)
	}
	bars := model.Resample(raw, tf.FetchTimeframe(), tf)
	c.resampled[tf] = bars
	return bars, nil
}

// evaluateCondition computes both operands of one condition and applies its
// operator. Errors carry the condition position for diagnostics.
func evaluateCondition(cond model.Condition, cache *seriesCache) (model.ConditionResult, error) {
	result := model.ConditionResult{
		Position:  cond.Position,
		Indicator: cond.Indicator,
		Line:      cond.Line,
		Operator:  string(cond.Operator),
	}

	fail := func(err error) (model.ConditionResult, error) {
		return result, fmt.Errorf("condition %d: %w", cond.Position, err)
	}

	bars, err := cache.series(cond.Timeframe)
	if err != nil {
		return fail(err)
	}

	main, err := indicator.Compute(cond.Indicator, bars, cond.Line, cond.Params)
	if err != nil {
		return fail(err)
	}
	result.MainValue = main

	var comparison float64
	switch cond.ValueType {
	case model.ValueNumber:
		comparison = cond.Number

	case model.ValuePrice:
		priceBars := bars
		if cond.ValueTimeframe != "" && cond.ValueTimeframe != cond.Timeframe {
			priceBars, err = cache.series(cond.ValueTimeframe)
			if err != nil {
				return fail(err)
			}
		}
		if len(priceBars) == 0 {
			return fail(ErrSeriesMissing)
		}
		comparison = model.LastClose(priceBars)

	case model.ValueIndicatorLine:
		if cond.ValueIndicator == "" || cond.ValueLine == "" || cond.ValueTimeframe == "" {
			return fail(fmt.Errorf("%w: indicator comparison needs indicator, line and timeframe", ErrMalformedCondition))
		}
		valueBars, err := cache.series(cond.ValueTimeframe)
		if err != nil {
			return fail(err)
		}
		comparison, err = indicator.Compute(cond.ValueIndicator, valueBars, cond.ValueLine, cond.ValueParams)
		if err != nil {
			return fail(err)
		}

	default:
		return fail(fmt.Errorf("%w: unknown value type %q", ErrMalformedCondition, cond.ValueType))
	}
	result.ComparisonValue = comparison

	met, err := compare(main, cond.Operator, comparison)
	if err != nil {
		return fail(err)
	}
	result.Met = met
	return result, nil
}

// compare applies the operator. Equality is exact on float64.
func compare(main float64, op model.Operator, comparison float64) (bool, error) {
	switch op {
	case model.OpGreaterThan:
		return main > comparison, nil
	case model.OpLessThan:
		return main < comparison, nil
	case model.OpEqualTo:
		return main == comparison, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
}
