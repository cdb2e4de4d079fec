package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Heightsdesign/stockwatch/internal/indicator"
	"github.com/Heightsdesign/stockwatch/internal/marketdata"
	"github.com/Heightsdesign/stockwatch/internal/model"
	"github.com/Heightsdesign/stockwatch/internal/window"
)

// ChainResult is the outcome of evaluating a condition chain. Results holds
// one entry per condition evaluated before the chain stopped, in position
// order.
type ChainResult struct {
	Matched bool
	Results []model.ConditionResult
}

// ChainEvaluator evaluates indicator condition chains for a symbol. It plans
// one fetch per distinct timeframe and fails closed: any fetch or evaluation
// error makes the chain not matched.
type ChainEvaluator struct {
	fetcher marketdata.Fetcher
	log     *zap.Logger
}

func NewChainEvaluator(fetcher marketdata.Fetcher, log *zap.Logger) *ChainEvaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChainEvaluator{fetcher: fetcher, log: log}
}

// Evaluate runs the chain for symbol. Conditions are evaluated in position
// order and the chain short-circuits on the first condition that is not met
// or cannot be evaluated. A panic anywhere in planning, fetching or compute
// is converted into a not-matched error so the caller's cycle survives.
func (e *ChainEvaluator) Evaluate(ctx context.Context, symbol string, conditions []model.Condition) (result ChainResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("chain evaluation panicked",
				zap.String("symbol", symbol),
				zap.Any("panic", r))
			result = ChainResult{}
			err = fmt.Errorf("chain evaluation panic: %v", r)
		}
	}()

	if len(conditions) == 0 {
		return ChainResult{}, nil
	}

	ordered := make([]model.Condition, len(conditions))
	copy(ordered, conditions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	cache, err := e.loadSeries(ctx, symbol, ordered)
	if err != nil {
		e.log.Warn("chain data fetch failed",
			zap.String("symbol", symbol),
			zap.Error(err))
		return ChainResult{}, err
	}

	result = ChainResult{Results: make([]model.ConditionResult, 0, len(ordered))}
	for _, cond := range ordered {
		cr, err := evaluateCondition(cond, cache)
		if err != nil {
			e.log.Warn("condition evaluation failed, chain not matched",
				zap.String("symbol", symbol),
				zap.Int("position", cond.Position),
				zap.String("indicator", cond.Indicator),
				zap.Error(err))
			return ChainResult{Results: result.Results}, err
		}
		result.Results = append(result.Results, cr)
		if !cr.Met {
			return result, nil
		}
	}
	result.Matched = true
	return result, nil
}

// loadSeries plans the minimal set of fetches for the chain's timeframes and
// fills a series cache with the raw bars.
func (e *ChainEvaluator) loadSeries(ctx context.Context, symbol string, conditions []model.Condition) (*seriesCache, error) {
	reqs := make([]window.Requirement, 0, len(conditions)*2)
	for _, cond := range conditions {
		reqs = append(reqs, window.Requirement{
			Timeframe: cond.Timeframe,
			Length:    minBarsOrDefault(cond.Indicator, cond.Params),
		})
		if cond.ValueType == model.ValueIndicatorLine && cond.ValueTimeframe != "" {
			reqs = append(reqs, window.Requirement{
				Timeframe: cond.ValueTimeframe,
				Length:    minBarsOrDefault(cond.ValueIndicator, cond.ValueParams),
			})
		} else if cond.ValueType == model.ValuePrice && cond.ValueTimeframe != "" {
			reqs = append(reqs, window.Requirement{Timeframe: cond.ValueTimeframe, Length: 1})
		}
	}

	plan, err := window.Plan(reqs)
	if err != nil {
		return nil, err
	}

	cache := newSeriesCache()
	for tf, spec := range plan {
		bars, err := e.fetcher.Fetch(ctx, symbol, spec.Period, spec.Interval)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			return nil, marketdata.ErrNoData
		}
		cache.put(tf, bars)
	}
	return cache, nil
}

// minBarsOrDefault asks the registry for the indicator's history need. An
// unknown indicator or bad params still gets a fetch for its timeframe so the
// later evaluation reports the real error instead of a missing series.
func minBarsOrDefault(name string, params model.Params) int {
	n, err := indicator.MinBars(name, params)
	if err != nil {
		return 1
	}
	return n
}
