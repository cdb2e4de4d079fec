package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Heightsdesign/stockwatch/internal/marketdata"
	"github.com/Heightsdesign/stockwatch/internal/model"
)

// dailyBars builds n daily bars with closes 1, 2, ..., n.
func dailyBars(n int) []model.OHLCV {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := float64(i + 1)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func smaCondition(pos int, op model.Operator, number float64) model.Condition {
	return model.Condition{
		Position:  pos,
		Indicator: "MOVING AVERAGE",
		Line:      "MA",
		Timeframe: model.TF1Day,
		Params:    model.Params{"length": 5},
		Operator:  op,
		ValueType: model.ValueNumber,
		Number:    number,
	}
}

func TestChainAllConditionsMet(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailyBars(60),
	}}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	// SMA(5) over closes 56..60 is 58.
	res, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{
		smaCondition(1, model.OpGreaterThan, 50),
		smaCondition(2, model.OpLessThan, 60),
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	require.Len(t, res.Results, 2)
	assert.InDelta(t, 58.0, res.Results[0].MainValue, 1e-9)
	assert.True(t, res.Results[0].Met)
	assert.True(t, res.Results[1].Met)
}

func TestChainShortCircuitsOnFirstMiss(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailyBars(60),
	}}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	res, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{
		smaCondition(1, model.OpGreaterThan, 100), // 58 > 100 fails
		smaCondition(2, model.OpGreaterThan, 0),
	})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	require.Len(t, res.Results, 1, "second condition must not run")
	assert.False(t, res.Results[0].Met)
}

func TestChainSingleFetchPerTimeframe(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailyBars(120),
	}}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	_, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{
		smaCondition(1, model.OpGreaterThan, 0),
		{
			Position:  2,
			Indicator: "RSI",
			Line:      "RSI",
			Timeframe: model.TF1Day,
			Params:    model.Params{"length": 14},
			Operator:  model.OpGreaterThan,
			ValueType: model.ValueNumber,
			Number:    1,
		},
	})
	require.NoError(t, err)
	assert.Len(t, fetcher.Calls, 1, "both daily conditions share one fetch")
}

func TestChainPositionOrderNotInputOrder(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailyBars(60),
	}}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	res, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{
		smaCondition(3, model.OpGreaterThan, 0),
		smaCondition(1, model.OpGreaterThan, 100), // fails, must run first
	})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Results[0].Position)
}

func TestChainFailsClosedOnFetchError(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Err: marketdata.ErrNoData}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	res, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{
		smaCondition(1, model.OpGreaterThan, 0),
	})
	require.Error(t, err)
	assert.False(t, res.Matched)
}

func TestChainFailsClosedOnUnknownIndicator(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailyBars(60),
	}}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	cond := smaCondition(1, model.OpGreaterThan, 0)
	cond.Indicator = "NO SUCH INDICATOR"
	res, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{cond})
	require.Error(t, err)
	assert.False(t, res.Matched)
}

func TestChainRecoversEvaluationPanic(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		SeriesFn: func(_, _, _ string) ([]model.OHLCV, error) {
			panic("corrupt provider payload")
		},
	}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	res, err := eval.Evaluate(context.Background(), "AAPL", []model.Condition{
		smaCondition(1, model.OpGreaterThan, 0),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.False(t, res.Matched)
}

func TestChainEmptyConditions(t *testing.T) {
	fetcher := &marketdata.MockFetcher{}
	eval := NewChainEvaluator(fetcher, zap.NewNop())

	res, err := eval.Evaluate(context.Background(), "AAPL", nil)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Empty(t, fetcher.Calls)
}
