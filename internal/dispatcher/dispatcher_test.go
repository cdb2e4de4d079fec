package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Heightsdesign/stockwatch/internal/marketdata"
	"github.com/Heightsdesign/stockwatch/internal/model"
	"github.com/Heightsdesign/stockwatch/internal/store"
)

type recordingNotifier struct {
	sent []model.TriggerContext
	err  error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(_ context.Context, _ *model.Alert, trigger model.TriggerContext) error {
	n.sent = append(n.sent, trigger)
	return n.err
}

func dailySeries(closes ...float64) []model.OHLCV {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return bars
}

func newTestDispatcher(st store.Store, fetcher marketdata.Fetcher, nt *recordingNotifier, now time.Time) *Dispatcher {
	d := New(st, fetcher, nt, nil, nil, zap.NewNop())
	d.now = func() time.Time { return now }
	return d
}

func priceTargetAlert(symbol string, target float64, op model.Operator) *model.Alert {
	alert := model.NewAlert("u1", symbol, model.KindPriceTarget)
	alert.PriceTarget = &model.PriceTargetPayload{
		TargetPrice:      decimal.NewFromFloat(target),
		Operator:         op,
		CheckIntervalMin: 60,
	}
	return alert
}

func TestPriceTargetTriggersAndDeactivates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := priceTargetAlert("AAPL", 100, model.OpGreaterThan)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, alert))

	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(99, 101.50),
	}}
	nt := &recordingNotifier{}
	now := alert.CreatedAt.Add(2 * time.Hour)

	require.NoError(t, newTestDispatcher(st, fetcher, nt, now).RunCycle(ctx))

	require.Len(t, nt.sent, 1)
	assert.InDelta(t, 101.50, nt.sent[0].CurrentValue, 1e-9)
	assert.InDelta(t, 100.0, nt.sent[0].TargetValue, 1e-9)

	got, err := st.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "triggered alert is single-shot")
	require.NotNil(t, got.LastTriggeredAt)
	assert.True(t, got.LastTriggeredAt.Equal(now))
}

func TestDueGatingSkipsRecentlyChecked(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := priceTargetAlert("AAPL", 100, model.OpGreaterThan)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, alert))

	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(101.50),
	}}
	nt := &recordingNotifier{}

	// 59 minutes into a 60 minute interval: not due yet, no fetch.
	now := alert.CreatedAt.Add(59 * time.Minute)
	require.NoError(t, newTestDispatcher(st, fetcher, nt, now).RunCycle(ctx))
	assert.Empty(t, nt.sent)
	assert.Empty(t, fetcher.Calls)

	now = alert.CreatedAt.Add(60 * time.Minute)
	require.NoError(t, newTestDispatcher(st, fetcher, nt, now).RunCycle(ctx))
	assert.Len(t, nt.sent, 1)
}

func TestPercentageChangeUpTriggers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := model.NewAlert("u1", "TSLA", model.KindPercentageChange)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	alert.PercentageChange = &model.PercentageChangePayload{
		Lookback:         model.Lookback1Week,
		Direction:        model.DirectionUp,
		Percent:          decimal.NewFromInt(5),
		CheckIntervalMin: 60,
	}
	require.NoError(t, st.Save(ctx, alert))

	// Opens at 100, closes the week at 106: +6% beats the 5% threshold.
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(100, 102, 104, 105, 106),
	}}
	nt := &recordingNotifier{}
	now := alert.CreatedAt.Add(2 * time.Hour)

	require.NoError(t, newTestDispatcher(st, fetcher, nt, now).RunCycle(ctx))
	require.Len(t, nt.sent, 1)
	assert.InDelta(t, 6.0, nt.sent[0].CurrentValue, 1e-9)
	require.Len(t, fetcher.Calls, 1)
	assert.Equal(t, "5d", fetcher.Calls[0].Period)
}

func TestPercentageChangeDownBelowThresholdStaysArmed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := model.NewAlert("u1", "TSLA", model.KindPercentageChange)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	alert.PercentageChange = &model.PercentageChangePayload{
		Lookback:         model.Lookback1Week,
		Direction:        model.DirectionDown,
		Percent:          decimal.NewFromInt(5),
		CheckIntervalMin: 60,
	}
	require.NoError(t, st.Save(ctx, alert))

	// -3% does not reach the -5% threshold.
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(100, 98, 97),
	}}
	nt := &recordingNotifier{}
	now := alert.CreatedAt.Add(2 * time.Hour)

	require.NoError(t, newTestDispatcher(st, fetcher, nt, now).RunCycle(ctx))
	assert.Empty(t, nt.sent)

	got, err := st.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastTriggeredAt, "a miss leaves the alert untouched")
}

func TestFetchFailureKeepsAlertActive(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := priceTargetAlert("AAPL", 100, model.OpGreaterThan)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, alert))

	fetcher := &marketdata.MockFetcher{Err: errors.New("provider down")}
	nt := &recordingNotifier{}
	now := alert.CreatedAt.Add(2 * time.Hour)

	require.NoError(t, newTestDispatcher(st, fetcher, nt, now).RunCycle(ctx))
	assert.Empty(t, nt.sent)

	got, err := st.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestAlertsOnSameSymbolShareOneFetch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		alert := priceTargetAlert("AAPL", 500, model.OpGreaterThan)
		alert.CreatedAt = created
		require.NoError(t, st.Save(ctx, alert))
	}

	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(101),
	}}
	nt := &recordingNotifier{}

	require.NoError(t, newTestDispatcher(st, fetcher, nt, created.Add(2*time.Hour)).RunCycle(ctx))
	assert.Len(t, fetcher.Calls, 1, "three alerts on one symbol share one fetch")
}

func TestChainAlertTriggersWithConditionDetails(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := model.NewAlert("u1", "NVDA", model.KindIndicatorChain)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	alert.IndicatorChain = &model.IndicatorChainPayload{
		CheckIntervalMin: 30,
		Conditions: []model.Condition{{
			Position:  1,
			Indicator: "MOVING AVERAGE",
			Line:      "MA",
			Timeframe: model.TF1Day,
			Params:    model.Params{"length": 5},
			Operator:  model.OpGreaterThan,
			ValueType: model.ValueNumber,
			Number:    10,
		}},
	}
	require.NoError(t, st.Save(ctx, alert))

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(closes...),
	}}
	nt := &recordingNotifier{}

	require.NoError(t, newTestDispatcher(st, fetcher, nt, alert.CreatedAt.Add(time.Hour)).RunCycle(ctx))
	require.Len(t, nt.sent, 1)
	require.Len(t, nt.sent[0].Conditions, 1)
	assert.True(t, nt.sent[0].Conditions[0].Met)
}

func TestEvaluationPanicIsIsolated(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	bad := priceTargetAlert("BROKEN", 100, model.OpGreaterThan)
	bad.CreatedAt = created
	good := priceTargetAlert("AAPL", 100, model.OpGreaterThan)
	good.CreatedAt = created
	require.NoError(t, st.Save(ctx, bad))
	require.NoError(t, st.Save(ctx, good))

	fetcher := &marketdata.MockFetcher{
		SeriesFn: func(symbol, _, _ string) ([]model.OHLCV, error) {
			if symbol == "BROKEN" {
				panic("corrupt provider payload")
			}
			return dailySeries(150), nil
		},
	}
	nt := &recordingNotifier{}

	// The cycle survives the panic and still processes the healthy alert.
	require.NoError(t, newTestDispatcher(st, fetcher, nt, created.Add(2*time.Hour)).RunCycle(ctx))
	require.Len(t, nt.sent, 1)
	assert.Equal(t, "AAPL", nt.sent[0].Symbol)

	got, err := st.Get(ctx, bad.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "panicking alert fails closed and stays armed")
}

func TestNotifierFailureDoesNotRearm(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	alert := priceTargetAlert("AAPL", 100, model.OpGreaterThan)
	alert.CreatedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, alert))

	fetcher := &marketdata.MockFetcher{Series: map[string][]model.OHLCV{
		"1d": dailySeries(150),
	}}
	nt := &recordingNotifier{err: errors.New("telegram down")}

	require.NoError(t, newTestDispatcher(st, fetcher, nt, alert.CreatedAt.Add(time.Hour)).RunCycle(ctx))

	got, err := st.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "claim sticks even when delivery fails")
}
