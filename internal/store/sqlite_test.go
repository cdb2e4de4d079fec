package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAlert(symbol string) *model.Alert {
	alert := model.NewAlert("user-1", symbol, model.KindPriceTarget)
	alert.PriceTarget = &model.PriceTargetPayload{
		TargetPrice:      decimal.NewFromFloat(150.25),
		Operator:         model.OpGreaterThan,
		CheckIntervalMin: 60,
	}
	return alert
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alert := testAlert("AAPL")
	require.NoError(t, s.Save(ctx, alert))

	got, err := s.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, model.KindPriceTarget, got.Kind)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.PriceTarget)
	assert.True(t, got.PriceTarget.TargetPrice.Equal(decimal.NewFromFloat(150.25)))
	assert.Nil(t, got.IndicatorChain)
}

func TestSQLiteGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListActiveOrdersBySymbol(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msft := testAlert("MSFT")
	aapl := testAlert("AAPL")
	inactive := testAlert("TSLA")
	inactive.IsActive = false
	for _, a := range []*model.Alert{msft, aapl, inactive} {
		require.NoError(t, s.Save(ctx, a))
	}

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "AAPL", active[0].Symbol)
	assert.Equal(t, "MSFT", active[1].Symbol)
}

func TestSQLiteMarkTriggeredClaimsOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alert := testAlert("AAPL")
	require.NoError(t, s.Save(ctx, alert))

	at := time.Now().UTC().Truncate(time.Second)
	claimed, err := s.MarkTriggered(ctx, alert.ID, at)
	require.NoError(t, err)
	assert.True(t, claimed)

	again, err := s.MarkTriggered(ctx, alert.ID, at)
	require.NoError(t, err)
	assert.False(t, again, "second claim must lose")

	got, err := s.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.LastTriggeredAt)
	assert.True(t, got.LastTriggeredAt.Equal(at))
}

func TestSQLiteSetActiveRearms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alert := testAlert("AAPL")
	require.NoError(t, s.Save(ctx, alert))

	claimed, err := s.MarkTriggered(ctx, alert.ID, time.Now())
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, s.SetActive(ctx, alert.ID, true))
	got, err := s.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	assert.ErrorIs(t, s.SetActive(ctx, "nope", true), ErrNotFound)
}

func TestSQLiteSaveChainPayloadRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alert := model.NewAlert("user-2", "NVDA", model.KindIndicatorChain)
	alert.IndicatorChain = &model.IndicatorChainPayload{
		CheckIntervalMin: 30,
		Conditions: []model.Condition{{
			Position:  1,
			Indicator: "RSI",
			Line:      "RSI",
			Timeframe: model.TF1Day,
			Params:    model.Params{"length": 14},
			Operator:  model.OpLessThan,
			ValueType: model.ValueNumber,
			Number:    30,
		}},
	}
	require.NoError(t, s.Save(ctx, alert))

	got, err := s.Get(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IndicatorChain)
	require.Len(t, got.IndicatorChain.Conditions, 1)
	assert.Equal(t, "RSI", got.IndicatorChain.Conditions[0].Indicator)
	assert.Equal(t, model.TF1Day, got.IndicatorChain.Conditions[0].Timeframe)
}
