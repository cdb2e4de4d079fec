// Package marketdata talks to the external time-series data provider.
package marketdata

import (
	"context"
	"errors"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// ErrNoData means the provider answered but returned an empty series. Callers
// must treat this as "temporarily unavailable", never as a zero price.
var ErrNoData = errors.New("no market data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// Fetch returns bars for the symbol covering the given period at the
	// given interval, ordered by timestamp ascending.
	Fetch(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	// Series is keyed by interval; SeriesFn, when set, wins.
	Series   map[string][]model.OHLCV
	SeriesFn func(symbol, period, interval string) ([]model.OHLCV, error)
	Err      error

	// Calls records every request for fetch-count assertions.
	Calls []MockCall
}

// MockCall is one recorded Fetch invocation.
type MockCall struct {
	Symbol   string
	Period   string
	Interval string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol, period, interval string) ([]model.OHLCV, error) {
	m.Calls = append(m.Calls, MockCall{Symbol: symbol, Period: period, Interval: interval})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.SeriesFn != nil {
		return m.SeriesFn(symbol, period, interval)
	}
	bars, ok := m.Series[interval]
	if !ok || len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}
