package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(start time.Time, closes ...float64) []OHLCV {
	bars := make([]OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = OHLCV{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c - 1,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
			Volume: 10,
		}
	}
	return bars
}

func TestResampleAggregation(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := hourly(start, 10, 12, 8, 11, 20, 21, 22, 23)

	out := Resample(bars, TF1Hour, TF4Hour)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, start, first.Time)
	assert.Equal(t, 9.0, first.Open, "open of first source bar")
	assert.Equal(t, 14.0, first.High, "max high across the bucket")
	assert.Equal(t, 6.0, first.Low, "min low across the bucket")
	assert.Equal(t, 11.0, first.Close, "close of last source bar")
	assert.Equal(t, 40.0, first.Volume, "summed volume")
}

func TestResampleDropsIncompleteTrailingBucket(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	// Six hourly bars: one full 4H bucket plus two bars of the next.
	bars := hourly(start, 10, 12, 8, 11, 20, 21)

	out := Resample(bars, TF1Hour, TF4Hour)
	require.Len(t, out, 1)
	assert.Equal(t, 11.0, out[0].Close)
}

func TestResampleKeepsPartialLeadingBucket(t *testing.T) {
	// Series starts two hours into the first 4H bucket. The bucket still
	// closes on time, so it is kept, with the open taken from the first
	// available bar.
	start := time.Date(2026, 1, 5, 2, 0, 0, 0, time.UTC)
	bars := hourly(start, 10, 12, 20, 21, 22, 23)

	out := Resample(bars, TF1Hour, TF4Hour)
	require.Len(t, out, 2)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), out[0].Time)
	assert.Equal(t, 9.0, out[0].Open, "open comes from the first bar the range has")
	assert.Equal(t, 12.0, out[0].Close)
}

func TestResampleSameTimeframeIsIdentity(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := []OHLCV{
		{Time: start, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Time: start.AddDate(0, 0, 1), Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 200},
	}
	assert.Equal(t, bars, Resample(bars, TF1Day, TF1Day))
}

func TestLastClose(t *testing.T) {
	assert.Equal(t, 0.0, LastClose(nil))
	bars := hourly(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 10, 20, 30)
	assert.Equal(t, 30.0, LastClose(bars))
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe(" 1h ")
	require.NoError(t, err)
	assert.Equal(t, TF1Hour, tf)

	_, err = ParseTimeframe("2H")
	assert.Error(t, err)
}

func TestTimeframeTables(t *testing.T) {
	cases := []struct {
		tf       Timeframe
		barsDay  int
		interval string
		fetchTF  Timeframe
	}{
		{TF1Min, 390, "1m", TF1Min},
		{TF5Min, 78, "5m", TF5Min},
		{TF15Min, 26, "15m", TF15Min},
		{TF30Min, 13, "30m", TF30Min},
		{TF1Hour, 7, "1h", TF1Hour},
		{TF4Hour, 2, "1h", TF1Hour},
		{TF1Day, 1, "1d", TF1Day},
	}
	for _, c := range cases {
		assert.Equal(t, c.barsDay, c.tf.BarsPerDay(), "%s bars per day", c.tf)
		assert.Equal(t, c.interval, c.tf.FetchInterval(), "%s fetch interval", c.tf)
		assert.Equal(t, c.fetchTF, c.tf.FetchTimeframe(), "%s fetch timeframe", c.tf)
	}
}
