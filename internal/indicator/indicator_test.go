package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// syntheticBars builds a deterministic wavy uptrend with nonzero ranges and
// varying volume, enough for every registered indicator's default window.
func syntheticBars(n int) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		base := 100 + 0.05*float64(i) + 8*math.Sin(float64(i)/7)
		spread := 1.5 + math.Abs(math.Sin(float64(i)/3))
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   base - spread/3,
			High:   base + spread,
			Low:    base - spread,
			Close:  base + spread/4,
			Volume: 10000 + 3000*math.Sin(float64(i)/5),
		}
	}
	return bars
}

func flatBars(n, rng int) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   100,
			High:   100 + float64(rng),
			Low:    100 - float64(rng),
			Close:  100,
			Volume: 1000,
		}
	}
	return bars
}

func risingBars(n int) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := float64(i + 1)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 500}
	}
	return bars
}

// Every registered indicator must produce a finite value on all of its lines
// with default parameters, and must reject an empty series.
func TestEveryIndicatorComputesWithDefaults(t *testing.T) {
	bars := syntheticBars(600)
	for _, name := range Names() {
		def, err := Lookup(name)
		require.NoError(t, err)

		need, err := MinBars(name, nil)
		require.NoError(t, err, name)
		assert.Positive(t, need, "%s min bars", name)
		assert.LessOrEqual(t, need, len(bars), "%s needs more than the test series", name)

		for _, line := range def.Lines {
			v, err := Compute(name, bars, line, nil)
			require.NoError(t, err, "%s[%s]", name, line)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s[%s] = %v", name, line, v)
		}

		_, err = Compute(name, nil, def.Lines[0], nil)
		assert.True(t, errors.Is(err, ErrInsufficientHistory), "%s on empty series: %v", name, err)
	}
}

func TestRegistryHasFullCatalog(t *testing.T) {
	assert.GreaterOrEqual(t, len(Names()), 50)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("CRYSTAL BALL")
	assert.True(t, errors.Is(err, ErrUnknownIndicator))

	_, err = Compute("CRYSTAL BALL", syntheticBars(10), "", nil)
	assert.True(t, errors.Is(err, ErrUnknownIndicator))
}

func TestComputeLineSelection(t *testing.T) {
	bars := syntheticBars(100)

	// Single-line indicators accept an empty line name.
	_, err := Compute("RSI", bars, "", nil)
	assert.NoError(t, err)

	// Multi-line indicators do not.
	_, err = Compute("MACD", bars, "", nil)
	assert.True(t, errors.Is(err, ErrUnknownLine))

	_, err = Compute("MACD", bars, "signal line", nil)
	assert.NoError(t, err, "line names are case-insensitive")

	_, err = Compute("RSI", bars, "MACD LINE", nil)
	assert.True(t, errors.Is(err, ErrUnknownLine))
}

func TestSimpleMovingAverageKnownValue(t *testing.T) {
	v, err := Compute("MOVING AVERAGE", risingBars(60), "MA", model.Params{"length": 5})
	require.NoError(t, err)
	assert.InDelta(t, 58.0, v, 1e-9)
}

func TestEMAOfFlatSeriesIsFlat(t *testing.T) {
	v, err := Compute("EXPONENTIAL MOVING AVERAGE", flatBars(80, 2), "EMA", model.Params{"length": 20})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	v, err := Compute("RSI", risingBars(50), "RSI", model.Params{"length": 14})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestATRConstantRange(t *testing.T) {
	v, err := Compute("AVERAGE TRUE RANGE", flatBars(80, 2), "ATR", model.Params{"length": 14})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9, "true range is high-low = 4 on every bar")
}

func TestMACDFlatSeriesIsZero(t *testing.T) {
	bars := flatBars(120, 1)
	for _, line := range []string{"MACD LINE", "SIGNAL LINE", "HISTOGRAM"} {
		v, err := Compute("MACD", bars, line, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, v, 1e-9, line)
	}
}

func TestBollingerFlatSeriesCollapses(t *testing.T) {
	bars := flatBars(60, 2)
	for _, line := range []string{"UPPER BAND", "MIDDLE BAND", "LOWER BAND"} {
		v, err := Compute("BOLLINGER BANDS", bars, line, nil)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, v, 1e-9, line)
	}
}

func TestWilliamsRAtHighestClose(t *testing.T) {
	// Close equals the period high on a rising series, so %R is 0.
	v, err := Compute("WILLIAMS %R", risingBars(40), "%R", model.Params{"length": 14})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestInsufficientHistoryReportsNeed(t *testing.T) {
	_, err := Compute("MOVING AVERAGE", risingBars(10), "MA", model.Params{"length": 50})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
	assert.Contains(t, err.Error(), "needs")
}
