package indicator

import (
	"fmt"
	"math"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// errShortInternal guards derived windows that MinBars should already cover.
func errShortInternal(name string) error {
	return fmt.Errorf("%w: derived window for %s", ErrInsufficientHistory, name)
}

// Series extraction.

func closes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func highs(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func lows(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func volumes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

func typicalPrices(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = (b.High + b.Low + b.Close) / 3
	}
	return out
}

func last(xs []float64) float64 {
	return xs[len(xs)-1]
}

// Rolling-window math. Series helpers return only the valid region: the
// result at index i corresponds to the source window ending at i+period-1.

// smaSeries computes simple moving averages; result length is
// len(xs)-period+1.
func smaSeries(xs []float64, period int) []float64 {
	out := make([]float64, 0, len(xs)-period+1)
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= period {
			sum -= xs[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// emaSeries computes exponential moving averages seeded with the SMA of the
// first period values; result length is len(xs)-period+1.
func emaSeries(xs []float64, period int) []float64 {
	out := make([]float64, 0, len(xs)-period+1)
	alpha := 2.0 / (float64(period) + 1.0)
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += xs[i]
	}
	ema := seed / float64(period)
	out = append(out, ema)
	for i := period; i < len(xs); i++ {
		ema = alpha*xs[i] + (1-alpha)*ema
		out = append(out, ema)
	}
	return out
}

// rmaSeries computes Wilder-smoothed moving averages (alpha = 1/period),
// seeded with the SMA of the first period values.
func rmaSeries(xs []float64, period int) []float64 {
	out := make([]float64, 0, len(xs)-period+1)
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += xs[i]
	}
	rma := seed / float64(period)
	out = append(out, rma)
	p := float64(period)
	for i := period; i < len(xs); i++ {
		rma = (rma*(p-1) + xs[i]) / p
		out = append(out, rma)
	}
	return out
}

// wmaSeries computes linearly weighted moving averages; the most recent value
// carries weight period.
func wmaSeries(xs []float64, period int) []float64 {
	out := make([]float64, 0, len(xs)-period+1)
	denom := float64(period*(period+1)) / 2
	for i := period - 1; i < len(xs); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += xs[i-period+1+j] * float64(j+1)
		}
		out = append(out, sum/denom)
	}
	return out
}

// stdev returns the population standard deviation of the trailing window.
func stdev(xs []float64, period int) float64 {
	window := xs[len(xs)-period:]
	mean := 0.0
	for _, x := range window {
		mean += x
	}
	mean /= float64(period)
	variance := 0.0
	for _, x := range window {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(period))
}

func highest(xs []float64, period int) float64 {
	window := xs[len(xs)-period:]
	h := window[0]
	for _, x := range window[1:] {
		if x > h {
			h = x
		}
	}
	return h
}

func lowest(xs []float64, period int) float64 {
	window := xs[len(xs)-period:]
	l := window[0]
	for _, x := range window[1:] {
		if x < l {
			l = x
		}
	}
	return l
}

// barsSinceHighest returns how many bars ago the trailing-window maximum
// occurred (0 = current bar). Ties resolve to the most recent occurrence.
func barsSinceHighest(xs []float64, period int) int {
	window := xs[len(xs)-period:]
	idx := 0
	for i, x := range window {
		if x >= window[idx] {
			idx = i
		}
	}
	return period - 1 - idx
}

func barsSinceLowest(xs []float64, period int) int {
	window := xs[len(xs)-period:]
	idx := 0
	for i, x := range window {
		if x <= window[idx] {
			idx = i
		}
	}
	return period - 1 - idx
}

// trueRanges returns the true range per bar, starting from the second bar.
func trueRanges(bars []model.OHLCV) []float64 {
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		out = append(out, trueRange(bars[i], bars[i-1].Close))
	}
	return out
}

func trueRange(b model.OHLCV, prevClose float64) float64 {
	tr := b.High - b.Low
	if hc := math.Abs(b.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(b.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}

// diffs returns xs[i]-xs[i-1] for each consecutive pair.
func diffs(xs []float64) []float64 {
	out := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out = append(out, xs[i]-xs[i-1])
	}
	return out
}

// rsiSeries computes Wilder RSI values; result length is len(xs)-period.
func rsiSeries(xs []float64, period int) []float64 {
	gains := make([]float64, 0, len(xs)-1)
	losses := make([]float64, 0, len(xs)-1)
	for _, d := range diffs(xs) {
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}
	avgGains := rmaSeries(gains, period)
	avgLosses := rmaSeries(losses, period)
	out := make([]float64, len(avgGains))
	for i := range avgGains {
		if avgLosses[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGains[i] / avgLosses[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// lengthParam is the ubiquitous single length parameter.
func lengthParam(def int) Param {
	return Param{Name: "length", Type: ParamInt, Required: false, Default: def}
}

func singleLine(name string, value float64) map[string]float64 {
	return map[string]float64{name: value}
}
