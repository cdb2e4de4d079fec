package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// LastClose returns the close of the most recent bar, or 0 for an empty series.
func LastClose(bars []OHLCV) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}

// Resample aggregates bars from the src timeframe into dst buckets:
// open is the first bar's open, high the max, low the min, close the last
// bar's close, volume the sum. A trailing bucket that does not span the full
// dst duration is dropped, since it would change once more bars arrive. A
// leading bucket whose early bars predate the fetched range is kept as is:
// the missing history is unavailable rather than pending, and its aggregate
// only sits deepest in the indicator window. Resampling a series to its own
// timeframe returns it unchanged.
func Resample(bars []OHLCV, src, dst Timeframe) []OHLCV {
	if src == dst || len(bars) == 0 {
		return bars
	}

	bucketDur := dst.Duration()
	srcDur := src.Duration()

	out := make([]OHLCV, 0, len(bars))
	var cur OHLCV
	var curStart time.Time
	var lastBarTime time.Time
	open := false

	flush := func() {
		if !open {
			return
		}
		// Keep the bucket only when its last bar reaches the bucket end,
		// so a cut-off trailing bucket never produces a partial aggregate.
		if lastBarTime.Add(srcDur).Before(curStart.Add(bucketDur)) {
			open = false
			return
		}
		out = append(out, cur)
		open = false
	}

	for _, b := range bars {
		start := b.Time.Truncate(bucketDur)
		if !open || !start.Equal(curStart) {
			flush()
			curStart = start
			cur = OHLCV{Time: start, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			lastBarTime = b.Time
			open = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
		lastBarTime = b.Time
	}
	flush()
	return out
}
