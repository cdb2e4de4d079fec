package indicator

import (
	"math"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

func init() {
	register(Definition{
		Name:        "RSI",
		DisplayName: "Relative Strength Index",
		Lines:       []string{"RSI"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("RSI", last(rsiSeries(closes(bars), v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "STOCHASTIC OSCILLATOR",
		DisplayName: "Stochastic Oscillator",
		Lines:       []string{"%K", "%D"},
		Params: []Param{
			{Name: "k_period", Type: ParamInt, Required: false, Default: 14},
			{Name: "smooth_k", Type: ParamInt, Required: false, Default: 3},
			{Name: "d_period", Type: ParamInt, Required: false, Default: 3},
		},
		MinBars: func(v Values) int {
			return v.Int("k_period") + v.Int("smooth_k") + v.Int("d_period") - 2
		},
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			fastK := stochasticSeries(bars, v.Int("k_period"))
			slowK := smaSeries(fastK, v.Int("smooth_k"))
			slowD := smaSeries(slowK, v.Int("d_period"))
			return map[string]float64{"%K": last(slowK), "%D": last(slowD)}, nil
		},
	})

	register(Definition{
		Name:        "STOCHASTIC RSI",
		DisplayName: "Stochastic RSI",
		Lines:       []string{"STOCH RSI", "%D"},
		Params: []Param{
			{Name: "rsi_length", Type: ParamInt, Required: false, Default: 14},
			lengthParam(14),
			{Name: "smooth_k", Type: ParamInt, Required: false, Default: 3},
			{Name: "d_period", Type: ParamInt, Required: false, Default: 3},
		},
		MinBars: func(v Values) int {
			return v.Int("rsi_length") + v.Int("length") + v.Int("smooth_k") + v.Int("d_period") - 1
		},
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			rsis := rsiSeries(closes(bars), v.Int("rsi_length"))
			n := v.Int("length")
			raw := make([]float64, 0, len(rsis)-n+1)
			for i := n - 1; i < len(rsis); i++ {
				window := rsis[i-n+1 : i+1]
				lo, hi := window[0], window[0]
				for _, x := range window {
					if x < lo {
						lo = x
					}
					if x > hi {
						hi = x
					}
				}
				if hi == lo {
					raw = append(raw, 0)
				} else {
					raw = append(raw, (rsis[i]-lo)/(hi-lo)*100)
				}
			}
			k := smaSeries(raw, v.Int("smooth_k"))
			d := smaSeries(k, v.Int("d_period"))
			return map[string]float64{"STOCH RSI": last(k), "%D": last(d)}, nil
		},
	})

	register(Definition{
		Name:        "COMMODITY CHANNEL INDEX",
		DisplayName: "Commodity Channel Index",
		Lines:       []string{"CCI"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			tp := typicalPrices(bars)
			window := tp[len(tp)-n:]
			mean := 0.0
			for _, x := range window {
				mean += x
			}
			mean /= float64(n)
			meanDev := 0.0
			for _, x := range window {
				meanDev += math.Abs(x - mean)
			}
			meanDev /= float64(n)
			if meanDev == 0 {
				return singleLine("CCI", 0), nil
			}
			return singleLine("CCI", (last(tp)-mean)/(0.015*meanDev)), nil
		},
	})

	register(Definition{
		Name:        "WILLIAMS %R",
		DisplayName: "Williams %R",
		Lines:       []string{"%R"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			hh := highest(highs(bars), n)
			ll := lowest(lows(bars), n)
			if hh == ll {
				return singleLine("%R", 0), nil
			}
			c := bars[len(bars)-1].Close
			return singleLine("%R", (hh-c)/(hh-ll)*-100), nil
		},
	})

	register(Definition{
		Name:        "ULTIMATE OSCILLATOR",
		DisplayName: "Ultimate Oscillator",
		Lines:       []string{"ULTIMATE OSCILLATOR"},
		Params: []Param{
			{Name: "fast_period", Type: ParamInt, Required: false, Default: 7},
			{Name: "medium_period", Type: ParamInt, Required: false, Default: 14},
			{Name: "slow_period", Type: ParamInt, Required: false, Default: 28},
		},
		MinBars: func(v Values) int { return v.Int("slow_period") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			bp := make([]float64, 0, len(bars)-1)
			tr := make([]float64, 0, len(bars)-1)
			for i := 1; i < len(bars); i++ {
				prevClose := bars[i-1].Close
				low := math.Min(bars[i].Low, prevClose)
				high := math.Max(bars[i].High, prevClose)
				bp = append(bp, bars[i].Close-low)
				tr = append(tr, high-low)
			}
			avg := func(period int) float64 {
				sumBP, sumTR := 0.0, 0.0
				for i := len(bp) - period; i < len(bp); i++ {
					sumBP += bp[i]
					sumTR += tr[i]
				}
				if sumTR == 0 {
					return 0
				}
				return sumBP / sumTR
			}
			a1 := avg(v.Int("fast_period"))
			a2 := avg(v.Int("medium_period"))
			a3 := avg(v.Int("slow_period"))
			return singleLine("ULTIMATE OSCILLATOR", 100*(4*a1+2*a2+a3)/7), nil
		},
	})

	register(Definition{
		Name:        "MONEY FLOW INDEX",
		DisplayName: "Money Flow Index",
		Lines:       []string{"MFI"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			tp := typicalPrices(bars)
			pos, neg := 0.0, 0.0
			for i := len(tp) - n; i < len(tp); i++ {
				flow := tp[i] * bars[i].Volume
				if tp[i] > tp[i-1] {
					pos += flow
				} else if tp[i] < tp[i-1] {
					neg += flow
				}
			}
			if neg == 0 {
				return singleLine("MFI", 100), nil
			}
			return singleLine("MFI", 100-100/(1+pos/neg)), nil
		},
	})

	register(Definition{
		Name:        "CHANDE MOMENTUM OSCILLATOR",
		DisplayName: "Chande Momentum Oscillator",
		Lines:       []string{"CMO"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			ds := diffs(closes(bars))
			up, down := 0.0, 0.0
			for i := len(ds) - n; i < len(ds); i++ {
				if ds[i] > 0 {
					up += ds[i]
				} else {
					down -= ds[i]
				}
			}
			if up+down == 0 {
				return singleLine("CMO", 0), nil
			}
			return singleLine("CMO", 100*(up-down)/(up+down)), nil
		},
	})

	register(Definition{
		Name:        "RATE OF CHANGE",
		DisplayName: "Rate of Change",
		Lines:       []string{"ROC"},
		Params:      []Param{lengthParam(10)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			cs := closes(bars)
			prev := cs[len(cs)-1-n]
			if prev == 0 {
				return singleLine("ROC", 0), nil
			}
			return singleLine("ROC", (last(cs)-prev)/prev*100), nil
		},
	})

	register(Definition{
		Name:        "MOMENTUM",
		DisplayName: "Momentum",
		Lines:       []string{"MOMENTUM"},
		Params:      []Param{lengthParam(10)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			cs := closes(bars)
			return singleLine("MOMENTUM", last(cs)-cs[len(cs)-1-n]), nil
		},
	})

	register(Definition{
		Name:        "TRIX",
		DisplayName: "TRIX",
		Lines:       []string{"TRIX"},
		Params:      []Param{lengthParam(15)},
		MinBars:     func(v Values) int { return 3*v.Int("length") - 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			e1 := emaSeries(closes(bars), n)
			e2 := emaSeries(e1, n)
			e3 := emaSeries(e2, n)
			if len(e3) < 2 {
				return nil, errShortInternal("TRIX")
			}
			prev := e3[len(e3)-2]
			if prev == 0 {
				return singleLine("TRIX", 0), nil
			}
			return singleLine("TRIX", (last(e3)-prev)/prev*100), nil
		},
	})

	register(Definition{
		Name:        "AWESOME OSCILLATOR",
		DisplayName: "Awesome Oscillator",
		Lines:       []string{"AO"},
		Params: []Param{
			{Name: "fast_period", Type: ParamInt, Required: false, Default: 5},
			{Name: "slow_period", Type: ParamInt, Required: false, Default: 34},
		},
		MinBars: func(v Values) int { return v.Int("slow_period") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			median := make([]float64, len(bars))
			for i, b := range bars {
				median[i] = (b.High + b.Low) / 2
			}
			fast := last(smaSeries(median, v.Int("fast_period")))
			slow := last(smaSeries(median, v.Int("slow_period")))
			return singleLine("AO", fast-slow), nil
		},
	})

	register(Definition{
		Name:        "DETRENDED PRICE OSCILLATOR",
		DisplayName: "Detrended Price Oscillator",
		Lines:       []string{"DPO"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") + v.Int("length")/2 + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			cs := closes(bars)
			shift := n/2 + 1
			// price shifted back against the centered SMA
			sma := smaSeries(cs[:len(cs)-shift], n)
			return singleLine("DPO", last(cs)-last(sma)), nil
		},
	})
}

// stochasticSeries returns raw %K values; result length is len(bars)-period+1.
func stochasticSeries(bars []model.OHLCV, period int) []float64 {
	hs, ls, cs := highs(bars), lows(bars), closes(bars)
	out := make([]float64, 0, len(bars)-period+1)
	for i := period - 1; i < len(bars); i++ {
		hh, ll := hs[i], ls[i]
		for j := i - period + 1; j < i; j++ {
			if hs[j] > hh {
				hh = hs[j]
			}
			if ls[j] < ll {
				ll = ls[j]
			}
		}
		if hh == ll {
			out = append(out, 0)
		} else {
			out = append(out, (cs[i]-ll)/(hh-ll)*100)
		}
	}
	return out
}
