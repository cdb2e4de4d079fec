package indicator

import (
	"math"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

func init() {
	register(Definition{
		Name:        "AVERAGE DIRECTIONAL INDEX",
		DisplayName: "Average Directional Index",
		Lines:       []string{"ADX", "+DI", "-DI"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return 2*v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			plusDM := make([]float64, 0, len(bars)-1)
			minusDM := make([]float64, 0, len(bars)-1)
			for i := 1; i < len(bars); i++ {
				up := bars[i].High - bars[i-1].High
				down := bars[i-1].Low - bars[i].Low
				p, m := 0.0, 0.0
				if up > down && up > 0 {
					p = up
				}
				if down > up && down > 0 {
					m = down
				}
				plusDM = append(plusDM, p)
				minusDM = append(minusDM, m)
			}
			atr := rmaSeries(trueRanges(bars), n)
			plus := rmaSeries(plusDM, n)
			minus := rmaSeries(minusDM, n)

			dx := make([]float64, len(atr))
			plusDI := make([]float64, len(atr))
			minusDI := make([]float64, len(atr))
			for i := range atr {
				if atr[i] == 0 {
					continue
				}
				plusDI[i] = 100 * plus[i] / atr[i]
				minusDI[i] = 100 * minus[i] / atr[i]
				if sum := plusDI[i] + minusDI[i]; sum != 0 {
					dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
				}
			}
			if len(dx) < n {
				return nil, errShortInternal("ADX")
			}
			return map[string]float64{
				"ADX": last(rmaSeries(dx, n)),
				"+DI": last(plusDI),
				"-DI": last(minusDI),
			}, nil
		},
	})

	register(Definition{
		Name:        "AROON INDICATOR",
		DisplayName: "Aroon Indicator",
		Lines:       []string{"AROON UP", "AROON DOWN", "AROON OSCILLATOR"},
		Params:      []Param{lengthParam(25)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			up := 100 * float64(n-barsSinceHighest(highs(bars), n+1)) / float64(n)
			down := 100 * float64(n-barsSinceLowest(lows(bars), n+1)) / float64(n)
			return map[string]float64{
				"AROON UP":         up,
				"AROON DOWN":       down,
				"AROON OSCILLATOR": up - down,
			}, nil
		},
	})

	register(Definition{
		Name:        "PARABOLIC SAR",
		DisplayName: "Parabolic SAR",
		Lines:       []string{"SAR"},
		Params: []Param{
			{Name: "step", Type: ParamFloat, Required: false, Default: 0.02},
			{Name: "max_step", Type: ParamFloat, Required: false, Default: 0.2},
		},
		MinBars: func(v Values) int { return 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			step := v.Float("step")
			maxStep := v.Float("max_step")

			rising := bars[1].Close >= bars[0].Close
			sar := bars[0].Low
			ep := bars[0].High
			if !rising {
				sar = bars[0].High
				ep = bars[0].Low
			}
			af := step

			for i := 1; i < len(bars); i++ {
				sar = sar + af*(ep-sar)
				if rising {
					if bars[i].Low < sar {
						rising = false
						sar = ep
						ep = bars[i].Low
						af = step
						continue
					}
					if bars[i].High > ep {
						ep = bars[i].High
						af = math.Min(af+step, maxStep)
					}
					continue
				}
				if bars[i].High > sar {
					rising = true
					sar = ep
					ep = bars[i].High
					af = step
					continue
				}
				if bars[i].Low < ep {
					ep = bars[i].Low
					af = math.Min(af+step, maxStep)
				}
			}
			return singleLine("SAR", sar), nil
		},
	})

	register(Definition{
		Name:        "SUPERTREND",
		DisplayName: "SuperTrend",
		Lines:       []string{"SUPERTREND"},
		Params: []Param{
			lengthParam(10),
			{Name: "multiplier", Type: ParamFloat, Required: false, Default: 3.0},
		},
		MinBars: func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			mult := v.Float("multiplier")
			atr := rmaSeries(trueRanges(bars), n)
			// atr[i] corresponds to bars[i+n]
			offset := n

			upper := make([]float64, len(atr))
			lower := make([]float64, len(atr))
			for i := range atr {
				b := bars[offset+i]
				mid := (b.High + b.Low) / 2
				upper[i] = mid + mult*atr[i]
				lower[i] = mid - mult*atr[i]
			}

			// band carry-over and trend flips
			st := make([]float64, len(atr))
			up := true
			for i := range atr {
				if i == 0 {
					st[i] = lower[i]
					continue
				}
				prevClose := bars[offset+i-1].Close
				if lower[i] < lower[i-1] && prevClose >= lower[i-1] {
					lower[i] = lower[i-1]
				}
				if upper[i] > upper[i-1] && prevClose <= upper[i-1] {
					upper[i] = upper[i-1]
				}
				close := bars[offset+i].Close
				if up && close < lower[i] {
					up = false
				} else if !up && close > upper[i] {
					up = true
				}
				if up {
					st[i] = lower[i]
				} else {
					st[i] = upper[i]
				}
			}
			return singleLine("SUPERTREND", last(st)), nil
		},
	})

	register(Definition{
		Name:        "VORTEX INDICATOR",
		DisplayName: "Vortex Indicator",
		Lines:       []string{"VI+", "VI-"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			var vmPlus, vmMinus, trSum float64
			for i := len(bars) - n; i < len(bars); i++ {
				vmPlus += math.Abs(bars[i].High - bars[i-1].Low)
				vmMinus += math.Abs(bars[i].Low - bars[i-1].High)
				trSum += trueRange(bars[i], bars[i-1].Close)
			}
			if trSum == 0 {
				return map[string]float64{"VI+": 0, "VI-": 0}, nil
			}
			return map[string]float64{"VI+": vmPlus / trSum, "VI-": vmMinus / trSum}, nil
		},
	})

	register(Definition{
		Name:        "ICHIMOKU CLOUD",
		DisplayName: "Ichimoku Cloud",
		Lines:       []string{"TENKAN-SEN", "KIJUN-SEN", "SENKOU SPAN A", "SENKOU SPAN B", "CHIKOU SPAN"},
		Params: []Param{
			{Name: "tenkan_period", Type: ParamInt, Required: false, Default: 9},
			{Name: "kijun_period", Type: ParamInt, Required: false, Default: 26},
			{Name: "senkou_period", Type: ParamInt, Required: false, Default: 52},
		},
		MinBars: func(v Values) int { return v.Int("senkou_period") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			hs, ls := highs(bars), lows(bars)
			mid := func(period int) float64 {
				return (highest(hs, period) + lowest(ls, period)) / 2
			}
			tenkan := mid(v.Int("tenkan_period"))
			kijun := mid(v.Int("kijun_period"))
			return map[string]float64{
				"TENKAN-SEN":    tenkan,
				"KIJUN-SEN":     kijun,
				"SENKOU SPAN A": (tenkan + kijun) / 2,
				"SENKOU SPAN B": mid(v.Int("senkou_period")),
				"CHIKOU SPAN":   bars[len(bars)-1].Close,
			}, nil
		},
	})

	register(Definition{
		Name:        "PIVOT POINTS",
		DisplayName: "Pivot Points",
		Lines:       []string{"PIVOT", "SUPPORT1", "SUPPORT2", "RESISTANCE1", "RESISTANCE2"},
		Params:      nil,
		MinBars:     func(v Values) int { return 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			// classic pivots from the previous completed bar
			prev := bars[len(bars)-2]
			p := (prev.High + prev.Low + prev.Close) / 3
			return map[string]float64{
				"PIVOT":       p,
				"SUPPORT1":    2*p - prev.High,
				"SUPPORT2":    p - (prev.High - prev.Low),
				"RESISTANCE1": 2*p - prev.Low,
				"RESISTANCE2": p + (prev.High - prev.Low),
			}, nil
		},
	})

	register(Definition{
		Name:        "ELDER-RAY INDEX",
		DisplayName: "Elder-Ray Index",
		Lines:       []string{"BULL POWER", "BEAR POWER"},
		Params:      []Param{lengthParam(13)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			ema := last(emaSeries(closes(bars), v.Int("length")))
			lastBar := bars[len(bars)-1]
			return map[string]float64{
				"BULL POWER": lastBar.High - ema,
				"BEAR POWER": lastBar.Low - ema,
			}, nil
		},
	})
}
