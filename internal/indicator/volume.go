package indicator

import "github.com/Heightsdesign/stockwatch/internal/model"

func init() {
	register(Definition{
		Name:        "ON-BALANCE VOLUME",
		DisplayName: "On-Balance Volume",
		Lines:       []string{"OBV"},
		Params:      nil,
		MinBars:     func(v Values) int { return 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			obv := 0.0
			for i := 1; i < len(bars); i++ {
				switch {
				case bars[i].Close > bars[i-1].Close:
					obv += bars[i].Volume
				case bars[i].Close < bars[i-1].Close:
					obv -= bars[i].Volume
				}
			}
			return singleLine("OBV", obv), nil
		},
	})

	register(Definition{
		Name:        "CHAIKIN MONEY FLOW",
		DisplayName: "Chaikin Money Flow",
		Lines:       []string{"CMF"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			var mfvSum, volSum float64
			for i := len(bars) - n; i < len(bars); i++ {
				mfvSum += moneyFlowVolume(bars[i])
				volSum += bars[i].Volume
			}
			if volSum == 0 {
				return singleLine("CMF", 0), nil
			}
			return singleLine("CMF", mfvSum/volSum), nil
		},
	})

	register(Definition{
		Name:        "VOLUME WEIGHTED AVERAGE PRICE",
		DisplayName: "Volume Weighted Average Price",
		Lines:       []string{"VWAP"},
		Params:      nil,
		MinBars:     func(v Values) int { return 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			var pvSum, volSum float64
			for _, b := range bars {
				tp := (b.High + b.Low + b.Close) / 3
				pvSum += tp * b.Volume
				volSum += b.Volume
			}
			if volSum == 0 {
				return singleLine("VWAP", 0), nil
			}
			return singleLine("VWAP", pvSum/volSum), nil
		},
	})

	register(Definition{
		Name:        "ACCUMULATION/DISTRIBUTION",
		DisplayName: "Accumulation/Distribution Line",
		Lines:       []string{"A/D LINE"},
		Params:      nil,
		MinBars:     func(v Values) int { return 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("A/D LINE", last(adLine(bars))), nil
		},
	})

	register(Definition{
		Name:        "CHAIKIN OSCILLATOR",
		DisplayName: "Chaikin Oscillator",
		Lines:       []string{"CHAIKIN OSCILLATOR"},
		Params: []Param{
			{Name: "fast_period", Type: ParamInt, Required: false, Default: 3},
			{Name: "slow_period", Type: ParamInt, Required: false, Default: 10},
		},
		MinBars: func(v Values) int { return v.Int("slow_period") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			ad := adLine(bars)
			fast := last(emaSeries(ad, v.Int("fast_period")))
			slow := last(emaSeries(ad, v.Int("slow_period")))
			return singleLine("CHAIKIN OSCILLATOR", fast-slow), nil
		},
	})

	register(Definition{
		Name:        "KLINGER OSCILLATOR",
		DisplayName: "Klinger Oscillator",
		Lines:       []string{"KVO", "SIGNAL LINE"},
		Params: []Param{
			{Name: "fast_period", Type: ParamInt, Required: false, Default: 34},
			{Name: "slow_period", Type: ParamInt, Required: false, Default: 55},
			{Name: "signal_period", Type: ParamInt, Required: false, Default: 13},
		},
		MinBars: func(v Values) int { return v.Int("slow_period") + v.Int("signal_period") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			// signed volume by trend of the typical price
			sv := make([]float64, 0, len(bars)-1)
			tp := typicalPrices(bars)
			for i := 1; i < len(bars); i++ {
				if tp[i] > tp[i-1] {
					sv = append(sv, bars[i].Volume)
				} else {
					sv = append(sv, -bars[i].Volume)
				}
			}
			fast := emaSeries(sv, v.Int("fast_period"))
			slow := emaSeries(sv, v.Int("slow_period"))
			k := len(slow)
			kvo := make([]float64, k)
			offset := len(fast) - k
			for i := 0; i < k; i++ {
				kvo[i] = fast[offset+i] - slow[i]
			}
			if len(kvo) < v.Int("signal_period") {
				return nil, errShortInternal("KLINGER OSCILLATOR")
			}
			return map[string]float64{
				"KVO":         last(kvo),
				"SIGNAL LINE": last(emaSeries(kvo, v.Int("signal_period"))),
			}, nil
		},
	})

	register(Definition{
		Name:        "EASE OF MOVEMENT",
		DisplayName: "Ease of Movement",
		Lines:       []string{"EOM"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			emv := make([]float64, 0, len(bars)-1)
			for i := 1; i < len(bars); i++ {
				mid := (bars[i].High+bars[i].Low)/2 - (bars[i-1].High+bars[i-1].Low)/2
				span := bars[i].High - bars[i].Low
				if bars[i].Volume == 0 || span == 0 {
					emv = append(emv, 0)
					continue
				}
				box := bars[i].Volume / 100000000 / span
				emv = append(emv, mid/box)
			}
			return singleLine("EOM", last(smaSeries(emv, v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "FORCE INDEX",
		DisplayName: "Force Index",
		Lines:       []string{"FORCE INDEX"},
		Params:      []Param{lengthParam(13)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			force := make([]float64, 0, len(bars)-1)
			for i := 1; i < len(bars); i++ {
				force = append(force, (bars[i].Close-bars[i-1].Close)*bars[i].Volume)
			}
			return singleLine("FORCE INDEX", last(emaSeries(force, v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "PRICE VOLUME TREND",
		DisplayName: "Price Volume Trend",
		Lines:       []string{"PVT"},
		Params:      nil,
		MinBars:     func(v Values) int { return 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			pvt := 0.0
			for i := 1; i < len(bars); i++ {
				if bars[i-1].Close == 0 {
					continue
				}
				pvt += (bars[i].Close - bars[i-1].Close) / bars[i-1].Close * bars[i].Volume
			}
			return singleLine("PVT", pvt), nil
		},
	})

	register(Definition{
		Name:        "NEGATIVE VOLUME INDEX",
		DisplayName: "Negative Volume Index",
		Lines:       []string{"NVI"},
		Params:      nil,
		MinBars:     func(v Values) int { return 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			nvi := 1000.0
			for i := 1; i < len(bars); i++ {
				if bars[i].Volume < bars[i-1].Volume && bars[i-1].Close != 0 {
					nvi += nvi * (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
				}
			}
			return singleLine("NVI", nvi), nil
		},
	})

	register(Definition{
		Name:        "POSITIVE VOLUME INDEX",
		DisplayName: "Positive Volume Index",
		Lines:       []string{"PVI"},
		Params:      nil,
		MinBars:     func(v Values) int { return 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			pvi := 1000.0
			for i := 1; i < len(bars); i++ {
				if bars[i].Volume > bars[i-1].Volume && bars[i-1].Close != 0 {
					pvi += pvi * (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
				}
			}
			return singleLine("PVI", pvi), nil
		},
	})
}

// moneyFlowVolume is the CMF/AD building block for one bar.
func moneyFlowVolume(b model.OHLCV) float64 {
	span := b.High - b.Low
	if span == 0 {
		return 0
	}
	mult := ((b.Close - b.Low) - (b.High - b.Close)) / span
	return mult * b.Volume
}

// adLine returns the cumulative accumulation/distribution series.
func adLine(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	sum := 0.0
	for i, b := range bars {
		sum += moneyFlowVolume(b)
		out[i] = sum
	}
	return out
}
