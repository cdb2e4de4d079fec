package indicator

import "github.com/Heightsdesign/stockwatch/internal/model"

func init() {
	register(Definition{
		Name:        "BOLLINGER BANDS",
		DisplayName: "Bollinger Bands",
		Lines:       []string{"UPPER BAND", "MIDDLE BAND", "LOWER BAND"},
		Params: []Param{
			lengthParam(20),
			{Name: "std", Type: ParamFloat, Required: false, Default: 2.0},
		},
		MinBars: func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			cs := closes(bars)
			mid := last(smaSeries(cs, n))
			band := v.Float("std") * stdev(cs, n)
			return map[string]float64{
				"UPPER BAND":  mid + band,
				"MIDDLE BAND": mid,
				"LOWER BAND":  mid - band,
			}, nil
		},
	})

	register(Definition{
		Name:        "KELTNER CHANNELS",
		DisplayName: "Keltner Channels",
		Lines:       []string{"UPPER BAND", "MIDDLE BAND", "LOWER BAND"},
		Params: []Param{
			lengthParam(20),
			{Name: "multiplier", Type: ParamFloat, Required: false, Default: 2.0},
			{Name: "atr_length", Type: ParamInt, Required: false, Default: 10},
		},
		MinBars: func(v Values) int {
			if a := v.Int("atr_length") + 1; a > v.Int("length") {
				return a
			}
			return v.Int("length")
		},
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			mid := last(emaSeries(closes(bars), v.Int("length")))
			span := v.Float("multiplier") * last(rmaSeries(trueRanges(bars), v.Int("atr_length")))
			return map[string]float64{
				"UPPER BAND":  mid + span,
				"MIDDLE BAND": mid,
				"LOWER BAND":  mid - span,
			}, nil
		},
	})

	register(Definition{
		Name:        "DONCHIAN CHANNELS",
		DisplayName: "Donchian Channels",
		Lines:       []string{"UPPER BAND", "MIDDLE BAND", "LOWER BAND"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			hh := highest(highs(bars), n)
			ll := lowest(lows(bars), n)
			return map[string]float64{
				"UPPER BAND":  hh,
				"MIDDLE BAND": (hh + ll) / 2,
				"LOWER BAND":  ll,
			}, nil
		},
	})

	register(Definition{
		Name:        "AVERAGE TRUE RANGE",
		DisplayName: "Average True Range",
		Lines:       []string{"ATR"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("ATR", last(rmaSeries(trueRanges(bars), v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "NORMALIZED AVERAGE TRUE RANGE",
		DisplayName: "Normalized Average True Range",
		Lines:       []string{"NATR"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") + 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			c := bars[len(bars)-1].Close
			if c == 0 {
				return singleLine("NATR", 0), nil
			}
			atr := last(rmaSeries(trueRanges(bars), v.Int("length")))
			return singleLine("NATR", 100*atr/c), nil
		},
	})

	register(Definition{
		Name:        "STANDARD DEVIATION",
		DisplayName: "Standard Deviation",
		Lines:       []string{"STDEV"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("STDEV", stdev(closes(bars), v.Int("length"))), nil
		},
	})
}
