package indicator

import "github.com/Heightsdesign/stockwatch/internal/model"

// oscillatorPair computes a fast/slow EMA oscillator with a signal EMA on top,
// the shared shape of MACD, PPO and PVO. When percent is true the main line is
// expressed as a percentage of the slow EMA.
func oscillatorPair(xs []float64, fast, slow, signal int, percent bool) (main, sig, hist float64, err error) {
	fastS := emaSeries(xs, fast)
	slowS := emaSeries(xs, slow)
	k := len(slowS)
	offset := len(fastS) - k
	mainS := make([]float64, k)
	for i := 0; i < k; i++ {
		mainS[i] = fastS[offset+i] - slowS[i]
		if percent {
			if slowS[i] == 0 {
				mainS[i] = 0
			} else {
				mainS[i] = mainS[i] / slowS[i] * 100
			}
		}
	}
	if len(mainS) < signal {
		return 0, 0, 0, errShortInternal("oscillator pair")
	}
	main = last(mainS)
	sig = last(emaSeries(mainS, signal))
	return main, sig, main - sig, nil
}

func pairParams() []Param {
	return []Param{
		{Name: "fast_period", Type: ParamInt, Required: false, Default: 12},
		{Name: "slow_period", Type: ParamInt, Required: false, Default: 26},
		{Name: "signal_period", Type: ParamInt, Required: false, Default: 9},
	}
}

func pairMinBars(v Values) int {
	return v.Int("slow_period") + v.Int("signal_period")
}

func init() {
	register(Definition{
		Name:        "MACD",
		DisplayName: "Moving Average Convergence Divergence",
		Lines:       []string{"MACD LINE", "SIGNAL LINE", "HISTOGRAM"},
		Params:      pairParams(),
		MinBars:     pairMinBars,
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			main, sig, hist, err := oscillatorPair(closes(bars), v.Int("fast_period"), v.Int("slow_period"), v.Int("signal_period"), false)
			if err != nil {
				return nil, err
			}
			return map[string]float64{"MACD LINE": main, "SIGNAL LINE": sig, "HISTOGRAM": hist}, nil
		},
	})

	register(Definition{
		Name:        "PERCENTAGE PRICE OSCILLATOR",
		DisplayName: "Percentage Price Oscillator",
		Lines:       []string{"PPO LINE", "SIGNAL LINE", "HISTOGRAM"},
		Params:      pairParams(),
		MinBars:     pairMinBars,
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			main, sig, hist, err := oscillatorPair(closes(bars), v.Int("fast_period"), v.Int("slow_period"), v.Int("signal_period"), true)
			if err != nil {
				return nil, err
			}
			return map[string]float64{"PPO LINE": main, "SIGNAL LINE": sig, "HISTOGRAM": hist}, nil
		},
	})

	register(Definition{
		Name:        "PERCENTAGE VOLUME OSCILLATOR",
		DisplayName: "Percentage Volume Oscillator",
		Lines:       []string{"PVO LINE", "SIGNAL LINE", "HISTOGRAM"},
		Params:      pairParams(),
		MinBars:     pairMinBars,
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			main, sig, hist, err := oscillatorPair(volumes(bars), v.Int("fast_period"), v.Int("slow_period"), v.Int("signal_period"), true)
			if err != nil {
				return nil, err
			}
			return map[string]float64{"PVO LINE": main, "SIGNAL LINE": sig, "HISTOGRAM": hist}, nil
		},
	})
}
