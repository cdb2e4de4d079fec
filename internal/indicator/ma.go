package indicator

import (
	"math"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

func init() {
	register(Definition{
		Name:        "MOVING AVERAGE",
		DisplayName: "Moving Average",
		Lines:       []string{"MA", "SIGNAL LINE"},
		Params: []Param{
			lengthParam(20),
			{Name: "signal_length", Type: ParamInt, Required: false, Default: 9},
		},
		MinBars: func(v Values) int {
			if v.Int("signal_length") > v.Int("length") {
				return v.Int("signal_length")
			}
			return v.Int("length")
		},
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			cs := closes(bars)
			return map[string]float64{
				"MA":          last(smaSeries(cs, v.Int("length"))),
				"SIGNAL LINE": last(smaSeries(cs, v.Int("signal_length"))),
			}, nil
		},
	})

	register(Definition{
		Name:        "EXPONENTIAL MOVING AVERAGE",
		DisplayName: "Exponential Moving Average",
		Lines:       []string{"EMA"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("EMA", last(emaSeries(closes(bars), v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "WEIGHTED MOVING AVERAGE",
		DisplayName: "Weighted Moving Average",
		Lines:       []string{"WMA"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("WMA", last(wmaSeries(closes(bars), v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "SMOOTHED MOVING AVERAGE",
		DisplayName: "Smoothed Moving Average",
		Lines:       []string{"SMMA"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			return singleLine("SMMA", last(rmaSeries(closes(bars), v.Int("length")))), nil
		},
	})

	register(Definition{
		Name:        "HULL MOVING AVERAGE",
		DisplayName: "Hull Moving Average",
		Lines:       []string{"HMA"},
		Params:      []Param{lengthParam(20)},
		MinBars: func(v Values) int {
			n := v.Int("length")
			return n + int(math.Sqrt(float64(n)))
		},
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			cs := closes(bars)
			half := wmaSeries(cs, n/2)
			full := wmaSeries(cs, n)
			// raw = 2*WMA(n/2) - WMA(n), then WMA(sqrt(n)) of raw
			k := len(full)
			raw := make([]float64, k)
			offset := len(half) - k
			for i := 0; i < k; i++ {
				raw[i] = 2*half[offset+i] - full[i]
			}
			sq := int(math.Sqrt(float64(n)))
			if sq < 1 {
				sq = 1
			}
			return singleLine("HMA", last(wmaSeries(raw, sq))), nil
		},
	})

	register(Definition{
		Name:        "DOUBLE EXPONENTIAL MOVING AVERAGE",
		DisplayName: "Double Exponential Moving Average",
		Lines:       []string{"DEMA"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return 2*v.Int("length") - 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			e1 := emaSeries(closes(bars), n)
			e2 := emaSeries(e1, n)
			return singleLine("DEMA", 2*last(e1)-last(e2)), nil
		},
	})

	register(Definition{
		Name:        "TRIPLE EXPONENTIAL MOVING AVERAGE",
		DisplayName: "Triple Exponential Moving Average",
		Lines:       []string{"TEMA"},
		Params:      []Param{lengthParam(20)},
		MinBars:     func(v Values) int { return 3*v.Int("length") - 2 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			e1 := emaSeries(closes(bars), n)
			e2 := emaSeries(e1, n)
			e3 := emaSeries(e2, n)
			return singleLine("TEMA", 3*last(e1)-3*last(e2)+last(e3)), nil
		},
	})

	register(Definition{
		Name:        "LINEAR REGRESSION",
		DisplayName: "Linear Regression",
		Lines:       []string{"LINEAR REGRESSION LINE"},
		Params:      []Param{lengthParam(14)},
		MinBars:     func(v Values) int { return v.Int("length") },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			n := v.Int("length")
			cs := closes(bars)
			window := cs[len(cs)-n:]
			// Least-squares fit over x = 1..n, evaluated at the last bar.
			var sumX, sumY, sumXY, sumXX float64
			for i, y := range window {
				x := float64(i + 1)
				sumX += x
				sumY += y
				sumXY += x * y
				sumXX += x * x
			}
			fn := float64(n)
			slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
			intercept := (sumY - slope*sumX) / fn
			return singleLine("LINEAR REGRESSION LINE", intercept+slope*fn), nil
		},
	})
}
