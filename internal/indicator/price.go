package indicator

import "github.com/Heightsdesign/stockwatch/internal/model"

func init() {
	register(Definition{
		Name:        "TYPICAL PRICE",
		DisplayName: "Typical Price",
		Lines:       []string{"TYPICAL PRICE"},
		Params:      nil,
		MinBars:     func(v Values) int { return 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			b := bars[len(bars)-1]
			return singleLine("TYPICAL PRICE", (b.High+b.Low+b.Close)/3), nil
		},
	})

	register(Definition{
		Name:        "MEDIAN PRICE",
		DisplayName: "Median Price",
		Lines:       []string{"MEDIAN PRICE"},
		Params:      nil,
		MinBars:     func(v Values) int { return 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			b := bars[len(bars)-1]
			return singleLine("MEDIAN PRICE", (b.High+b.Low)/2), nil
		},
	})

	register(Definition{
		Name:        "WEIGHTED CLOSE",
		DisplayName: "Weighted Close",
		Lines:       []string{"WEIGHTED CLOSE"},
		Params:      nil,
		MinBars:     func(v Values) int { return 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			b := bars[len(bars)-1]
			return singleLine("WEIGHTED CLOSE", (b.High+b.Low+2*b.Close)/4), nil
		},
	})

	register(Definition{
		Name:        "BALANCE OF POWER",
		DisplayName: "Balance of Power",
		Lines:       []string{"BOP"},
		Params:      nil,
		MinBars:     func(v Values) int { return 1 },
		Compute: func(bars []model.OHLCV, v Values) (map[string]float64, error) {
			b := bars[len(bars)-1]
			span := b.High - b.Low
			if span == 0 {
				return singleLine("BOP", 0), nil
			}
			return singleLine("BOP", (b.Close-b.Open)/span), nil
		},
	})
}
