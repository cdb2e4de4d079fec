package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heightsdesign/stockwatch/internal/indicator"
	"github.com/Heightsdesign/stockwatch/internal/model"
)

func TestCatalogCoversRegistry(t *testing.T) {
	infos := Catalog()
	require.Len(t, infos, len(indicator.Names()))

	byName := make(map[string]IndicatorInfo, len(infos))
	for _, info := range infos {
		assert.NotEmpty(t, info.Lines, "%s has no lines", info.Name)
		byName[info.Name] = info
	}

	macd, ok := byName["MACD"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"MACD LINE", "SIGNAL LINE", "HISTOGRAM"}, macd.Lines)
}

func validChainCondition() model.Condition {
	return model.Condition{
		Position:  1,
		Indicator: "RSI",
		Line:      "RSI",
		Timeframe: model.TF1Day,
		Params:    model.Params{"length": 14},
		Operator:  model.OpLessThan,
		ValueType: model.ValueNumber,
		Number:    30,
	}
}

func TestValidateCondition(t *testing.T) {
	require.NoError(t, ValidateCondition(validChainCondition()))

	t.Run("unknown indicator", func(t *testing.T) {
		cond := validChainCondition()
		cond.Indicator = "MAGIC"
		assert.True(t, errors.Is(ValidateCondition(cond), indicator.ErrUnknownIndicator))
	})

	t.Run("unknown line", func(t *testing.T) {
		cond := validChainCondition()
		cond.Indicator = "MACD"
		cond.Line = "RSI"
		assert.ErrorContains(t, ValidateCondition(cond), "no line")
	})

	t.Run("multi line indicator needs explicit line", func(t *testing.T) {
		cond := validChainCondition()
		cond.Indicator = "MACD"
		cond.Line = ""
		assert.ErrorContains(t, ValidateCondition(cond), "one must be chosen")
	})

	t.Run("length cap", func(t *testing.T) {
		cond := validChainCondition()
		cond.Params = model.Params{"length": 500}
		assert.True(t, errors.Is(ValidateCondition(cond), indicator.ErrInvalidParameter))
	})

	t.Run("bad timeframe", func(t *testing.T) {
		cond := validChainCondition()
		cond.Timeframe = model.Timeframe("2H")
		assert.Error(t, ValidateCondition(cond))
	})

	t.Run("bad operator", func(t *testing.T) {
		cond := validChainCondition()
		cond.Operator = model.Operator("GTE")
		assert.ErrorContains(t, ValidateCondition(cond), "unknown operator")
	})

	t.Run("incomplete indicator operand", func(t *testing.T) {
		cond := validChainCondition()
		cond.ValueType = model.ValueIndicatorLine
		cond.ValueIndicator = "MOVING AVERAGE"
		// value_timeframe missing
		assert.Error(t, ValidateCondition(cond))
	})
}

func TestValidateChain(t *testing.T) {
	assert.ErrorIs(t, ValidateChain(nil), ErrNoConditions)

	six := make([]model.Condition, 6)
	for i := range six {
		six[i] = validChainCondition()
		six[i].Position = i + 1
	}
	assert.ErrorIs(t, ValidateChain(six), ErrTooManyConditions)

	dup := []model.Condition{validChainCondition(), validChainCondition()}
	assert.ErrorIs(t, ValidateChain(dup), ErrDuplicatePosition)

	two := []model.Condition{validChainCondition(), validChainCondition()}
	two[1].Position = 2
	assert.NoError(t, ValidateChain(two))
}
