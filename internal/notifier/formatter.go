package notifier

import (
	"fmt"
	"strings"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// FormatTrigger renders one triggered alert as an HTML Telegram message.
func FormatTrigger(alert *model.Alert, trigger model.TriggerContext) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔔 <b>%s alert</b> | %s\n", kindLabel(alert.Kind), trigger.Symbol))
	b.WriteString(fmt.Sprintf("Time: %s\n\n", trigger.TriggeredAt.UTC().Format("2006-01-02 15:04 MST")))

	switch alert.Kind {
	case model.KindPriceTarget:
		op := "above"
		if alert.PriceTarget != nil && alert.PriceTarget.Operator == model.OpLessThan {
			op = "below"
		} else if alert.PriceTarget != nil && alert.PriceTarget.Operator == model.OpEqualTo {
			op = "at"
		}
		b.WriteString(fmt.Sprintf("Price %.2f is %s target %.2f\n",
			trigger.CurrentValue, op, trigger.TargetValue))

	case model.KindPercentageChange:
		direction := "moved"
		if alert.PercentageChange != nil {
			if alert.PercentageChange.Direction == model.DirectionUp {
				direction = "gained"
			} else {
				direction = "dropped"
			}
		}
		b.WriteString(fmt.Sprintf("%s %s %+.2f%% (threshold %.2f%%)\n",
			trigger.Symbol, direction, trigger.CurrentValue, trigger.TargetValue))

	case model.KindIndicatorChain:
		b.WriteString("All chain conditions met:\n")
		for _, c := range trigger.Conditions {
			b.WriteString(fmt.Sprintf("  %d. %s[%s] %.4f %s %.4f\n",
				c.Position, c.Indicator, c.Line, c.MainValue, opSymbol(c.Operator), c.ComparisonValue))
		}
	}

	return b.String()
}

func kindLabel(kind model.AlertKind) string {
	switch kind {
	case model.KindPriceTarget:
		return "Price target"
	case model.KindPercentageChange:
		return "Percentage change"
	case model.KindIndicatorChain:
		return "Indicator chain"
	}
	return string(kind)
}

func opSymbol(op string) string {
	switch model.Operator(op) {
	case model.OpGreaterThan:
		return ">"
	case model.OpLessThan:
		return "<"
	case model.OpEqualTo:
		return "="
	}
	return op
}
