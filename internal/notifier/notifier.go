// Package notifier delivers triggered alert notifications.
package notifier

import (
	"context"
	"fmt"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// Notifier delivers one triggered-alert message.
type Notifier interface {
	Notify(ctx context.Context, alert *model.Alert, trigger model.TriggerContext) error
	Name() string
}

// ConsoleNotifier prints notifications to stdout for local development.
type ConsoleNotifier struct{}

func (ConsoleNotifier) Name() string { return "console" }

func (ConsoleNotifier) Notify(_ context.Context, alert *model.Alert, trigger model.TriggerContext) error {
	fmt.Printf("ALERT %s %s\n%s\n", alert.ID, alert.Symbol, FormatTrigger(alert, trigger))
	return nil
}
