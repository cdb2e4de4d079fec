// Package store persists alerts between evaluation cycles.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// ErrNotFound means no alert exists with the given id.
var ErrNotFound = errors.New("alert not found")

// Store is the persistence interface for alerts.
type Store interface {
	// Save inserts the alert or replaces an existing row with the same id.
	Save(ctx context.Context, alert *model.Alert) error
	// Get returns one alert by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Alert, error)
	// ListActive returns every active alert, ordered by symbol then id.
	ListActive(ctx context.Context) ([]*model.Alert, error)
	// MarkTriggered atomically claims the trigger: it deactivates the alert
	// and records the trigger time only if the alert is still active. The
	// returned bool reports whether this caller won the claim, so concurrent
	// workers never notify twice.
	MarkTriggered(ctx context.Context, id string, at time.Time) (bool, error)
	// SetActive re-arms or disarms an alert.
	SetActive(ctx context.Context, id string, active bool) error
	Close() error
}
