// Package dispatcher runs the periodic alert evaluation cycle.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Heightsdesign/stockwatch/internal/engine"
	"github.com/Heightsdesign/stockwatch/internal/marketdata"
	"github.com/Heightsdesign/stockwatch/internal/metrics"
	"github.com/Heightsdesign/stockwatch/internal/model"
	"github.com/Heightsdesign/stockwatch/internal/notifier"
	"github.com/Heightsdesign/stockwatch/internal/store"
	"github.com/Heightsdesign/stockwatch/internal/window"
)

// Dispatcher walks active alerts, evaluates each due one and notifies on
// trigger. One instance is driven by the cron scheduler; the store's
// conditional update keeps several instances safe side by side.
type Dispatcher struct {
	store    store.Store
	fetcher  marketdata.Fetcher
	chains   *engine.ChainEvaluator
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	health   *metrics.HealthStatus
	log      *zap.Logger

	// now is injectable for due-check tests.
	now func() time.Time
}

func New(st store.Store, fetcher marketdata.Fetcher, nt notifier.Notifier, m *metrics.Metrics, health *metrics.HealthStatus, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		store:    st,
		fetcher:  fetcher,
		chains:   engine.NewChainEvaluator(fetcher, log),
		notifier: nt,
		metrics:  m,
		health:   health,
		log:      log,
		now:      time.Now,
	}
}

// RunCycle evaluates every due active alert once. Individual alert failures
// are logged and skipped so one bad alert never stalls the cycle.
func (d *Dispatcher) RunCycle(ctx context.Context) error {
	start := d.now()

	alerts, err := d.store.ListActive(ctx)
	if err != nil {
		if d.health != nil {
			d.health.SetStoreOK(false)
			d.health.RecordCycle(start, err)
		}
		return fmt.Errorf("list active alerts: %w", err)
	}
	if d.health != nil {
		d.health.SetStoreOK(true)
	}
	if d.metrics != nil {
		d.metrics.ActiveAlerts.Set(float64(len(alerts)))
	}

	// Daily closes fetched once per (symbol, period) within the cycle.
	cache := newDailyCache(d.fetcher)

	now := d.now()
	var evaluated, triggered int
	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !alert.Due(now) {
			continue
		}
		evaluated++
		if d.metrics != nil {
			d.metrics.AlertsEvaluated.WithLabelValues(string(alert.Kind)).Inc()
		}

		fired, trigger, err := d.evaluateSafe(ctx, alert, cache)
		if err != nil {
			if d.metrics != nil {
				d.metrics.AlertErrors.WithLabelValues(string(alert.Kind)).Inc()
			}
			d.log.Warn("alert evaluation failed",
				zap.String("alert_id", alert.ID),
				zap.String("symbol", alert.Symbol),
				zap.String("kind", string(alert.Kind)),
				zap.Error(err))
			continue
		}
		if !fired {
			continue
		}

		claimed, err := d.store.MarkTriggered(ctx, alert.ID, now)
		if err != nil {
			d.log.Error("trigger claim failed",
				zap.String("alert_id", alert.ID),
				zap.Error(err))
			continue
		}
		if !claimed {
			// Another worker got there first.
			continue
		}
		triggered++
		if d.metrics != nil {
			d.metrics.AlertsTriggered.WithLabelValues(string(alert.Kind)).Inc()
		}
		d.log.Info("alert triggered",
			zap.String("alert_id", alert.ID),
			zap.String("symbol", alert.Symbol),
			zap.String("kind", string(alert.Kind)),
			zap.Float64("current", trigger.CurrentValue),
			zap.Float64("target", trigger.TargetValue))

		if err := d.notifier.Notify(ctx, alert, trigger); err != nil {
			if d.metrics != nil {
				d.metrics.NotifyErrors.Inc()
			}
			d.log.Error("notification delivery failed",
				zap.String("alert_id", alert.ID),
				zap.String("notifier", d.notifier.Name()),
				zap.Error(err))
		}
	}

	elapsed := d.now().Sub(start)
	if d.metrics != nil {
		d.metrics.CycleDuration.Observe(elapsed.Seconds())
	}
	if d.health != nil {
		d.health.RecordCycle(start, nil)
	}
	d.log.Info("evaluation cycle complete",
		zap.Int("active", len(alerts)),
		zap.Int("evaluated", evaluated),
		zap.Int("triggered", triggered),
		zap.Duration("elapsed", elapsed))
	return nil
}

// evaluateSafe converts a panic during evaluation into an error so one bad
// alert or a compute bug never takes the cycle down with it.
func (d *Dispatcher) evaluateSafe(ctx context.Context, alert *model.Alert, cache *dailyCache) (fired bool, trigger model.TriggerContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			fired = false
			trigger = model.TriggerContext{}
			err = fmt.Errorf("evaluation panic: %v", r)
		}
	}()
	return d.evaluate(ctx, alert, cache)
}

func (d *Dispatcher) evaluate(ctx context.Context, alert *model.Alert, cache *dailyCache) (bool, model.TriggerContext, error) {
	switch alert.Kind {
	case model.KindPriceTarget:
		return d.evaluatePriceTarget(ctx, alert, cache)
	case model.KindPercentageChange:
		return d.evaluatePercentageChange(ctx, alert, cache)
	case model.KindIndicatorChain:
		return d.evaluateChain(ctx, alert)
	}
	return false, model.TriggerContext{}, fmt.Errorf("unknown alert kind %q", alert.Kind)
}

func (d *Dispatcher) evaluatePriceTarget(ctx context.Context, alert *model.Alert, cache *dailyCache) (bool, model.TriggerContext, error) {
	p := alert.PriceTarget
	if p == nil {
		return false, model.TriggerContext{}, fmt.Errorf("price target alert %s has no payload", alert.ID)
	}

	bars, err := cache.fetch(ctx, alert.Symbol, "5d")
	if err != nil {
		d.countFetchError()
		return false, model.TriggerContext{}, err
	}
	price := model.LastClose(bars)
	target, _ := p.TargetPrice.Float64()

	met, err := compareFloat(price, p.Operator, target)
	if err != nil {
		return false, model.TriggerContext{}, err
	}
	return met, model.TriggerContext{
		Kind:         alert.Kind,
		Symbol:       alert.Symbol,
		TriggeredAt:  d.now(),
		CurrentValue: price,
		TargetValue:  target,
	}, nil
}

func (d *Dispatcher) evaluatePercentageChange(ctx context.Context, alert *model.Alert, cache *dailyCache) (bool, model.TriggerContext, error) {
	p := alert.PercentageChange
	if p == nil {
		return false, model.TriggerContext{}, fmt.Errorf("percentage change alert %s has no payload", alert.ID)
	}

	period, err := lookbackPeriod(p.Lookback, p.CustomDays)
	if err != nil {
		return false, model.TriggerContext{}, err
	}
	bars, err := cache.fetch(ctx, alert.Symbol, period)
	if err != nil {
		d.countFetchError()
		return false, model.TriggerContext{}, err
	}

	open := bars[0].Open
	if open == 0 {
		return false, model.TriggerContext{}, fmt.Errorf("zero period open for %s", alert.Symbol)
	}
	change := (model.LastClose(bars) - open) / open * 100
	target, _ := p.Percent.Float64()

	var met bool
	switch p.Direction {
	case model.DirectionUp:
		met = change >= target
	case model.DirectionDown:
		met = change <= -target
	default:
		return false, model.TriggerContext{}, fmt.Errorf("unknown direction %q", p.Direction)
	}
	return met, model.TriggerContext{
		Kind:         alert.Kind,
		Symbol:       alert.Symbol,
		TriggeredAt:  d.now(),
		CurrentValue: change,
		TargetValue:  target,
	}, nil
}

func (d *Dispatcher) evaluateChain(ctx context.Context, alert *model.Alert) (bool, model.TriggerContext, error) {
	p := alert.IndicatorChain
	if p == nil {
		return false, model.TriggerContext{}, fmt.Errorf("indicator chain alert %s has no payload", alert.ID)
	}

	result, err := d.chains.Evaluate(ctx, alert.Symbol, p.Conditions)
	if err != nil {
		return false, model.TriggerContext{}, err
	}
	return result.Matched, model.TriggerContext{
		Kind:        alert.Kind,
		Symbol:      alert.Symbol,
		TriggeredAt: d.now(),
		Conditions:  result.Results,
	}, nil
}

func (d *Dispatcher) countFetchError() {
	if d.metrics != nil {
		d.metrics.FetchErrors.Inc()
	}
}

// lookbackPeriod maps the lookback enum to a provider period string.
func lookbackPeriod(lb model.LookbackPeriod, customDays int) (string, error) {
	switch lb {
	case model.Lookback1Day:
		return "1d", nil
	case model.Lookback1Week:
		return "5d", nil
	case model.Lookback1Month:
		return "1mo", nil
	case model.Lookback1Year:
		return "1y", nil
	case model.LookbackCustom:
		if customDays <= 0 {
			return "", fmt.Errorf("custom lookback needs a positive day count")
		}
		return window.PeriodForDays(customDays), nil
	}
	return "", fmt.Errorf("unknown lookback period %q", lb)
}

func compareFloat(value float64, op model.Operator, target float64) (bool, error) {
	switch op {
	case model.OpGreaterThan:
		return value > target, nil
	case model.OpLessThan:
		return value < target, nil
	case model.OpEqualTo:
		return value == target, nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

// dailyCache holds daily series fetched during one cycle, keyed by symbol and
// period, so several alerts on the same symbol share one provider call.
type dailyCache struct {
	fetcher marketdata.Fetcher
	series  map[string][]model.OHLCV
}

func newDailyCache(fetcher marketdata.Fetcher) *dailyCache {
	return &dailyCache{fetcher: fetcher, series: make(map[string][]model.OHLCV)}
}

func (c *dailyCache) fetch(ctx context.Context, symbol, period string) ([]model.OHLCV, error) {
	key := symbol + "|" + period
	if bars, ok := c.series[key]; ok {
		return bars, nil
	}
	bars, err := c.fetcher.Fetch(ctx, symbol, period, "1d")
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, marketdata.ErrNoData
	}
	c.series[key] = bars
	return bars, nil
}
