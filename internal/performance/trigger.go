package performance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/vendor-management-system/internal/metrics"
	"github.com/mmeshcher/vendor-management-system/internal/model"
)

// Виды срабатывания триггера, используются в логах и метриках.
const (
	TriggerOrder = "order"
	TriggerSeed  = "seed"
)

// Trigger синхронно пересчитывает метрики поставщика после изменения его заказов.
// Блокировка между чтением истории и записью снимка не берётся: при гонке двух
// пересчётов одного поставщика последним может оказаться менее свежий снимок.
type Trigger struct {
	calc    *Calculator
	rec     *Recorder
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option настраивает Trigger.
type Option func(*Trigger)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(t *Trigger) {
		t.now = now
	}
}

// NewTrigger создаёт триггер пересчёта метрик.
func NewTrigger(calc *Calculator, rec *Recorder, logger *zap.Logger, m *metrics.Metrics, opts ...Option) *Trigger {
	t := &Trigger{
		calc:    calc,
		rec:     rec,
		logger:  logger,
		metrics: m,
		now:     defaultClock,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// PostgreSQL хранит время с точностью до микросекунды.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// OnOrderMutated пересчитывает метрики поставщика по всей истории его заказов
// и записывает новый снимок с текущим временем.
func (t *Trigger) OnOrderMutated(ctx context.Context, vendorID int64) (model.PerformanceSnapshot, error) {
	start := time.Now()
	now := t.now()

	snapshot, err := t.recompute(ctx, vendorID, now)
	t.observe(TriggerOrder, vendorID, start, err)

	return snapshot, err
}

func (t *Trigger) recompute(ctx context.Context, vendorID int64, now time.Time) (model.PerformanceSnapshot, error) {
	m, err := t.calc.Calculate(ctx, vendorID, now)
	if err != nil {
		return model.PerformanceSnapshot{}, fmt.Errorf("calculate vendor %d performance: %w", vendorID, err)
	}

	snapshot, err := t.rec.Record(ctx, vendorID, m, now)
	if err != nil {
		return model.PerformanceSnapshot{}, fmt.Errorf("record vendor %d performance: %w", vendorID, err)
	}

	return snapshot, nil
}

// Seed записывает нулевой снимок для только что зарегистрированного поставщика.
// Калькулятор не вызывается: заказов у нового поставщика ещё нет.
func (t *Trigger) Seed(ctx context.Context, vendorID int64) (model.PerformanceSnapshot, error) {
	start := time.Now()

	snapshot, err := t.rec.Record(ctx, vendorID, model.PerformanceMetrics{}, t.now())
	if err != nil {
		err = fmt.Errorf("seed vendor %d performance: %w", vendorID, err)
	}
	t.observe(TriggerSeed, vendorID, start, err)

	return snapshot, err
}

func (t *Trigger) observe(kind string, vendorID int64, start time.Time, err error) {
	elapsed := time.Since(start)
	t.metrics.ObserveRecompute(kind, elapsed, err)

	if err != nil {
		t.logger.Error("performance recompute failed",
			zap.String("trigger", kind),
			zap.Int64("vendorID", vendorID),
			zap.Error(err),
		)
		return
	}

	t.logger.Debug("performance recomputed",
		zap.String("trigger", kind),
		zap.Int64("vendorID", vendorID),
		zap.Duration("elapsed", elapsed),
	)
}
