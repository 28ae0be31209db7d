package performance

import (
	"context"
	"time"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

// SnapshotStore описывает хранилище истории снимков метрик.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, s model.PerformanceSnapshot) (int64, error)
	LatestSnapshot(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error)
}

// Recorder ведёт append-only историю снимков метрик поставщиков.
type Recorder struct {
	store SnapshotStore
}

// NewRecorder создаёт Recorder поверх хранилища снимков.
func NewRecorder(store SnapshotStore) *Recorder {
	return &Recorder{store: store}
}

// Record добавляет снимок метрик и возвращает сохранённую запись.
// Одинаковые метки времени и значения не дедуплицируются.
func (r *Recorder) Record(ctx context.Context, vendorID int64, m model.PerformanceMetrics, at time.Time) (model.PerformanceSnapshot, error) {
	s := model.PerformanceSnapshot{
		VendorID:           vendorID,
		RecordedAt:         at,
		PerformanceMetrics: m,
	}

	id, err := r.store.InsertSnapshot(ctx, s)
	if err != nil {
		return model.PerformanceSnapshot{}, err
	}

	s.ID = id
	return s, nil
}

// Latest возвращает самый свежий снимок поставщика. При равных метках времени
// побеждает последний вставленный; порядок обеспечивает хранилище.
func (r *Recorder) Latest(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error) {
	return r.store.LatestSnapshot(ctx, vendorID)
}
