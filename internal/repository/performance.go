package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

// InsertSnapshot добавляет неизменяемый снимок метрик в историю поставщика.
// Повторяющиеся метки времени и значения не отклоняются.
func (r *PostgresRepository) InsertSnapshot(ctx context.Context, s model.PerformanceSnapshot) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO performance_snapshots (vendor_id, recorded_at, on_time_delivery_rate,
		                                    quality_rating_avg, average_response_time, fulfillment_rate)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		s.VendorID, s.RecordedAt, s.OnTimeDeliveryRate, s.QualityRatingAvg,
		s.AverageResponseTime, s.FulfillmentRate,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: %d", ErrVendorNotFound, s.VendorID)
		}
		return 0, classify("insert snapshot", err)
	}
	return id, nil
}

// LatestSnapshot возвращает снимок с максимальной меткой времени. При равных
// метках побеждает последний вставленный.
func (r *PostgresRepository) LatestSnapshot(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error) {
	var s model.PerformanceSnapshot
	err := r.pool.QueryRow(ctx,
		`SELECT id, vendor_id, recorded_at, on_time_delivery_rate, quality_rating_avg,
		        average_response_time, fulfillment_rate
		 FROM performance_snapshots
		 WHERE vendor_id = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`,
		vendorID,
	).Scan(&s.ID, &s.VendorID, &s.RecordedAt, &s.OnTimeDeliveryRate, &s.QualityRatingAvg,
		&s.AverageResponseTime, &s.FulfillmentRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, classify("select latest snapshot", err)
	}
	return &s, nil
}
