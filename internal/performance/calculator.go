// Package performance реализует пересчёт метрик эффективности поставщиков:
// вычисление четырёх агрегатов по истории заказов, запись неизменяемых
// снимков и триггер, связывающий изменения заказов с пересчётом.
//
// Все деления на ноль (нет заказов, нет выполненных заказов, нет
// подтверждённых заказов) дают 0 и не считаются ошибкой.
package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

// OrderReader описывает чтение истории заказов, нужное калькулятору.
type OrderReader interface {
	FindOrdersByVendor(ctx context.Context, vendorID int64) ([]model.PurchaseOrder, error)
	FindOrdersByVendorAndStatus(ctx context.Context, vendorID int64, status model.OrderStatus) ([]model.PurchaseOrder, error)
}

// Calculator вычисляет метрики поставщика по текущей истории его заказов.
// Не имеет состояния и безопасен для конкурентного использования.
type Calculator struct {
	orders OrderReader
}

// NewCalculator создаёт калькулятор поверх хранилища заказов.
func NewCalculator(orders OrderReader) *Calculator {
	return &Calculator{orders: orders}
}

// Calculate читает историю заказов поставщика и вычисляет метрики на момент now.
func (c *Calculator) Calculate(ctx context.Context, vendorID int64, now time.Time) (model.PerformanceMetrics, error) {
	completed, err := c.orders.FindOrdersByVendorAndStatus(ctx, vendorID, model.OrderStatusCompleted)
	if err != nil {
		return model.PerformanceMetrics{}, fmt.Errorf("read completed orders: %w", err)
	}

	all, err := c.orders.FindOrdersByVendor(ctx, vendorID)
	if err != nil {
		return model.PerformanceMetrics{}, fmt.Errorf("read orders: %w", err)
	}

	return model.PerformanceMetrics{
		OnTimeDeliveryRate:  OnTimeDeliveryRate(completed, now),
		QualityRatingAvg:    QualityRatingAvg(completed),
		AverageResponseTime: AverageResponseTime(all),
		FulfillmentRate:     FulfillmentRate(len(completed), len(all)),
	}, nil
}

// OnTimeDeliveryRate возвращает долю выполненных заказов, дата доставки которых
// не позже now, в процентах. Обещанная дата доставки не учитывается: "вовремя"
// здесь означает "доставлено к моменту расчёта".
func OnTimeDeliveryRate(completed []model.PurchaseOrder, now time.Time) float64 {
	if len(completed) == 0 {
		return 0
	}

	onTime := 0
	for _, o := range completed {
		if !o.DeliveryDate.After(now) {
			onTime++
		}
	}

	return float64(onTime) / float64(len(completed)) * 100
}

// QualityRatingAvg возвращает среднюю оценку качества выполненных заказов.
// Заказы без оценки не участвуют в расчёте.
func QualityRatingAvg(completed []model.PurchaseOrder) float64 {
	var (
		sum   float64
		rated int
	)
	for _, o := range completed {
		if o.QualityRating == nil {
			continue
		}
		sum += *o.QualityRating
		rated++
	}

	if rated == 0 {
		return 0
	}
	return sum / float64(rated)
}

// AverageResponseTime возвращает среднее время подтверждения заказа в секундах.
// Неподтверждённые заказы исключаются из числителя и знаменателя; отрицательные
// интервалы (подтверждение раньше выдачи) сохраняются как есть.
func AverageResponseTime(orders []model.PurchaseOrder) float64 {
	var (
		total        float64
		acknowledged int
	)
	for _, o := range orders {
		if o.AcknowledgmentDate == nil {
			continue
		}
		total += o.AcknowledgmentDate.Sub(o.IssueDate).Seconds()
		acknowledged++
	}

	if acknowledged == 0 {
		return 0
	}
	return total / float64(acknowledged)
}

// FulfillmentRate возвращает долю выполненных заказов среди всех заказов в процентах.
func FulfillmentRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
