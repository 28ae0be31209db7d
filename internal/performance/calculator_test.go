package performance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

func TestCalculate_NoOrders(t *testing.T) {
	calc := NewCalculator(&memStore{})

	m, err := calc.Calculate(context.Background(), 1, baseTime)
	require.NoError(t, err)
	assert.Equal(t, model.PerformanceMetrics{}, m)
}

func TestCalculate_OrderHistories(t *testing.T) {
	tests := []struct {
		name   string
		orders []model.PurchaseOrder
		check  func(t *testing.T, m model.PerformanceMetrics)
	}{
		{
			name: "two completed rated orders",
			orders: []model.PurchaseOrder{
				rated(order(1, model.OrderStatusCompleted), 4),
				rated(order(1, model.OrderStatusCompleted), 2),
			},
			check: func(t *testing.T, m model.PerformanceMetrics) {
				assert.Equal(t, 3.0, m.QualityRatingAvg)
				assert.Equal(t, 100.0, m.FulfillmentRate)
				assert.Equal(t, 100.0, m.OnTimeDeliveryRate)
			},
		},
		{
			name: "one completed of three",
			orders: []model.PurchaseOrder{
				rated(order(1, model.OrderStatusCompleted), 5),
				order(1, model.OrderStatusPending),
				order(1, model.OrderStatusPending),
			},
			check: func(t *testing.T, m model.PerformanceMetrics) {
				assert.InDelta(t, 33.333333, m.FulfillmentRate, 1e-6)
				assert.Equal(t, 100.0, m.OnTimeDeliveryRate)
				assert.Equal(t, 5.0, m.QualityRatingAvg)
			},
		},
		{
			name: "unacknowledged order excluded from response time",
			orders: []model.PurchaseOrder{
				acknowledged(order(1, model.OrderStatusPending), 10*time.Second),
				order(1, model.OrderStatusPending),
			},
			check: func(t *testing.T, m model.PerformanceMetrics) {
				assert.Equal(t, 10.0, m.AverageResponseTime)
			},
		},
		{
			name: "acknowledgment before issue stays negative",
			orders: []model.PurchaseOrder{
				acknowledged(order(1, model.OrderStatusPending), -30*time.Second),
			},
			check: func(t *testing.T, m model.PerformanceMetrics) {
				assert.Equal(t, -30.0, m.AverageResponseTime)
			},
		},
		{
			name: "no completed orders",
			orders: []model.PurchaseOrder{
				order(1, model.OrderStatusPending),
				order(1, model.OrderStatusCanceled),
			},
			check: func(t *testing.T, m model.PerformanceMetrics) {
				assert.Zero(t, m.OnTimeDeliveryRate)
				assert.Zero(t, m.QualityRatingAvg)
				assert.Zero(t, m.FulfillmentRate)
			},
		},
		{
			name: "other vendors ignored",
			orders: []model.PurchaseOrder{
				rated(order(1, model.OrderStatusCompleted), 1),
				rated(order(2, model.OrderStatusCompleted), 5),
				order(2, model.OrderStatusPending),
			},
			check: func(t *testing.T, m model.PerformanceMetrics) {
				assert.Equal(t, 1.0, m.QualityRatingAvg)
				assert.Equal(t, 100.0, m.FulfillmentRate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(&memStore{orders: tt.orders})

			m, err := calc.Calculate(context.Background(), 1, baseTime)
			require.NoError(t, err)
			tt.check(t, m)
		})
	}
}

// Дата доставки сравнивается с моментом расчёта, а не с обещанной датой:
// выполненный заказ с будущей датой доставки не считается "вовремя".
func TestOnTimeDeliveryRate_LiteralDeliveredByNow(t *testing.T) {
	late := order(1, model.OrderStatusCompleted)
	late.DeliveryDate = baseTime.Add(time.Hour)

	exact := order(1, model.OrderStatusCompleted)
	exact.DeliveryDate = baseTime

	got := OnTimeDeliveryRate([]model.PurchaseOrder{late, exact}, baseTime)
	assert.Equal(t, 50.0, got)
}

func TestQualityRatingAvg_SkipsUnrated(t *testing.T) {
	got := QualityRatingAvg([]model.PurchaseOrder{
		rated(order(1, model.OrderStatusCompleted), 4),
		order(1, model.OrderStatusCompleted),
	})
	assert.Equal(t, 4.0, got)

	assert.Zero(t, QualityRatingAvg([]model.PurchaseOrder{order(1, model.OrderStatusCompleted)}))
}

func TestFulfillmentRate_ZeroTotal(t *testing.T) {
	assert.Zero(t, FulfillmentRate(0, 0))
	assert.Equal(t, 50.0, FulfillmentRate(1, 2))
}

func TestCalculate_Idempotent(t *testing.T) {
	store := &memStore{orders: []model.PurchaseOrder{
		rated(acknowledged(order(1, model.OrderStatusCompleted), 7*time.Second), 3.3),
		rated(acknowledged(order(1, model.OrderStatusCompleted), 11*time.Second), 4.1),
		order(1, model.OrderStatusPending),
	}}
	calc := NewCalculator(store)

	first, err := calc.Calculate(context.Background(), 1, baseTime)
	require.NoError(t, err)
	second, err := calc.Calculate(context.Background(), 1, baseTime)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	calc := NewCalculator(&memStore{ordersErr: storeErr})

	_, err := calc.Calculate(context.Background(), 1, baseTime)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
}
