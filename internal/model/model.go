// Package model содержит доменные сущности системы управления поставщиками.
package model

import (
	"encoding/json"
	"time"
)

// Vendor представляет зарегистрированного поставщика.
type Vendor struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ContactDetails string    `json:"contact_details"`
	Address        string    `json:"address"`
	VendorCode     string    `json:"vendor_code"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// VendorUpdate описывает частичное обновление поставщика. Nil-поля не изменяются.
type VendorUpdate struct {
	Name           *string
	ContactDetails *string
	Address        *string
	VendorCode     *string
}

// OrderStatus описывает статус заказа на закупку. Перечисление открытое:
// хранилище принимает любое непустое значение.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// PurchaseOrder описывает заказ на закупку, выданный поставщику.
type PurchaseOrder struct {
	ID                 int64           `json:"id"`
	PONumber           string          `json:"po_number"`
	VendorID           int64           `json:"vendor_id"`
	Status             OrderStatus     `json:"status"`
	Items              json.RawMessage `json:"items"`
	Quantity           int             `json:"quantity"`
	OrderDate          time.Time       `json:"order_date"`
	IssueDate          time.Time       `json:"issue_date"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	AcknowledgmentDate *time.Time      `json:"acknowledgment_date"`
	QualityRating      *float64        `json:"quality_rating"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// PurchaseOrderUpdate описывает частичное обновление заказа. Nil-поля не изменяются.
type PurchaseOrderUpdate struct {
	PONumber           *string
	VendorID           *int64
	Status             *OrderStatus
	Items              json.RawMessage
	Quantity           *int
	OrderDate          *time.Time
	IssueDate          *time.Time
	DeliveryDate       *time.Time
	AcknowledgmentDate *time.Time
	QualityRating      *float64
}

// Empty сообщает, что обновление не затрагивает ни одного поля.
func (u PurchaseOrderUpdate) Empty() bool {
	return u.PONumber == nil && u.VendorID == nil && u.Status == nil && u.Items == nil &&
		u.Quantity == nil && u.OrderDate == nil && u.IssueDate == nil && u.DeliveryDate == nil &&
		u.AcknowledgmentDate == nil && u.QualityRating == nil
}

// PerformanceMetrics содержит четыре агрегированные метрики поставщика.
type PerformanceMetrics struct {
	OnTimeDeliveryRate  float64 `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64 `json:"quality_rating_avg"`
	AverageResponseTime float64 `json:"average_response_time"`
	FulfillmentRate     float64 `json:"fulfillment_rate"`
}

// PerformanceSnapshot описывает неизменяемую запись истории метрик поставщика.
type PerformanceSnapshot struct {
	ID         int64     `json:"id"`
	VendorID   int64     `json:"vendor_id"`
	RecordedAt time.Time `json:"date"`
	PerformanceMetrics
}

// Recompute описывает результат пересчёта метрик, выполненного после записи.
// Ошибка пересчёта не отменяет саму запись.
type Recompute struct {
	Snapshot *PerformanceSnapshot
	Err      error
}

// OK сообщает, что снимок метрик был успешно сохранён.
func (r Recompute) OK() bool {
	return r.Err == nil && r.Snapshot != nil
}

// VendorCreated описывает результат регистрации поставщика.
type VendorCreated struct {
	ID        int64
	Recompute Recompute
}

// OrderMutation описывает результат создания или обновления заказа.
type OrderMutation struct {
	ID        int64
	Changed   bool
	Recompute Recompute
}
