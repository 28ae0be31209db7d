package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

type orderRequest struct {
	PONumber           string          `json:"po_number"`
	VendorID           int64           `json:"vendor_id" validate:"required,gt=0"`
	Status             string          `json:"status" validate:"required"`
	Items              json.RawMessage `json:"items"`
	Quantity           int             `json:"quantity" validate:"gte=0"`
	OrderDate          *time.Time      `json:"order_date"`
	IssueDate          *time.Time      `json:"issue_date" validate:"required"`
	DeliveryDate       *time.Time      `json:"delivery_date" validate:"required"`
	AcknowledgmentDate *time.Time      `json:"acknowledgment_date"`
	QualityRating      *float64        `json:"quality_rating" validate:"omitnil,gte=0"`
}

type orderUpdateRequest struct {
	PONumber           *string         `json:"po_number"`
	VendorID           *int64          `json:"vendor_id" validate:"omitnil,gt=0"`
	Status             *string         `json:"status" validate:"omitnil,min=1"`
	Items              json.RawMessage `json:"items"`
	Quantity           *int            `json:"quantity" validate:"omitnil,gte=0"`
	OrderDate          *time.Time      `json:"order_date"`
	IssueDate          *time.Time      `json:"issue_date"`
	DeliveryDate       *time.Time      `json:"delivery_date"`
	AcknowledgmentDate *time.Time      `json:"acknowledgment_date"`
	QualityRating      *float64        `json:"quality_rating" validate:"omitnil,gte=0"`
}

type orderMutationResponse struct {
	Message             string `json:"message"`
	POID                int64  `json:"po_id"`
	Changed             bool   `json:"changed"`
	PerformanceRecorded bool   `json:"performance_recorded"`
	PerformanceError    string `json:"performance_error,omitempty"`
}

// CreateOrder создаёт заказ на закупку и пересчитывает метрики поставщика.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	o := model.PurchaseOrder{
		PONumber:           req.PONumber,
		VendorID:           req.VendorID,
		Status:             model.OrderStatus(req.Status),
		Items:              nullableJSON(req.Items),
		Quantity:           req.Quantity,
		IssueDate:          *req.IssueDate,
		DeliveryDate:       *req.DeliveryDate,
		AcknowledgmentDate: req.AcknowledgmentDate,
		QualityRating:      req.QualityRating,
	}
	if req.OrderDate != nil {
		o.OrderDate = *req.OrderDate
	}

	res, err := h.service.CreateOrder(r.Context(), o)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logRecomputeFailure(r, "purchase order created, performance recompute failed", res.Recompute,
		zap.Int64("orderID", res.ID), zap.Int64("vendorID", o.VendorID))

	writeJSON(w, http.StatusCreated, orderMutationResponse{
		Message:             "Purchase order created successfully",
		POID:                res.ID,
		Changed:             true,
		PerformanceRecorded: res.Recompute.OK(),
		PerformanceError:    recomputeError(res.Recompute),
	})
}

// ListOrders возвращает заказы, опционально отфильтрованные по vendor_id.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var vendorID *int64
	if raw := r.URL.Query().Get("vendor_id"); raw != "" {
		id, err := parseID("vendor_id", raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		vendorID = &id
	}

	orders, err := h.service.ListOrders(r.Context(), vendorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []model.PurchaseOrder{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// UpdateOrder частично обновляет заказ. Метрики пересчитываются, только если
// сохранённые поля изменились.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req orderUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	upd := model.PurchaseOrderUpdate{
		PONumber:           req.PONumber,
		VendorID:           req.VendorID,
		Items:              nullableJSON(req.Items),
		Quantity:           req.Quantity,
		OrderDate:          req.OrderDate,
		IssueDate:          req.IssueDate,
		DeliveryDate:       req.DeliveryDate,
		AcknowledgmentDate: req.AcknowledgmentDate,
		QualityRating:      req.QualityRating,
	}
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		upd.Status = &status
	}

	res, err := h.service.UpdateOrder(r.Context(), id, upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logRecomputeFailure(r, "purchase order updated, performance recompute failed", res.Recompute,
		zap.Int64("orderID", id))

	msg := "Purchase order updated successfully"
	if !res.Changed {
		msg = "Purchase order unchanged"
	}

	writeJSON(w, http.StatusOK, orderMutationResponse{
		Message:             msg,
		POID:                id,
		Changed:             res.Changed,
		PerformanceRecorded: res.Recompute.OK(),
		PerformanceError:    recomputeError(res.Recompute),
	})
}

// DeleteOrder удаляет заказ.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Purchase order deleted successfully"})
}

// JSON null в поле items означает "не передано".
func nullableJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
