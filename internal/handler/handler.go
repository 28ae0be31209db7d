// Package handler содержит HTTP-обработчики API системы управления поставщиками.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/vendor-management-system/internal/metrics"
	"github.com/mmeshcher/vendor-management-system/internal/middleware"
	"github.com/mmeshcher/vendor-management-system/internal/model"
	"github.com/mmeshcher/vendor-management-system/internal/repository"
	"github.com/mmeshcher/vendor-management-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	CreateVendor(ctx context.Context, v model.Vendor) (model.VendorCreated, error)
	ListVendors(ctx context.Context) ([]model.Vendor, error)
	GetVendor(ctx context.Context, id int64) (*model.Vendor, error)
	UpdateVendor(ctx context.Context, id int64, upd model.VendorUpdate) (*model.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error

	CreateOrder(ctx context.Context, o model.PurchaseOrder) (model.OrderMutation, error)
	ListOrders(ctx context.Context, vendorID *int64) ([]model.PurchaseOrder, error)
	GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, id int64, upd model.PurchaseOrderUpdate) (model.OrderMutation, error)
	DeleteOrder(ctx context.Context, id int64) error

	GetPerformance(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error)
}

// Handler реализует HTTP-обработчики API.
type Handler struct {
	service Service
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
		metrics: m,
	}
}

type messageResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// GetPerformance возвращает последний снимок метрик поставщика.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	snapshot, err := h.service.GetPerformance(r.Context(), vendorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Health проверяет доступность хранилища.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Validation failed", Fields: vErr.Fields})
	case errors.Is(err, validation.ErrValidation):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, repository.ErrVendorNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Vendor not found"})
	case errors.Is(err, repository.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Purchase order not found"})
	case errors.Is(err, repository.ErrPerformanceNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Performance record not found"})
	case errors.Is(err, repository.ErrStorageUnavailable):
		h.logger.Error("storage unavailable", zap.Error(err), h.requestField(r), zap.String("path", r.URL.Path))
		writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: "Storage unavailable"})
	case errors.Is(err, context.Canceled):
		// Клиент уже отключился, отвечать некому.
		h.logger.Info("request canceled by client", zap.Error(err), h.requestField(r), zap.String("path", r.URL.Path))
	default:
		h.logger.Error("request failed", zap.Error(err), h.requestField(r), zap.String("path", r.URL.Path))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: http.StatusText(http.StatusInternalServerError)})
	}
}

func (h *Handler) requestField(r *http.Request) zap.Field {
	id, _ := middleware.GetRequestIDFromContext(r.Context())
	return zap.String("requestID", id)
}

// logRecomputeFailure помечает в логе запрос, запись которого прошла, а пересчёт метрик нет.
func (h *Handler) logRecomputeFailure(r *http.Request, msg string, rc model.Recompute, fields ...zap.Field) {
	if rc.Err == nil {
		return
	}
	fields = append(fields, zap.Error(rc.Err), h.requestField(r))
	h.logger.Warn(msg, fields...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return validation.Field("body", "must be a valid JSON object: "+err.Error())
	}
	return validation.Struct(dest)
}

func pathID(r *http.Request) (int64, error) {
	return parseID("id", chi.URLParam(r, "id"))
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.Field(name, "must be a positive integer")
	}
	return id, nil
}

func recomputeError(rc model.Recompute) string {
	if rc.Err == nil {
		return ""
	}
	return rc.Err.Error()
}
