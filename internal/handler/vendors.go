package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

type vendorRequest struct {
	Name           string `json:"name" validate:"required"`
	ContactDetails string `json:"contact_details" validate:"required"`
	Address        string `json:"address" validate:"required"`
	VendorCode     string `json:"vendor_code"`
}

type vendorUpdateRequest struct {
	Name           *string `json:"name" validate:"omitnil,min=1"`
	ContactDetails *string `json:"contact_details" validate:"omitnil,min=1"`
	Address        *string `json:"address" validate:"omitnil,min=1"`
	VendorCode     *string `json:"vendor_code"`
}

type vendorCreatedResponse struct {
	Message             string `json:"message"`
	VendorID            int64  `json:"vendor_id"`
	PerformanceRecorded bool   `json:"performance_recorded"`
	PerformanceError    string `json:"performance_error,omitempty"`
}

// CreateVendor регистрирует поставщика.
func (h *Handler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req vendorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.CreateVendor(r.Context(), model.Vendor{
		Name:           req.Name,
		ContactDetails: req.ContactDetails,
		Address:        req.Address,
		VendorCode:     req.VendorCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logRecomputeFailure(r, "vendor created without initial performance record", res.Recompute,
		zap.Int64("vendorID", res.ID))

	writeJSON(w, http.StatusCreated, vendorCreatedResponse{
		Message:             "Vendor created successfully",
		VendorID:            res.ID,
		PerformanceRecorded: res.Recompute.OK(),
		PerformanceError:    recomputeError(res.Recompute),
	})
}

// ListVendors возвращает список поставщиков.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.service.ListVendors(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if vendors == nil {
		vendors = []model.Vendor{}
	}

	writeJSON(w, http.StatusOK, vendors)
}

// GetVendor возвращает поставщика по идентификатору.
func (h *Handler) GetVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	vendor, err := h.service.GetVendor(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vendor)
}

// UpdateVendor частично обновляет данные поставщика.
func (h *Handler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req vendorUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	vendor, err := h.service.UpdateVendor(r.Context(), id, model.VendorUpdate{
		Name:           req.Name,
		ContactDetails: req.ContactDetails,
		Address:        req.Address,
		VendorCode:     req.VendorCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, vendor)
}

// DeleteVendor удаляет поставщика.
func (h *Handler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteVendor(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Vendor deleted successfully"})
}
