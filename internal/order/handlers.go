package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nkins/storefront/internal/common"
	"github.com/nkins/storefront/internal/obs"
)

// Handler exposes the customer-facing order endpoints.
type Handler struct {
	Svc *Service
}

// Get handles GET /orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// GetByTransaction handles GET /orders/by-transaction/{transactionId}. The
// storefront thank-you page only knows the payment reference.
func (h *Handler) GetByTransaction(w http.ResponseWriter, r *http.Request) {
	o, err := h.Svc.ByTransactionID(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /orders/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	o, err := h.Svc.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// AdminHandler exposes the back-office order endpoints.
type AdminHandler struct {
	Svc *Service
}

// List handles GET /admin/orders with optional status filter.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	params := ListParams{Page: page, Limit: perPage}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		params.Status = status
	}
	orders, total, err := h.Svc.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": orders,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// PatchStatus handles PATCH /admin/orders/{id}/status.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	if obs.OrderStatusTotal != nil {
		obs.OrderStatusTotal.WithLabelValues(string(o.Status)).Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = common.NewAppError("ORDER_NOT_FOUND", "order not found", http.StatusNotFound, err)
	case errors.Is(err, ErrDuplicateTransaction):
		err = common.NewAppError("DUPLICATE_TRANSACTION", err.Error(), http.StatusConflict, err)
	case errors.Is(err, ErrInvalidTransition):
		err = common.NewAppError("INVALID_TRANSITION", err.Error(), http.StatusConflict, err)
	case errors.Is(err, ErrValidation):
		err = common.NewAppError("VALIDATION_FAILED", err.Error(), http.StatusUnprocessableEntity, err)
	}
	common.WriteError(w, err)
}
