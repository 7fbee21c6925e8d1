package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nkins/storefront/internal/catalog"
	"github.com/nkins/storefront/internal/common"
	"github.com/nkins/storefront/internal/obs"
)

func countOp(op string) {
	if obs.CartOpsTotal != nil {
		obs.CartOpsTotal.WithLabelValues(op).Inc()
	}
}

// ProductSource resolves products for add-to-cart requests.
type ProductSource interface {
	ByID(ctx context.Context, id string) (catalog.Product, error)
}

// Handler wires the cart engine and its persistence port to HTTP.
type Handler struct {
	Store   Store
	Catalog ProductSource
}

// Create issues a fresh cart token.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	token := uuid.NewString()
	if err := h.Store.Save(r.Context(), token, Cart{}); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"cartId": token}})
}

// Get returns cart contents with derived count and total.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	token := chi.URLParam(r, "id")
	c, err := h.Store.Load(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, render(token, c))
}

// AddItem adds or increments a line for a product+variant pairing.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || h.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart handler not configured", nil)
		return
	}
	token := chi.URLParam(r, "id")
	var payload struct {
		ProductID string `json:"productId"`
		VariantID string `json:"variantId"`
		Qty       int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.ProductID = strings.TrimSpace(payload.ProductID)
	payload.VariantID = strings.TrimSpace(payload.VariantID)
	if payload.ProductID == "" || payload.VariantID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId and variantId are required", nil)
		return
	}
	if payload.Qty == 0 {
		payload.Qty = 1
	}
	product, err := h.Catalog.ByID(r.Context(), payload.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	variant, ok := product.Variant(payload.VariantID)
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "variant not found", nil)
		return
	}
	c, err := h.Store.Load(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := c.AddItem(product, variant, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Store.Save(r.Context(), token, c); err != nil {
		h.writeError(w, err)
		return
	}
	countOp("add")
	common.JSON(w, http.StatusOK, render(token, c))
}

// UpdateItem sets the quantity for a line; zero removes it.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	token := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Store.Load(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	c.UpdateQuantity(itemID, payload.Qty)
	if err := h.Store.Save(r.Context(), token, c); err != nil {
		h.writeError(w, err)
		return
	}
	countOp("update")
	common.JSON(w, http.StatusOK, render(token, c))
}

// RemoveItem deletes a line. Removing an absent line still succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	token := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	c, err := h.Store.Load(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	c.RemoveItem(itemID)
	if err := h.Store.Save(r.Context(), token, c); err != nil {
		h.writeError(w, err)
		return
	}
	countOp("remove")
	common.JSON(w, http.StatusOK, render(token, c))
}

// Clear wipes the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	token := chi.URLParam(r, "id")
	if err := h.Store.Delete(r.Context(), token); err != nil {
		h.writeError(w, err)
		return
	}
	countOp("clear")
	common.JSON(w, http.StatusOK, render(token, Cart{}))
}

func render(token string, c Cart) map[string]any {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	return map[string]any{
		"data": map[string]any{
			"cartId": token,
			"items":  items,
			"count":  c.Count(),
			"total":  c.Total(),
		},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, catalog.ErrInvalidInput):
		err = common.NewAppError("BAD_REQUEST", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, catalog.ErrNotFound):
		err = common.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, catalog.ErrInvalidPrice):
		err = common.NewAppError("INVALID_PRICE", "variant price resolves below zero", http.StatusUnprocessableEntity, err)
	}
	common.WriteError(w, err)
}
