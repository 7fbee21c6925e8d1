package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nkins/storefront/internal/cart"
	"github.com/nkins/storefront/internal/common"
	"github.com/nkins/storefront/internal/obs"
	"github.com/nkins/storefront/internal/order"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler exposes the checkout endpoint.
type Handler struct {
	Svc *Service
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	if err := validate.Struct(in); err != nil {
		details := map[string]string{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		appErr := common.NewAppError("INVALID_BODY", "missing required checkout fields", http.StatusBadRequest, err)
		appErr.Details = details
		common.WriteError(w, appErr)
		return
	}

	o, err := h.Svc.Checkout(r.Context(), in)
	if err != nil {
		countCheckout("error")
		writeError(w, err)
		return
	}
	countCheckout("ok")
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.Inc()
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": o})
}

func countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		err = common.NewAppError("EMPTY_CART", "cart is empty or does not exist", http.StatusUnprocessableEntity, err)
	case errors.Is(err, cart.ErrInvalidInput):
		err = common.NewAppError("INVALID_INPUT", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, order.ErrDuplicateTransaction):
		err = common.NewAppError("DUPLICATE_TRANSACTION", err.Error(), http.StatusConflict, err)
	case errors.Is(err, order.ErrValidation):
		err = common.NewAppError("VALIDATION_FAILED", err.Error(), http.StatusUnprocessableEntity, err)
	}
	common.WriteError(w, err)
}
