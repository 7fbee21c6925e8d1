package checkout_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkins/storefront/internal/checkout"
	"github.com/nkins/storefront/internal/order"
)

const checkoutBody = `{
	"cartId": "cart-1",
	"transactionId": "txn-1",
	"customer": {
		"email": "ada@example.com",
		"firstName": "Ada",
		"lastName": "Obi",
		"address": "12 Marina Road",
		"city": "Lagos",
		"state": "Lagos",
		"zip": "101001",
		"phone": "+2348012345678"
	}
}`

func newCheckoutRouter(t *testing.T) *chi.Mux {
	t.Helper()
	svc, carts := newTestCheckout(t)
	seedCart(t, carts, "cart-1")
	h := &checkout.Handler{Svc: svc}
	r := chi.NewRouter()
	r.Post("/checkout", h.Checkout)
	return r
}

func TestCheckoutEndpoint(t *testing.T) {
	r := newCheckoutRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(checkoutBody)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.ID)
	require.Equal(t, int64(38000), body.Data.Total)

	// cart is gone now, a replay of the same payload has nothing to buy
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(checkoutBody)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutEndpointRequiresFields(t *testing.T) {
	r := newCheckoutRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"cartId":"cart-1"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`not json`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutEndpointIncompleteCustomer(t *testing.T) {
	r := newCheckoutRouter(t)
	payload := `{"cartId":"cart-1","transactionId":"txn-9","customer":{"email":"ada@example.com"}}`

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(payload)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}
