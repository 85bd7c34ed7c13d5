package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/buanay/pos/internal/domain/cart"
	"github.com/buanay/pos/internal/domain/catalog"
	"github.com/buanay/pos/internal/domain/discount"
	"github.com/buanay/pos/internal/domain/order"
)

type checkoutItem struct {
	ProductID string   `json:"product_id"`
	Size      string   `json:"size"`
	Toppings  []string `json:"toppings"`
	Sugar     string   `json:"sugar"`
	Ice       string   `json:"ice"`
	Quantity  int      `json:"quantity"`
	Note      string   `json:"note"`
}

type checkoutRequest struct {
	Items         []checkoutItem     `json:"items"`
	DiscountCode  string             `json:"discount_code"`
	OrderType     string             `json:"order_type"`
	CustomerInfo  order.CustomerInfo `json:"customer_info"`
	PaymentMethod string             `json:"payment_method"`
}

// Checkout prices the submitted cart, applies the discount code, and
// creates a pending order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]order.LineInput, len(req.Items))
	for i, it := range req.Items {
		lines[i] = order.LineInput{
			ProductID: it.ProductID,
			Spec: cart.Spec{
				Size:     it.Size,
				Toppings: it.Toppings,
				Sugar:    it.Sugar,
				Ice:      it.Ice,
				Quantity: it.Quantity,
				Note:     it.Note,
			},
		}
	}

	o, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		Lines:         lines,
		DiscountCode:  req.DiscountCode,
		OrderType:     order.Type(req.OrderType),
		CustomerInfo:  req.CustomerInfo,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		mapCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// mapCheckoutError translates domain errors into HTTP responses. Request
// shape problems are 400; requests that are well formed but reference
// unusable catalog or discount state are 422.
func mapCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrUnknownOrderType),
		errors.Is(err, order.ErrUnknownPaymentMethod),
		errors.Is(err, cart.ErrMissingSize),
		errors.Is(err, cart.ErrToppingsNotAllowed):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var missingField *order.MissingFieldError
	if errors.As(err, &missingField) {
		writeError(w, http.StatusBadRequest, missingField.Error())
		return
	}

	var unknownSize *cart.UnknownSizeError
	var unknownTopping *cart.UnknownToppingError
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.As(err, &unknownSize),
		errors.As(err, &unknownTopping):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if msg, ok := discountErrorMessage(err); ok {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	zctx.From(r.Context()).Error("checkout failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "checkout failed")
}

// ListOrders returns orders matching the optional status, from, and to
// query parameters, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var f order.Filter

	if s := r.URL.Query().Get("status"); s != "" {
		switch status := order.Status(s); status {
		case order.StatusPending, order.StatusCompleted, order.StatusCancelled:
			f.Status = status
		default:
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
	}
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &f.From},
		{"to", &f.To},
	} {
		if v := r.URL.Query().Get(q.name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+q.name+" timestamp")
				return
			}
			*q.dst = &t
		}
	}

	list, err := h.orders.List(r.Context(), f)
	if err != nil {
		zctx.From(r.Context()).Error("list orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	resp := make([]orderResponse, len(list))
	for i := range list {
		resp[i] = toOrderResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder returns a single order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("get order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus transitions a pending order to completed or
// cancelled.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next := order.Status(req.Status)
	switch next {
	case order.StatusCompleted, order.StatusCancelled, order.StatusPending:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), next, requestActor(r))
	if err != nil {
		var invalid *order.InvalidTransitionError
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrForbidden):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.As(err, &invalid):
			writeError(w, http.StatusConflict, invalid.Error())
		default:
			zctx.From(r.Context()).Error("update order status", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update order")
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// discountErrorMessage maps discount validation errors to user-facing
// messages. The bool reports whether err was a discount error at all.
func discountErrorMessage(err error) (string, bool) {
	var belowMin *discount.BelowMinimumError
	switch {
	case errors.Is(err, discount.ErrNotFound),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrNotYetActive):
		return err.Error(), true
	case errors.As(err, &belowMin):
		return belowMin.Error(), true
	}
	return "", false
}
