package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buanay/pos/internal/domain/discount"
)

type validateDiscountRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

type validateDiscountResponse struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	Message        string `json:"message,omitempty"`
}

// ValidateDiscount previews a discount code against a cart subtotal
// without creating an order, so the UI can show the reduction live.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.Subtotal < 0 {
		writeError(w, http.StatusBadRequest, "subtotal must not be negative")
		return
	}

	applied, err := h.validator.Validate(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		if msg, ok := discountErrorMessage(err); ok {
			writeJSON(w, http.StatusUnprocessableEntity, validateDiscountResponse{
				Valid:   false,
				Message: msg,
			})
			return
		}
		zctx.From(r.Context()).Error("validate discount", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to validate discount")
		return
	}

	writeJSON(w, http.StatusOK, validateDiscountResponse{
		Valid:          true,
		Code:           applied.Code.Code,
		DiscountAmount: applied.Amount,
	})
}

type discountResponse struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	Type              string     `json:"type"`
	Value             int64      `json:"value"`
	MinOrderAmount    int64      `json:"min_order_amount"`
	MaxDiscountAmount int64      `json:"max_discount_amount"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toDiscountResponse(c *discount.Code) discountResponse {
	return discountResponse{
		ID:                c.ID,
		Code:              c.Code,
		Type:              string(c.Type),
		Value:             c.Value,
		MinOrderAmount:    c.MinOrderAmount,
		MaxDiscountAmount: c.MaxDiscountAmount,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		Active:            c.Active,
		CreatedAt:         c.CreatedAt,
	}
}

type createDiscountRequest struct {
	Code              string     `json:"code"`
	Type              string     `json:"type"`
	Value             int64      `json:"value"`
	MinOrderAmount    int64      `json:"min_order_amount"`
	MaxDiscountAmount int64      `json:"max_discount_amount"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
}

// CreateDiscount registers a new discount code. Admin only.
func (h *Handler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	dt := discount.Type(req.Type)
	switch dt {
	case discount.TypePercentage, discount.TypeFixed:
	default:
		writeError(w, http.StatusBadRequest, "type must be percentage or fixed")
		return
	}
	if req.Value < 0 || (dt == discount.TypePercentage && req.Value > 100) {
		writeError(w, http.StatusBadRequest, "invalid discount value")
		return
	}
	if req.MinOrderAmount < 0 || req.MaxDiscountAmount < 0 {
		writeError(w, http.StatusBadRequest, "amounts must not be negative")
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		writeError(w, http.StatusBadRequest, "end date must not precede start date")
		return
	}

	code := &discount.Code{
		ID:                uuid.New().String(),
		Code:              req.Code,
		Type:              dt,
		Value:             req.Value,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Active:            true,
		CreatedAt:         time.Now(),
	}
	if err := h.discounts.Create(r.Context(), code); err != nil {
		zctx.From(r.Context()).Error("create discount", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create discount")
		return
	}

	writeJSON(w, http.StatusCreated, toDiscountResponse(code))
}

// ListDiscounts returns all discount codes. Admin only.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	codes, err := h.discounts.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list discounts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load discounts")
		return
	}

	resp := make([]discountResponse, len(codes))
	for i := range codes {
		resp[i] = toDiscountResponse(&codes[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetDiscountActive toggles a discount code on or off. Admin only.
func (h *Handler) SetDiscountActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.discounts.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		zctx.From(r.Context()).Error("set discount active", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update discount")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}
