package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/buanay/pos/internal/domain/order"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

type orderResponse struct {
	ID            string             `json:"id"`
	OrderType     string             `json:"order_type"`
	CustomerInfo  order.CustomerInfo `json:"customer_info"`
	Items         []order.Item       `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	Discount      int64              `json:"discount"`
	DiscountCode  string             `json:"discount_code,omitempty"`
	Total         int64              `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		OrderType:     string(o.Type),
		CustomerInfo:  o.CustomerInfo,
		Items:         o.Items,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		DiscountCode:  o.DiscountCode,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}
