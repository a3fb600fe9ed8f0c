package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type validateCouponRequest struct {
	Code      string  `json:"code"`
	CartTotal float64 `json:"cartTotal"`
}

type validateCouponResponse struct {
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalTotal     float64 `json:"finalTotal"`
}

func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.CartTotal < 0 {
		writeError(w, http.StatusBadRequest, "cartTotal must be non-negative")
		return
	}

	quote, err := h.coupons.Evaluate(r.Context(), req.Code, decimal.NewFromFloat(req.CartTotal))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, validateCouponResponse{
		Code:           quote.Code,
		DiscountAmount: quote.Discount.InexactFloat64(),
		FinalTotal:     quote.FinalTotal.InexactFloat64(),
	})
}
