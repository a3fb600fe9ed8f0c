package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/voltstore/storefront/internal/domain/coupon"
	"github.com/voltstore/storefront/internal/domain/order"
	"github.com/voltstore/storefront/internal/domain/product"
	"github.com/voltstore/storefront/internal/domain/user"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	// MinOrderValue is set only on minimum-order coupon rejections so
	// the frontend can tell the user the required floor.
	MinOrderValue *float64 `json:"minOrderValue,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors to HTTP responses. Unrecognized
// errors are treated as infrastructure faults: logged and reported as 500
// without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, user.ErrInvalidResetToken),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrNegativeAmount):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, coupon.ErrInactive), errors.Is(err, coupon.ErrExpired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		var minErr *coupon.MinimumOrderError
		if errors.As(err, &minErr) {
			required := minErr.Required.InexactFloat64()
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Code:          http.StatusUnprocessableEntity,
				Message:       minErr.Error(),
				MinOrderValue: &required,
			})
			return
		}

		var itErr *order.InvalidTransitionError
		if errors.As(err, &itErr) {
			writeError(w, http.StatusConflict, itErr.Error())
			return
		}

		var iqErr *order.InvalidQuantityError
		if errors.As(err, &iqErr) {
			writeError(w, http.StatusBadRequest, iqErr.Error())
			return
		}

		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
