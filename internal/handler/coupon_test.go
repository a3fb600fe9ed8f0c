package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltstore/storefront/internal/domain/coupon"
)

func TestValidateCoupon(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.coupons.Upsert(t.Context(), &coupon.Rule{
		Code:          "SAVE10",
		DiscountType:  coupon.DiscountPercent,
		Value:         decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(500),
		Active:        true,
	}))
	require.NoError(t, f.coupons.Upsert(t.Context(), &coupon.Rule{
		Code:         "PAUSED",
		DiscountType: coupon.DiscountFlat,
		Value:        decimal.NewFromInt(50),
		Active:       false,
	}))

	t.Run("applies percent discount", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", "alice", validateCouponRequest{
			Code: "save10", CartTotal: 1000,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[validateCouponResponse](t, rec)
		assert.Equal(t, "SAVE10", got.Code)
		assert.Equal(t, 100.0, got.DiscountAmount)
		assert.Equal(t, 900.0, got.FinalTotal)
	})

	t.Run("below minimum order", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", "alice", validateCouponRequest{
			Code: "SAVE10", CartTotal: 300,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		got := decodeBody[errorResponse](t, rec)
		require.NotNil(t, got.MinOrderValue)
		assert.Equal(t, 500.0, *got.MinOrderValue)
	})

	t.Run("inactive", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", "alice", validateCouponRequest{
			Code: "PAUSED", CartTotal: 100,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", "alice", validateCouponRequest{
			Code: "NOPE", CartTotal: 100,
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", "alice", validateCouponRequest{
			CartTotal: 100,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative cart total", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/coupons/validate", "alice", validateCouponRequest{
			Code: "SAVE10", CartTotal: -1,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
