package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercent applies a percentage of the cart total (value 0-100).
	DiscountPercent DiscountType = "percent"
	// DiscountFlat subtracts a fixed amount, capped at the cart total.
	DiscountFlat DiscountType = "flat"
)

// Sentinel errors for coupon evaluation.
var (
	// ErrNotFound is returned when no coupon exists for the given code.
	ErrNotFound = errors.New("coupon not found")
	// ErrInactive is returned when the coupon exists but is switched off.
	ErrInactive = errors.New("coupon is not active")
	// ErrExpired is returned when the coupon's expiry date has passed.
	ErrExpired = errors.New("coupon expired")
)

// MinimumOrderError indicates the cart total is below the coupon's floor.
// It carries the required minimum so callers can render it.
type MinimumOrderError struct {
	Required decimal.Decimal
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("cart total below coupon minimum of %s", e.Required)
}

// Rule is a persisted coupon definition. Codes are stored uppercase;
// lookups normalize before querying.
type Rule struct {
	Code          string
	DiscountType  DiscountType
	Value         decimal.Decimal
	MinOrderValue decimal.Decimal
	Active        bool
	ExpiresAt     *time.Time
	Description   string
}

// Quote is the result of a successful coupon evaluation.
type Quote struct {
	Code       string
	Discount   decimal.Decimal
	FinalTotal decimal.Decimal
}

// Repository provides lookup and seeding of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	Upsert(ctx context.Context, rule *Rule) error
}
