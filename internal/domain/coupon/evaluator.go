package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluator validates a coupon code against a cart total and computes the
// resulting discount. Evaluation never mutates the coupon record: there is
// no redemption counting or single-use enforcement.
type Evaluator struct {
	repo Repository
	now  func() time.Time
}

// NewEvaluator creates an Evaluator backed by the given Repository.
func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo, now: time.Now}
}

// Evaluate normalizes the code, looks up the rule, checks eligibility and
// returns the computed quote. Failures are reported as ErrNotFound,
// ErrInactive, ErrExpired or *MinimumOrderError.
func (e *Evaluator) Evaluate(ctx context.Context, code string, cartTotal decimal.Decimal) (*Quote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	rule, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	now := e.now()

	if !rule.Active {
		return nil, ErrInactive
	}
	if rule.ExpiresAt != nil && now.After(*rule.ExpiresAt) {
		return nil, ErrExpired
	}
	if cartTotal.LessThan(rule.MinOrderValue) {
		return nil, &MinimumOrderError{Required: rule.MinOrderValue}
	}

	discount, err := Apply(rule, cartTotal)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Code:       rule.Code,
		Discount:   discount,
		FinalTotal: cartTotal.Sub(discount),
	}, nil
}

// Apply computes the raw discount for a rule against a cart total, clamped
// so the discount never exceeds the total (final amount stays >= 0).
func Apply(rule *Rule, cartTotal decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch rule.DiscountType {
	case DiscountPercent:
		amount = cartTotal.Mul(rule.Value).Div(hundred)
	case DiscountFlat:
		amount = rule.Value
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", rule.DiscountType)
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	// Discount can never exceed the cart total.
	amount = decimal.Min(amount, cartTotal)

	return amount.Round(2), nil
}
