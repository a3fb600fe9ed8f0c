package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltstore/storefront/internal/domain/coupon"
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by the coupons
// collection. Codes are stored uppercase.
type CouponRepository struct {
	col *mongo.Collection
}

// NewCouponRepository returns a CouponRepository using the given database.
func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{col: db.Collection("coupons")}
}

type couponDoc struct {
	Code          string     `bson:"code"`
	DiscountType  string     `bson:"discountType"`
	Value         float64    `bson:"value"`
	MinOrderValue float64    `bson:"minOrderValue"`
	Active        bool       `bson:"isActive"`
	ExpiresAt     *time.Time `bson:"expiryDate,omitempty"`
	Description   string     `bson:"description,omitempty"`
}

// FindByCode looks up a coupon by its (already normalized) code.
// Returns coupon.ErrNotFound when no document matches.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	var doc couponDoc
	err := r.col.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}

	rule := toRule(&doc)
	return &rule, nil
}

// Upsert inserts or replaces a coupon rule, keyed by code.
func (r *CouponRepository) Upsert(ctx context.Context, rule *coupon.Rule) error {
	doc := couponDoc{
		Code:          strings.ToUpper(rule.Code),
		DiscountType:  string(rule.DiscountType),
		Value:         rule.Value.InexactFloat64(),
		MinOrderValue: rule.MinOrderValue.InexactFloat64(),
		Active:        rule.Active,
		ExpiresAt:     rule.ExpiresAt,
		Description:   rule.Description,
	}

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"code": doc.Code},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrapf(err, "upsert coupon %q", rule.Code)
	}
	return nil
}

func toRule(doc *couponDoc) coupon.Rule {
	return coupon.Rule{
		Code:          doc.Code,
		DiscountType:  coupon.DiscountType(doc.DiscountType),
		Value:         decimal.NewFromFloat(doc.Value),
		MinOrderValue: decimal.NewFromFloat(doc.MinOrderValue),
		Active:        doc.Active,
		ExpiresAt:     doc.ExpiresAt,
		Description:   doc.Description,
	}
}
