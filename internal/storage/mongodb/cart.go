package mongodb

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltstore/storefront/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository over the carts and wishlists
// collections, one document per account.
type CartRepository struct {
	carts     *mongo.Collection
	wishlists *mongo.Collection
}

// NewCartRepository returns a CartRepository using the given database.
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		carts:     db.Collection("carts"),
		wishlists: db.Collection("wishlists"),
	}
}

type cartDoc struct {
	UserID    string        `bson:"userId"`
	Items     []cartItemDoc `bson:"items"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

type cartItemDoc struct {
	ProductID string  `bson:"productId"`
	Title     string  `bson:"title"`
	Price     float64 `bson:"price"`
	Image     string  `bson:"image,omitempty"`
	Quantity  int     `bson:"quantity"`
}

type wishlistDoc struct {
	UserID    string            `bson:"userId"`
	Items     []wishlistItemDoc `bson:"items"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type wishlistItemDoc struct {
	ProductID string  `bson:"productId"`
	Title     string  `bson:"title"`
	Price     float64 `bson:"price"`
	Image     string  `bson:"image,omitempty"`
}

// GetCart fetches the user's cart; an absent document yields an empty cart.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	var doc cartDoc
	err := r.carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &cart.Cart{UserID: userID}, nil
		}
		return nil, errors.Wrap(err, "find cart")
	}

	c := &cart.Cart{UserID: doc.UserID, UpdatedAt: doc.UpdatedAt}
	for _, item := range doc.Items {
		c.Items = append(c.Items, cart.Item{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     decimal.NewFromFloat(item.Price),
			Image:     item.Image,
			Quantity:  item.Quantity,
		})
	}
	return c, nil
}

// PutCart replaces the user's cart document, creating it when absent.
func (r *CartRepository) PutCart(ctx context.Context, c *cart.Cart) error {
	doc := cartDoc{
		UserID:    c.UserID,
		Items:     make([]cartItemDoc, len(c.Items)),
		UpdatedAt: c.UpdatedAt,
	}
	for i, item := range c.Items {
		doc.Items[i] = cartItemDoc{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price.InexactFloat64(),
			Image:     item.Image,
			Quantity:  item.Quantity,
		}
	}

	_, err := r.carts.ReplaceOne(ctx,
		bson.M{"userId": c.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(err, "replace cart")
	}
	return nil
}

// GetWishlist fetches the user's wishlist; absent yields an empty one.
func (r *CartRepository) GetWishlist(ctx context.Context, userID string) (*cart.Wishlist, error) {
	var doc wishlistDoc
	err := r.wishlists.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &cart.Wishlist{UserID: userID}, nil
		}
		return nil, errors.Wrap(err, "find wishlist")
	}

	w := &cart.Wishlist{UserID: doc.UserID, UpdatedAt: doc.UpdatedAt}
	for _, item := range doc.Items {
		w.Items = append(w.Items, cart.WishlistItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     decimal.NewFromFloat(item.Price),
			Image:     item.Image,
		})
	}
	return w, nil
}

// PutWishlist replaces the user's wishlist document, creating it when absent.
func (r *CartRepository) PutWishlist(ctx context.Context, w *cart.Wishlist) error {
	doc := wishlistDoc{
		UserID:    w.UserID,
		Items:     make([]wishlistItemDoc, len(w.Items)),
		UpdatedAt: w.UpdatedAt,
	}
	for i, item := range w.Items {
		doc.Items[i] = wishlistItemDoc{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price.InexactFloat64(),
			Image:     item.Image,
		}
	}

	_, err := r.wishlists.ReplaceOne(ctx,
		bson.M{"userId": w.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(err, "replace wishlist")
	}
	return nil
}
