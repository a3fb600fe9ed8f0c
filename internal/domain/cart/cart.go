package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a cart line item. The product snapshot (title, price, image) is
// stored with the cart so the frontend can render it without extra lookups.
type Item struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

// Cart is the persisted cart document, one per account.
type Cart struct {
	UserID    string
	Items     []Item
	UpdatedAt time.Time
}

// WishlistItem is a saved-for-later product snapshot.
type WishlistItem struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Image     string
}

// Wishlist is the persisted wishlist document, one per account.
type Wishlist struct {
	UserID    string
	Items     []WishlistItem
	UpdatedAt time.Time
}

// Repository persists carts and wishlists keyed by owning account.
// Fetching an absent document returns an empty one rather than an error;
// Put replaces the whole document (last writer wins).
type Repository interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	PutCart(ctx context.Context, c *Cart) error
	GetWishlist(ctx context.Context, userID string) (*Wishlist, error)
	PutWishlist(ctx context.Context, w *Wishlist) error
}
