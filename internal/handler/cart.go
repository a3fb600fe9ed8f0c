package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltstore/storefront/internal/domain/cart"
)

type cartItemJSON struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

type cartJSON struct {
	Items []cartItemJSON `json:"items"`
}

type wishlistItemJSON struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

type wishlistJSON struct {
	Items []wishlistItemJSON `json:"items"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	c, err := h.carts.GetCart(r.Context(), id.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := cartJSON{Items: make([]cartItemJSON, len(c.Items))}
	for i, item := range c.Items {
		out.Items[i] = cartItemJSON{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price.InexactFloat64(),
			Image:     item.Image,
			Quantity:  item.Quantity,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) putCart(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req cartJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := &cart.Cart{
		UserID:    id.AccountID,
		Items:     make([]cart.Item, len(req.Items)),
		UpdatedAt: time.Now(),
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "item quantity must be greater than 0")
			return
		}
		c.Items[i] = cart.Item{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     decimal.NewFromFloat(item.Price),
			Image:     item.Image,
			Quantity:  item.Quantity,
		}
	}

	if err := h.carts.PutCart(r.Context(), c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	wl, err := h.carts.GetWishlist(r.Context(), id.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := wishlistJSON{Items: make([]wishlistItemJSON, len(wl.Items))}
	for i, item := range wl.Items {
		out.Items[i] = wishlistItemJSON{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price.InexactFloat64(),
			Image:     item.Image,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) putWishlist(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req wishlistJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wl := &cart.Wishlist{
		UserID:    id.AccountID,
		Items:     make([]cart.WishlistItem, len(req.Items)),
		UpdatedAt: time.Now(),
	}
	for i, item := range req.Items {
		wl.Items[i] = cart.WishlistItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     decimal.NewFromFloat(item.Price),
			Image:     item.Image,
		}
	}

	if err := h.carts.PutWishlist(r.Context(), wl); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
