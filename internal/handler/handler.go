// Package handler exposes the storefront API over HTTP. Handlers are thin:
// they decode requests, delegate to the domain services and repositories,
// and map domain errors to HTTP responses.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voltstore/storefront/internal/domain/auth"
	"github.com/voltstore/storefront/internal/domain/cart"
	"github.com/voltstore/storefront/internal/domain/coupon"
	"github.com/voltstore/storefront/internal/domain/order"
	"github.com/voltstore/storefront/internal/domain/product"
	"github.com/voltstore/storefront/internal/domain/user"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string

	// ExposeResetTokens returns password reset tokens in the API
	// response instead of delivering them out of band. Debug aid for
	// non-production environments only; defeats the purpose of the
	// reset flow when enabled in production.
	ExposeResetTokens bool
}

// Handler implements the storefront HTTP API.
type Handler struct {
	cfg      Config
	products product.Repository
	carts    cart.Repository
	coupons  *coupon.Evaluator
	orders   *order.Service
	users    *user.Service
	tokens   auth.Tokens
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	carts cart.Repository,
	coupons *coupon.Evaluator,
	orders *order.Service,
	users *user.Service,
	tokens auth.Tokens,
) *Handler {
	return &Handler{
		cfg:      cfg,
		products: products,
		carts:    carts,
		coupons:  coupons,
		orders:   orders,
		users:    users,
		tokens:   tokens,
	}
}

// Routes builds the API router. Everything under the authenticated group
// requires a valid bearer token.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/reset-password", h.resetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/cart", h.getCart)
		r.Put("/cart", h.putCart)
		r.Get("/wishlist", h.getWishlist)
		r.Put("/wishlist", h.putWishlist)

		r.Post("/coupons/validate", h.validateCoupon)

		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Patch("/orders/{id}", h.updateOrder)
	})

	return r
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.cfg.ImageBaseURL == "" || path == "" {
		return path
	}
	return h.cfg.ImageBaseURL + "/" + path
}
