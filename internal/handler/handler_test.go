package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voltstore/storefront/internal/domain/auth"
	"github.com/voltstore/storefront/internal/domain/cart"
	"github.com/voltstore/storefront/internal/domain/coupon"
	"github.com/voltstore/storefront/internal/domain/order"
	"github.com/voltstore/storefront/internal/domain/product"
	"github.com/voltstore/storefront/internal/domain/user"
)

// stubTokens signs tokens of the form "token-<account id>" so tests can
// authenticate as any account without real JWT plumbing.
type stubTokens struct{}

func (stubTokens) Sign(id auth.Identity) (string, error) {
	return "token-" + id.AccountID, nil
}

func (stubTokens) Verify(token string) (*auth.Identity, error) {
	account, ok := strings.CutPrefix(token, "token-")
	if !ok || account == "" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{AccountID: account, Email: account + "@example.com"}, nil
}

type memProducts struct {
	items map[string]product.Product
}

func newMemProducts() *memProducts {
	return &memProducts{items: make(map[string]product.Product)}
}

func (m *memProducts) List(context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) Upsert(_ context.Context, p *product.Product) error {
	m.items[p.ID] = *p
	return nil
}

type memCoupons struct {
	rules map[string]coupon.Rule
}

func newMemCoupons() *memCoupons {
	return &memCoupons{rules: make(map[string]coupon.Rule)}
}

func (m *memCoupons) FindByCode(_ context.Context, code string) (*coupon.Rule, error) {
	r, ok := m.rules[code]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return &r, nil
}

func (m *memCoupons) Upsert(_ context.Context, r *coupon.Rule) error {
	m.rules[r.Code] = *r
	return nil
}

type memOrders struct {
	byID map[string]*order.Order
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[string]*order.Order)}
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *memOrders) GetByID(_ context.Context, userID, orderID string) (*order.Order, error) {
	o, ok := m.byID[orderID]
	if !ok || o.UserID != userID {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, userID, orderID string, status order.Status) error {
	o, ok := m.byID[orderID]
	if !ok || o.UserID != userID {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *memOrders) Save(_ context.Context, o *order.Order) error {
	stored, ok := m.byID[o.ID]
	if !ok || stored.UserID != o.UserID {
		return order.ErrNotFound
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) ListOpen(context.Context) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memUsers struct {
	byID map[string]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*user.User)}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	u, ok := m.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expires
	return nil
}

func (m *memUsers) FindByResetToken(_ context.Context, token string) (*user.User, error) {
	for _, u := range m.byID {
		if u.ResetToken != nil && *u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpires = nil
	return nil
}

type memCarts struct {
	carts     map[string]cart.Cart
	wishlists map[string]cart.Wishlist
}

func newMemCarts() *memCarts {
	return &memCarts{
		carts:     make(map[string]cart.Cart),
		wishlists: make(map[string]cart.Wishlist),
	}
}

func (m *memCarts) GetCart(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return &cart.Cart{UserID: userID, Items: []cart.Item{}}, nil
	}
	return &c, nil
}

func (m *memCarts) PutCart(_ context.Context, c *cart.Cart) error {
	m.carts[c.UserID] = *c
	return nil
}

func (m *memCarts) GetWishlist(_ context.Context, userID string) (*cart.Wishlist, error) {
	w, ok := m.wishlists[userID]
	if !ok {
		return &cart.Wishlist{UserID: userID, Items: []cart.WishlistItem{}}, nil
	}
	return &w, nil
}

func (m *memCarts) PutWishlist(_ context.Context, w *cart.Wishlist) error {
	m.wishlists[w.UserID] = *w
	return nil
}

// fixture bundles the handler under test with its backing stores.
type fixture struct {
	handler  http.Handler
	products *memProducts
	coupons  *memCoupons
	orders   *memOrders
	users    *memUsers
	carts    *memCarts
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	f := &fixture{
		products: newMemProducts(),
		coupons:  newMemCoupons(),
		orders:   newMemOrders(),
		users:    newMemUsers(),
		carts:    newMemCarts(),
	}

	h := New(
		cfg,
		f.products,
		f.carts,
		coupon.NewEvaluator(f.coupons),
		order.NewService(f.orders),
		user.NewService(f.users, stubTokens{}),
		stubTokens{},
	)
	f.handler = h.Routes()
	return f
}

// do performs a request against the handler and returns the recorder. A
// non-empty account authenticates the request as that account.
func (f *fixture) do(t *testing.T, method, path, account string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if account != "" {
		req.Header.Set("Authorization", "Bearer token-"+account)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing token", header: "", want: http.StatusUnauthorized},
		{name: "malformed header", header: "token-alice", want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer garbage", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer token-alice", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}
