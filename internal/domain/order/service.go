package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Sentinel errors for order operations.
var (
	// ErrNotFound is returned when no order matches the owner and id.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyItems is returned when an order is created without items.
	ErrEmptyItems = errors.New("items required")
	// ErrNegativeAmount is returned when a monetary field is negative.
	ErrNegativeAmount = errors.New("monetary fields must be non-negative")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	Title string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %q", e.Title)
}

// trackingPrefix is the fixed prefix of generated tracking ids.
const trackingPrefix = "TRK"

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	Items         []Item
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Tax           decimal.Decimal
	PaymentMethod string
	GiftOption    string
	Insurance     bool
	DeliverySlot  string
	Address       Address
	ScheduledDate *time.Time
}

// Service encapsulates order creation and lifecycle logic.
type Service struct {
	orders   Repository
	now      func() time.Time
	advanced metric.Int64Counter
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders, now: time.Now}
}

// WithAdvancedCounter sets a counter incremented once per auto-advanced
// order. A nil counter disables the metric.
func (s *Service) WithAdvancedCounter(c metric.Int64Counter) *Service {
	s.advanced = c
	return s
}

// Create validates the request and persists a new order with a server
// assigned id, tracking id, order date and default scheduled date.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{Title: item.Title}
		}
		if item.Price.IsNegative() {
			return nil, ErrNegativeAmount
		}
	}
	if req.Subtotal.IsNegative() || req.Shipping.IsNegative() || req.Tax.IsNegative() {
		return nil, ErrNegativeAmount
	}

	now := s.now()
	scheduled := req.ScheduledDate
	if scheduled == nil {
		d := now.Add(scheduleAheadDays * 24 * time.Hour)
		scheduled = &d
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Shipping:      req.Shipping,
		Tax:           req.Tax,
		Total:         req.Subtotal.Add(req.Shipping).Add(req.Tax),
		Status:        StatusProcessing,
		OrderDate:     now,
		ScheduledDate: scheduled,
		TrackingID:    newTrackingID(),
		PaymentMethod: req.PaymentMethod,
		GiftOption:    req.GiftOption,
		Insurance:     req.Insurance,
		DeliverySlot:  req.DeliverySlot,
		Address:       req.Address,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// ListForOwner returns the user's orders, most recent first, with the
// automatic advancement rule applied. Each advancement is persisted
// immediately; when anything advanced the list is reloaded so the caller
// observes fully consistent post-mutation state.
func (s *Service) ListForOwner(ctx context.Context, userID string) ([]Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	now := s.now()
	anyAdvanced := false
	for i := range list {
		if !Advance(&list[i], now) {
			continue
		}
		if err := s.orders.UpdateStatus(ctx, userID, list[i].ID, list[i].Status); err != nil {
			return nil, errors.Wrapf(err, "advance order %s", list[i].ID)
		}
		anyAdvanced = true
		s.countAdvanced(ctx, list[i].Status)
	}

	if anyAdvanced {
		list, err = s.orders.ListByUser(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "reload orders")
		}
	}

	return list, nil
}

// Apply performs an explicit transition on the order identified by owner
// and id. On precondition violation the order is left unmodified and an
// *InvalidTransitionError is returned; on success all mutated fields are
// persisted in one update.
func (s *Service) Apply(ctx context.Context, userID, orderID string, tr Transition) (*Order, error) {
	o, err := s.orders.GetByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}

	if err := applyTransition(o, tr, s.now()); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, errors.Wrap(err, "save order")
	}

	return o, nil
}

// AdvanceAll runs one advancement pass over every open order and returns
// how many advanced. Used by the optional background sweep; the fetch-time
// pass in ListForOwner remains the primary mechanism.
func (s *Service) AdvanceAll(ctx context.Context) (int, error) {
	open, err := s.orders.ListOpen(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list open orders")
	}

	now := s.now()
	count := 0
	for i := range open {
		if !Advance(&open[i], now) {
			continue
		}
		if err := s.orders.UpdateStatus(ctx, open[i].UserID, open[i].ID, open[i].Status); err != nil {
			return count, errors.Wrapf(err, "advance order %s", open[i].ID)
		}
		count++
		s.countAdvanced(ctx, open[i].Status)
	}

	return count, nil
}

func (s *Service) countAdvanced(ctx context.Context, to Status) {
	if s.advanced != nil {
		s.advanced.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(to))))
	}
}

// newTrackingID generates a tracking id: a fixed 3-letter prefix followed
// by a 6-digit number.
func newTrackingID() string {
	return fmt.Sprintf("%s%06d", trackingPrefix, rand.IntN(1_000_000))
}
