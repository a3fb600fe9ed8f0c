package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusProcessing is the initial state of every order.
	StatusProcessing Status = "Processing"
	// StatusShipped is reached automatically three days after creation.
	StatusShipped Status = "Shipped"
	// StatusDelivered is reached automatically once the delivery date passes.
	StatusDelivered Status = "Delivered"
	// StatusCancelled is set by an explicit cancel action.
	StatusCancelled Status = "Cancelled"
	// StatusReturned marks a completed return.
	StatusReturned Status = "Returned"
	// StatusReturnRequested is set when a return is requested on a
	// delivered order.
	StatusReturnRequested Status = "Return Requested"
)

// Terminal reports whether the automatic advancement rule must leave the
// order untouched. Return Requested is deliberately not terminal; see
// Advance for the consequence.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return true
	default:
		return false
	}
}

// Item is a single line item within an order.
type Item struct {
	Title    string
	Price    decimal.Decimal
	Quantity int
	Image    string
	Discount decimal.Decimal
}

// Cancellation records why and when an order was cancelled.
type Cancellation struct {
	Reason      string
	CancelledAt time.Time
}

// ReturnRequest records a pending return on a delivered order.
type ReturnRequest struct {
	Reason      string
	Status      string
	RequestedAt time.Time
}

// Address is the shipping destination captured at checkout.
type Address struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string
	Phone  string
}

// Order is the persisted order document. UserID is the owning account and
// never changes; all lookups are scoped by it.
type Order struct {
	ID            string
	UserID        string
	Items         []Item
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Status        Status
	OrderDate     time.Time
	ScheduledDate *time.Time
	TrackingID    string
	Cancellation  *Cancellation
	ReturnRequest *ReturnRequest
	PaymentMethod string
	GiftOption    string
	Insurance     bool
	DeliverySlot  string
	Address       Address
}

// Repository defines persistence operations for orders. Implementations
// must apply the owner filter on every id-based lookup and must persist
// field updates atomically per record.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// ListByUser returns the user's orders, most recent first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// GetByID returns ErrNotFound when the order does not exist or is
	// owned by a different account.
	GetByID(ctx context.Context, userID, orderID string) (*Order, error)
	// UpdateStatus persists a status change only.
	UpdateStatus(ctx context.Context, userID, orderID string, status Status) error
	// Save persists the mutable lifecycle fields (status, scheduled date,
	// cancellation, return request) in a single update.
	Save(ctx context.Context, o *Order) error
	// ListOpen returns all orders not in a terminal status, any owner.
	ListOpen(ctx context.Context) ([]Order, error)
}
