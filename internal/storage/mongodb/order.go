package mongodb

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltstore/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by the orders
// collection. Every id-based filter includes the owner, so an order can
// never be read or mutated across accounts.
type OrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository returns an OrderRepository using the given database.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection("orders")}
}

type orderDoc struct {
	ID            string             `bson:"_id"`
	UserID        string             `bson:"userId"`
	Items         []orderItemDoc     `bson:"items"`
	Subtotal      float64            `bson:"subtotal"`
	Shipping      float64            `bson:"shipping"`
	Tax           float64            `bson:"tax"`
	Total         float64            `bson:"total"`
	Status        string             `bson:"status"`
	OrderDate     time.Time          `bson:"orderDate"`
	ScheduledDate *time.Time         `bson:"scheduledDate,omitempty"`
	TrackingID    string             `bson:"trackingId"`
	Cancellation  *cancellationDoc   `bson:"cancellation,omitempty"`
	ReturnRequest *returnRequestDoc  `bson:"returnRequest,omitempty"`
	PaymentMethod string             `bson:"paymentMethod,omitempty"`
	GiftOption    string             `bson:"giftOption,omitempty"`
	Insurance     bool               `bson:"insurance"`
	DeliverySlot  string             `bson:"deliverySlot,omitempty"`
	Address       addressDoc         `bson:"address"`
}

type orderItemDoc struct {
	Title    string  `bson:"title"`
	Price    float64 `bson:"price"`
	Quantity int     `bson:"quantity"`
	Image    string  `bson:"image,omitempty"`
	Discount float64 `bson:"discount"`
}

type cancellationDoc struct {
	Reason      string    `bson:"reason"`
	CancelledAt time.Time `bson:"cancelledAt"`
}

type returnRequestDoc struct {
	Reason      string    `bson:"reason"`
	Status      string    `bson:"status"`
	RequestedAt time.Time `bson:"requestedAt"`
}

type addressDoc struct {
	Name   string `bson:"name,omitempty"`
	Street string `bson:"street,omitempty"`
	City   string `bson:"city,omitempty"`
	State  string `bson:"state,omitempty"`
	Zip    string `bson:"zip,omitempty"`
	Phone  string `bson:"phone,omitempty"`
}

// Create persists a new order document.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if _, err := r.col.InsertOne(ctx, toOrderDoc(o)); err != nil {
		return errors.Wrapf(err, "insert order %s", o.ID)
	}
	return nil
}

// ListByUser returns the user's orders, most recent first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	return decodeOrders(ctx, cur)
}

// GetByID returns order.ErrNotFound when no document matches both the id
// and the owner.
func (r *OrderRepository) GetByID(ctx context.Context, userID, orderID string) (*order.Order, error) {
	var doc orderDoc
	err := r.col.FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find order %s", orderID)
	}

	o := toOrder(&doc)
	return &o, nil
}

// UpdateStatus persists a status change only.
func (r *OrderRepository) UpdateStatus(ctx context.Context, userID, orderID string, status order.Status) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": orderID, "userId": userID},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return errors.Wrapf(err, "update order %s status", orderID)
	}
	if res.MatchedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Save persists the mutable lifecycle fields in a single update.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	set := bson.M{"status": string(o.Status)}
	unset := bson.M{}

	if o.ScheduledDate != nil {
		set["scheduledDate"] = *o.ScheduledDate
	}
	if o.Cancellation != nil {
		set["cancellation"] = cancellationDoc{
			Reason:      o.Cancellation.Reason,
			CancelledAt: o.Cancellation.CancelledAt,
		}
	} else {
		unset["cancellation"] = ""
	}
	if o.ReturnRequest != nil {
		set["returnRequest"] = returnRequestDoc{
			Reason:      o.ReturnRequest.Reason,
			Status:      o.ReturnRequest.Status,
			RequestedAt: o.ReturnRequest.RequestedAt,
		}
	} else {
		unset["returnRequest"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": o.ID, "userId": o.UserID}, update)
	if err != nil {
		return errors.Wrapf(err, "save order %s", o.ID)
	}
	if res.MatchedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListOpen returns all orders not in a terminal status, any owner.
func (r *OrderRepository) ListOpen(ctx context.Context) ([]order.Order, error) {
	terminal := []string{
		string(order.StatusDelivered),
		string(order.StatusCancelled),
		string(order.StatusReturned),
	}
	cur, err := r.col.Find(ctx, bson.M{"status": bson.M{"$nin": terminal}})
	if err != nil {
		return nil, errors.Wrap(err, "find open orders")
	}
	return decodeOrders(ctx, cur)
}

func decodeOrders(ctx context.Context, cur *mongo.Cursor) ([]order.Order, error) {
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}

	out := make([]order.Order, len(docs))
	for i := range docs {
		out[i] = toOrder(&docs[i])
	}
	return out, nil
}

func toOrderDoc(o *order.Order) *orderDoc {
	doc := &orderDoc{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         make([]orderItemDoc, len(o.Items)),
		Subtotal:      o.Subtotal.InexactFloat64(),
		Shipping:      o.Shipping.InexactFloat64(),
		Tax:           o.Tax.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		Status:        string(o.Status),
		OrderDate:     o.OrderDate,
		ScheduledDate: o.ScheduledDate,
		TrackingID:    o.TrackingID,
		PaymentMethod: o.PaymentMethod,
		GiftOption:    o.GiftOption,
		Insurance:     o.Insurance,
		DeliverySlot:  o.DeliverySlot,
		Address: addressDoc{
			Name:   o.Address.Name,
			Street: o.Address.Street,
			City:   o.Address.City,
			State:  o.Address.State,
			Zip:    o.Address.Zip,
			Phone:  o.Address.Phone,
		},
	}

	for i, item := range o.Items {
		doc.Items[i] = orderItemDoc{
			Title:    item.Title,
			Price:    item.Price.InexactFloat64(),
			Quantity: item.Quantity,
			Image:    item.Image,
			Discount: item.Discount.InexactFloat64(),
		}
	}

	if o.Cancellation != nil {
		doc.Cancellation = &cancellationDoc{
			Reason:      o.Cancellation.Reason,
			CancelledAt: o.Cancellation.CancelledAt,
		}
	}
	if o.ReturnRequest != nil {
		doc.ReturnRequest = &returnRequestDoc{
			Reason:      o.ReturnRequest.Reason,
			Status:      o.ReturnRequest.Status,
			RequestedAt: o.ReturnRequest.RequestedAt,
		}
	}

	return doc
}

func toOrder(doc *orderDoc) order.Order {
	o := order.Order{
		ID:            doc.ID,
		UserID:        doc.UserID,
		Items:         make([]order.Item, len(doc.Items)),
		Subtotal:      decimal.NewFromFloat(doc.Subtotal),
		Shipping:      decimal.NewFromFloat(doc.Shipping),
		Tax:           decimal.NewFromFloat(doc.Tax),
		Total:         decimal.NewFromFloat(doc.Total),
		Status:        order.Status(doc.Status),
		OrderDate:     doc.OrderDate,
		ScheduledDate: doc.ScheduledDate,
		TrackingID:    doc.TrackingID,
		PaymentMethod: doc.PaymentMethod,
		GiftOption:    doc.GiftOption,
		Insurance:     doc.Insurance,
		DeliverySlot:  doc.DeliverySlot,
		Address: order.Address{
			Name:   doc.Address.Name,
			Street: doc.Address.Street,
			City:   doc.Address.City,
			State:  doc.Address.State,
			Zip:    doc.Address.Zip,
			Phone:  doc.Address.Phone,
		},
	}

	for i, item := range doc.Items {
		o.Items[i] = order.Item{
			Title:    item.Title,
			Price:    decimal.NewFromFloat(item.Price),
			Quantity: item.Quantity,
			Image:    item.Image,
			Discount: decimal.NewFromFloat(item.Discount),
		}
	}

	if doc.Cancellation != nil {
		o.Cancellation = &order.Cancellation{
			Reason:      doc.Cancellation.Reason,
			CancelledAt: doc.Cancellation.CancelledAt,
		}
	}
	if doc.ReturnRequest != nil {
		o.ReturnRequest = &order.ReturnRequest{
			Reason:      doc.ReturnRequest.Reason,
			Status:      doc.ReturnRequest.Status,
			RequestedAt: doc.ReturnRequest.RequestedAt,
		}
	}

	return o
}
