package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/voltstore/storefront/internal/domain/order"
)

type orderItemJSON struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
	Discount float64 `json:"discount"`
}

type addressJSON struct {
	Name   string `json:"name,omitempty"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type createOrderRequest struct {
	Items         []orderItemJSON `json:"items"`
	Subtotal      float64         `json:"subtotal"`
	Shipping      float64         `json:"shipping"`
	Tax           float64         `json:"tax"`
	PaymentMethod string          `json:"paymentMethod"`
	GiftOption    string          `json:"giftOption,omitempty"`
	Insurance     bool            `json:"insurance,omitempty"`
	DeliverySlot  string          `json:"deliverySlot,omitempty"`
	Address       addressJSON     `json:"address"`
	ScheduledDate *time.Time      `json:"scheduledDate,omitempty"`
}

type updateOrderRequest struct {
	Action  string     `json:"action"`
	Reason  string     `json:"reason,omitempty"`
	NewDate *time.Time `json:"newDate,omitempty"`
}

type cancellationJSON struct {
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

type returnRequestJSON struct {
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

type orderResponse struct {
	ID            string             `json:"id"`
	Items         []orderItemJSON    `json:"items"`
	Subtotal      float64            `json:"subtotal"`
	Shipping      float64            `json:"shipping"`
	Tax           float64            `json:"tax"`
	Total         float64            `json:"total"`
	Status        string             `json:"status"`
	OrderDate     time.Time          `json:"orderDate"`
	ScheduledDate *time.Time         `json:"scheduledDate,omitempty"`
	TrackingID    string             `json:"trackingId"`
	Cancellation  *cancellationJSON  `json:"cancellation,omitempty"`
	ReturnRequest *returnRequestJSON `json:"returnRequest,omitempty"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	GiftOption    string             `json:"giftOption,omitempty"`
	Insurance     bool               `json:"insurance,omitempty"`
	DeliverySlot  string             `json:"deliverySlot,omitempty"`
	Address       addressJSON        `json:"address"`
}

// listOrders returns the caller's orders, most recent first. Listing runs
// the automatic advancement pass first, so statuses reflect elapsed time.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	list, err := h.orders.ListForOwner(r.Context(), id.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(list))
	for i := range list {
		out[i] = h.toOrderResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.Item{
			Title:    item.Title,
			Price:    decimal.NewFromFloat(item.Price),
			Quantity: item.Quantity,
			Image:    item.Image,
			Discount: decimal.NewFromFloat(item.Discount),
		}
	}

	o, err := h.orders.Create(r.Context(), id.AccountID, order.CreateRequest{
		Items:         items,
		Subtotal:      decimal.NewFromFloat(req.Subtotal),
		Shipping:      decimal.NewFromFloat(req.Shipping),
		Tax:           decimal.NewFromFloat(req.Tax),
		PaymentMethod: req.PaymentMethod,
		GiftOption:    req.GiftOption,
		Insurance:     req.Insurance,
		DeliverySlot:  req.DeliverySlot,
		Address: order.Address{
			Name:   req.Address.Name,
			Street: req.Address.Street,
			City:   req.Address.City,
			State:  req.Address.State,
			Zip:    req.Address.Zip,
			Phone:  req.Address.Phone,
		},
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toOrderResponse(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	tr := order.Transition{
		Action: order.Action(req.Action),
		Reason: req.Reason,
	}
	if tr.Action == order.ActionReschedule {
		if req.NewDate == nil {
			writeError(w, http.StatusBadRequest, "newDate is required for reschedule")
			return
		}
		tr.NewDate = *req.NewDate
	}

	o, err := h.orders.Apply(r.Context(), id.AccountID, chi.URLParam(r, "id"), tr)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

func (h *Handler) toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Items:         make([]orderItemJSON, len(o.Items)),
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
		Address: addressJSON{
			Name:   o.Address.Name,
			Street: o.Address.Street,
			City:   o.Address.City,
			State:  o.Address.State,
			Zip:    o.Address.Zip,
			Phone:  o.Address.Phone,
		},
	}

	for i, item := range o.Items {
		resp.Items[i] = orderItemJSON{
			Title:    item.Title,
			Price:    item.Price.InexactFloat64(),
			Quantity: item.Quantity,
			Image:    h.imageURL(item.Image),
			Discount: item.Discount.InexactFloat64(),
		}
	}

	if o.Cancellation != nil {
		resp.Cancellation = &cancellationJSON{
			Reason:      o.Cancellation.Reason,
			CancelledAt: o.Cancellation.CancelledAt,
		}
	}
	if o.ReturnRequest != nil {
		resp.ReturnRequest = &returnRequestJSON{
			Reason:      o.ReturnRequest.Reason,
			Status:      o.ReturnRequest.Status,
			RequestedAt: o.ReturnRequest.RequestedAt,
		}
	}

	return resp
}
