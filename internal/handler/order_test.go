package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	f := newFixture(t, Config{})

	req := createOrderRequest{
		Items: []orderItemJSON{
			{Title: "Desk Lamp", Price: 39.99, Quantity: 2},
		},
		Subtotal:      79.98,
		Shipping:      5,
		Tax:           6.8,
		PaymentMethod: "card",
		Address:       addressJSON{Name: "Alice", City: "Springfield"},
	}

	rec := f.do(t, http.MethodPost, "/orders", "alice", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeBody[orderResponse](t, rec)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Processing", got.Status)
	assert.Regexp(t, regexp.MustCompile(`^TRK\d{6}$`), got.TrackingID)
	assert.InDelta(t, 91.78, got.Total, 0.001)
	require.NotNil(t, got.ScheduledDate)
	assert.WithinDuration(t, time.Now().Add(5*24*time.Hour), *got.ScheduledDate, time.Minute)

	// The stored order belongs to the authenticated account.
	stored, err := f.orders.GetByID(t.Context(), "alice", got.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.UserID)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		name string
		req  createOrderRequest
	}{
		{
			name: "no items",
			req:  createOrderRequest{Subtotal: 10},
		},
		{
			name: "zero quantity",
			req: createOrderRequest{
				Items: []orderItemJSON{{Title: "Lamp", Price: 10, Quantity: 0}},
			},
		},
		{
			name: "negative subtotal",
			req: createOrderRequest{
				Items:    []orderItemJSON{{Title: "Lamp", Price: 10, Quantity: 1}},
				Subtotal: -1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/orders", "alice", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListOrders(t *testing.T) {
	f := newFixture(t, Config{})

	for _, account := range []string{"alice", "alice", "bob"} {
		rec := f.do(t, http.MethodPost, "/orders", account, createOrderRequest{
			Items: []orderItemJSON{{Title: "Lamp", Price: 10, Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/orders", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[[]orderResponse](t, rec)
	require.Len(t, got, 2)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture(t, Config{})

	create := func(t *testing.T, account string) orderResponse {
		t.Helper()
		rec := f.do(t, http.MethodPost, "/orders", account, createOrderRequest{
			Items: []orderItemJSON{{Title: "Lamp", Price: 10, Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		return decodeBody[orderResponse](t, rec)
	}

	t.Run("cancel", func(t *testing.T) {
		o := create(t, "alice")

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "alice", updateOrderRequest{
			Action: "cancel", Reason: "changed my mind",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[orderResponse](t, rec)
		assert.Equal(t, "Cancelled", got.Status)
		require.NotNil(t, got.Cancellation)
		assert.Equal(t, "changed my mind", got.Cancellation.Reason)
	})

	t.Run("reschedule", func(t *testing.T) {
		o := create(t, "alice")
		newDate := time.Now().Add(10 * 24 * time.Hour).UTC().Truncate(time.Second)

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "alice", updateOrderRequest{
			Action: "reschedule", NewDate: &newDate,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[orderResponse](t, rec)
		require.NotNil(t, got.ScheduledDate)
		assert.True(t, got.ScheduledDate.Equal(newDate))
	})

	t.Run("reschedule without date", func(t *testing.T) {
		o := create(t, "alice")

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "alice", updateOrderRequest{
			Action: "reschedule",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("return before delivery", func(t *testing.T) {
		o := create(t, "alice")

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "alice", updateOrderRequest{
			Action: "return", Reason: "damaged",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		o := create(t, "alice")

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "alice", updateOrderRequest{
			Action: "teleport",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing action", func(t *testing.T) {
		o := create(t, "alice")

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "alice", updateOrderRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("other user's order", func(t *testing.T) {
		o := create(t, "alice")

		rec := f.do(t, http.MethodPatch, "/orders/"+o.ID, "bob", updateOrderRequest{
			Action: "cancel",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
