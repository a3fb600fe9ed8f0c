package order

import (
	"fmt"
	"time"
)

const (
	// shipAfterDays is how long an order stays in Processing before the
	// advancement rule moves it to Shipped.
	shipAfterDays = 3
	// fallbackDeliveryDays is the delivery threshold used when no
	// scheduled date is stored.
	fallbackDeliveryDays = 6
	// scheduleAheadDays is the scheduled delivery date assigned at
	// creation when the caller supplies none.
	scheduleAheadDays = 5
)

// Action names an explicit user-triggered transition.
type Action string

const (
	ActionCancel     Action = "cancel"
	ActionReturn     Action = "return"
	ActionReschedule Action = "reschedule"
)

// Transition is a requested explicit state change.
type Transition struct {
	Action  Action
	Reason  string
	NewDate time.Time
}

// InvalidTransitionError indicates the requested action is not permitted in
// the order's current status. The order is left unmodified.
type InvalidTransitionError struct {
	Action Action
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q not permitted in status %q", e.Action, e.Status)
}

// Advance applies the automatic status advancement rule to an order in
// place and reports whether anything changed. The rule is derived state on
// read: it only runs when orders are fetched, so an order that is never
// fetched past its delivery threshold never advances.
//
// Both thresholds are checked in one pass, so a sufficiently old order
// jumps from Processing straight to Delivered. Return Requested is not in
// the terminal set, so a return-requested order past its delivery date
// reverts to Delivered on the next fetch.
func Advance(o *Order, now time.Time) bool {
	if o.Status.Terminal() {
		return false
	}

	changed := false

	daysPassed := now.Sub(o.OrderDate).Hours() / 24
	if o.Status == StatusProcessing && daysPassed > shipAfterDays {
		o.Status = StatusShipped
		changed = true
	}

	if now.After(deliveryDate(o)) && o.Status != StatusDelivered {
		o.Status = StatusDelivered
		changed = true
	}

	return changed
}

// deliveryDate returns the stored scheduled date, or the fallback of
// order date plus six days when none was stored.
func deliveryDate(o *Order) time.Time {
	if o.ScheduledDate != nil {
		return *o.ScheduledDate
	}
	return o.OrderDate.Add(fallbackDeliveryDays * 24 * time.Hour)
}

// applyTransition mutates the order according to the requested action, or
// returns *InvalidTransitionError leaving the order untouched.
func applyTransition(o *Order, tr Transition, now time.Time) error {
	switch tr.Action {
	case ActionCancel:
		if o.Status == StatusDelivered {
			return &InvalidTransitionError{Action: tr.Action, Status: o.Status}
		}
		o.Status = StatusCancelled
		o.Cancellation = &Cancellation{Reason: tr.Reason, CancelledAt: now}

	case ActionReturn:
		if o.Status != StatusDelivered {
			return &InvalidTransitionError{Action: tr.Action, Status: o.Status}
		}
		o.Status = StatusReturnRequested
		o.ReturnRequest = &ReturnRequest{
			Reason:      tr.Reason,
			Status:      "Pending",
			RequestedAt: now,
		}

	case ActionReschedule:
		if o.Status.Terminal() {
			return &InvalidTransitionError{Action: tr.Action, Status: o.Status}
		}
		newDate := tr.NewDate
		o.ScheduledDate = &newDate

	default:
		return &InvalidTransitionError{Action: tr.Action, Status: o.Status}
	}

	return nil
}
