// Package fulfillment is the order status machine.
//
// There is one canonical vocabulary (pending, confirmed, shipped, delivered,
// cancelled). The dispatch labels used on the admin order board map onto it;
// see Parse and Status.Label.
package fulfillment

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the canonical order status.
type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	Shipped   Status = "shipped"
	Delivered Status = "delivered"
	Cancelled Status = "cancelled"
)

// Actor is who requests a transition.
type Actor int

const (
	// ActorCustomer is the customer who placed the order.
	ActorCustomer Actor = iota
	// ActorFulfiller is an admin or a farmer whose product is in the order.
	ActorFulfiller
)

var (
	// ErrUnknownStatus is returned by Parse.
	ErrUnknownStatus = errors.New("fulfillment: unknown status")
	// ErrIllegalTransition is returned when next is not a legal successor.
	ErrIllegalTransition = errors.New("fulfillment: illegal transition")
)

var successor = map[Status]Status{
	Pending:   Confirmed,
	Confirmed: Shipped,
	Shipped:   Delivered,
}

var labels = map[Status]string{
	Pending:   "Processing",
	Confirmed: "Order Placed",
	Shipped:   "Dispatched",
	Delivered: "Delivered",
	Cancelled: "Cancelled",
}

// adminVocabulary maps dispatch labels onto canonical statuses. In-Transit
// has no canonical state of its own and collapses into shipped.
var adminVocabulary = map[string]Status{
	"processing":   Pending,
	"order placed": Confirmed,
	"dispatched":   Shipped,
	"in-transit":   Shipped,
	"delivered":    Delivered,
	"cancelled":    Cancelled,
}

// Parse accepts a canonical status or an admin dispatch label, case-insensitive.
func Parse(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch st := Status(key); st {
	case Pending, Confirmed, Shipped, Delivered, Cancelled:
		return st, nil
	}
	if st, ok := adminVocabulary[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Label is the admin dispatch label for s.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal reports whether s admits no further transition.
func (s Status) Terminal() bool {
	return s == Delivered || s == Cancelled
}

// Next returns the single forward successor of s.
func (s Status) Next() (Status, bool) {
	n, ok := successor[s]
	return n, ok
}

// Cancellable reports whether actor may cancel an order in status s.
func (s Status) Cancellable(actor Actor) bool {
	switch actor {
	case ActorCustomer:
		return s == Pending
	case ActorFulfiller:
		return s == Pending || s == Confirmed || s == Shipped
	}
	return false
}

// Check validates from → to for actor. Customers may only cancel; fulfillers
// advance one step at a time or cancel.
func Check(from, to Status, actor Actor) error {
	if from.Terminal() {
		return fmt.Errorf("%w: order is already %s", ErrIllegalTransition, from)
	}
	if to == Cancelled {
		if from.Cancellable(actor) {
			return nil
		}
		return fmt.Errorf("%w: cannot cancel a %s order", ErrIllegalTransition, from)
	}
	if actor != ActorFulfiller {
		return fmt.Errorf("%w: customers may only cancel", ErrIllegalTransition)
	}
	if next, ok := from.Next(); ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
