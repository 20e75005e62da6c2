// Package moderation holds the admin-controlled approval state machines for
// farmer accounts and for land and product listings.
package moderation

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an action is not defined for the
// current state.
var ErrInvalidTransition = errors.New("moderation: invalid transition")

// ErrUnknownAction is returned for an action name outside the machine.
var ErrUnknownAction = errors.New("moderation: unknown action")

// ─── Farmer accounts ──────────────────────────────────────────────────────────

// AccountStatus is the status of a user account. Customers and admins are
// always active; farmers move through the machine below.
type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountRejected  AccountStatus = "rejected"
)

// FarmerAction names an admin action on a farmer account.
type FarmerAction string

const (
	Verify     FarmerAction = "verify"
	Reject     FarmerAction = "reject"
	Suspend    FarmerAction = "suspend"
	Reactivate FarmerAction = "reactivate"
)

var farmerEdges = map[AccountStatus]map[FarmerAction]AccountStatus{
	AccountPending:   {Verify: AccountActive, Reject: AccountRejected},
	AccountActive:    {Suspend: AccountSuspended},
	AccountSuspended: {Reactivate: AccountActive},
	// rejected is terminal; re-registration is the only way back.
}

// ParseFarmerAction validates an action name.
func ParseFarmerAction(s string) (FarmerAction, error) {
	switch a := FarmerAction(s); a {
	case Verify, Reject, Suspend, Reactivate:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// NextAccountStatus applies action to from.
func NextAccountStatus(from AccountStatus, action FarmerAction) (AccountStatus, error) {
	to, ok := farmerEdges[from][action]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s a %s farmer", ErrInvalidTransition, action, from)
	}
	return to, nil
}

// Terminal reports whether no action leads out of s.
func (s AccountStatus) Terminal() bool {
	return len(farmerEdges[s]) == 0
}

// CanList reports whether a farmer in this status may create land and products.
func (s AccountStatus) CanList() bool {
	return s == AccountActive
}

// ─── Listings (land and products) ─────────────────────────────────────────────

// ListingStatus is the moderation status of a land or product listing.
// The approved flag exposed to clients is derived from it, never stored.
type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

// ListingAction names an admin action on a listing.
type ListingAction string

const (
	Approve    ListingAction = "approve"
	RejectItem ListingAction = "reject"
	SetPending ListingAction = "pending"
)

// ParseListingAction validates an action name.
func ParseListingAction(s string) (ListingAction, error) {
	switch a := ListingAction(s); a {
	case Approve, RejectItem, SetPending:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// NextListingStatus applies action. Every action is allowed from every state
// so listings can be re-moderated.
func NextListingStatus(_ ListingStatus, action ListingAction) (ListingStatus, error) {
	switch action {
	case Approve:
		return ListingApproved, nil
	case RejectItem:
		return ListingRejected, nil
	case SetPending:
		return ListingPending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// IsApproved is the derived approval flag.
func (s ListingStatus) IsApproved() bool {
	return s == ListingApproved
}

// IsListed reports whether a product and its land are both approved. A
// listed product that fails IsOrderable is out of stock.
func IsListed(product, land ListingStatus) bool {
	return product.IsApproved() && land.IsApproved()
}

// IsOrderable reports whether a product can be added to a cart or ordered:
// the product and its land are approved and there is stock left.
func IsOrderable(product ListingStatus, stock int, land ListingStatus) bool {
	return IsListed(product, land) && stock > 0
}
