// Package status owns the order lifecycle. Every status string used in the
// system comes from this closed set, and every transition anyone attempts is
// checked against the single table below.
package status

import "github.com/orderfood/api/internal/enum"

type Status string

const (
	Pending   Status = enum.OrderStatusPending
	Confirmed Status = enum.OrderStatusConfirmed
	Preparing Status = enum.OrderStatusPreparing
	Ready     Status = enum.OrderStatusReady
	Delivered Status = enum.OrderStatusDelivered
	Cancelled Status = enum.OrderStatusCancelled
)

// allowedTransitions is the authoritative lifecycle table. Delivered and
// cancelled are terminal. Pending orders are carts; they leave pending only
// through checkout, never through the board.
var allowedTransitions = map[Status][]Status{
	Pending:   {Confirmed},
	Confirmed: {Preparing, Cancelled},
	Preparing: {Ready, Cancelled},
	Ready:     {Delivered, Cancelled},
	Delivered: {},
	Cancelled: {},
}

// IsValid reports whether s belongs to the closed status set.
func IsValid(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from s. The returned slice is a copy;
// callers may reorder or filter it.
func Next(s Status) []Status {
	allowed := allowedTransitions[s]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal reports whether no further transition exists from s.
func IsTerminal(s Status) bool {
	return IsValid(s) && len(allowedTransitions[s]) == 0
}

// Advance returns the forward (non-cancel) step from s, used by the board's
// one-tap progression. ok is false for terminal statuses.
func Advance(s Status) (Status, bool) {
	for _, next := range allowedTransitions[s] {
		if next != Cancelled {
			return next, true
		}
	}
	return s, false
}

// CanCancel reports whether an order in s may still be cancelled.
func CanCancel(s Status) bool {
	return CanTransition(s, Cancelled)
}
