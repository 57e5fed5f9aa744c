package models

import "errors"

// Error taxonomy of the engine. All are deterministic, synchronous failures
// raised to the immediate caller; the surrounding transaction rolls back
// wholesale.
var (
	// validation
	ErrInvalidAmount = errors.New("amount must not be negative")

	// capacity
	ErrAmountNotAvailable = errors.New("not enough tickets available")

	// state
	ErrOrderLocked        = errors.New("no other tickets can be added to this order")
	ErrEmptyOrder         = errors.New("empty orders cannot be locked")
	ErrOrderNotLocked     = errors.New("only locked orders can be purchased")
	ErrOrderUserRequired  = errors.New("no user connected to the order")
	ErrInactiveTicketType = errors.New("the ticket type is not active")
	ErrTicketTypeInUse    = errors.New("ticket type is referenced by orders")

	// ownership
	ErrAccountMismatch = errors.New("ticket type belongs to another account")

	// not found
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrEventNotFound      = errors.New("the ticket type is not connected to any event")
	ErrTicketNotFound     = errors.New("ticket not found")

	// quota
	ErrSubscriptionLimit = errors.New("account has reached maximum allowed transactions")
)
