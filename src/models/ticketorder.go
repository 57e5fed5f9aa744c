package models

import (
	"tix/src/types"
)

// TicketOrder is a line item: a requested quantity of one ticket type
// within one order. At most one line exists per (order, ticket type) pair;
// setting the amount to zero deletes the row instead of keeping it.
type TicketOrder struct {
	ID           uint `gorm:"primarykey" json:"id"`
	OrderID      uint `gorm:"uniqueIndex:idx_order_tickettype" json:"order_id,omitempty"`
	TicketTypeID uint `gorm:"uniqueIndex:idx_order_tickettype" json:"ticket_type_id,omitempty"`
	Amount       int  `json:"amount"`

	Order      Order      `json:"-"`
	TicketType TicketType `json:"ticket_type,omitempty"`
	Tickets    []Ticket   `json:"tickets,omitempty"`

	types.Timestamps
}

// Total calculates the line total in cents, handling fee included. The
// TicketType association must be loaded.
func (t *TicketOrder) Total() int64 {
	return int64(t.Amount) * t.TicketType.FullPrice()
}
