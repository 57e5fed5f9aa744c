package models

import (
	"fmt"
	"time"

	"tix/src/types"
)

// Ticket is a concrete, individually identifiable unit issued from a line
// item once an order is finalized. The number of tickets for a line item
// never exceeds its amount; finalize creates them exactly once.
type Ticket struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	TicketOrderID uint      `json:"ticket_order_id,omitempty"`
	UserID        uint      `json:"user_id,omitempty"` // owner of the ticket
	CreatedAt     time.Time `json:"created_at,omitempty"`

	User        User        `json:"-"`
	TicketOrder TicketOrder `json:"-"`
}

// Code returns the unique admission code printed on the ticket.
func (t *Ticket) Code() string {
	return fmt.Sprintf("%09X", t.ID)
}

// Slugify returns the scannable identifier: code, issue time and owner.
func (t *Ticket) Slugify() string {
	return fmt.Sprintf("%s:%d:%d", t.Code(), t.CreatedAt.Unix(), t.UserID)
}

// QRCodeInformation returns the payload embedded in the ticket's QR code.
func (t *Ticket) QRCodeInformation() types.JSONB {
	return types.JSONB{
		"key": t.Slugify(),
	}
}
