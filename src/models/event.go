package models

import (
	"time"

	"tix/src/types"
)

// Event groups the ticket types an account sells. Venue and programme
// management live in an external collaborator; the engine only needs the
// owning account and the default handling fee.
type Event struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Name        string     `json:"name,omitempty"`
	AccountID   uint       `json:"account_id,omitempty"`
	HandlingFee int64      `json:"handling_fee,omitempty"` // in cents
	StartsOn    *time.Time `json:"starts_on,omitempty"`

	Account     Account      `json:"-"`
	TicketTypes []TicketType `json:"ticket_types,omitempty"`

	types.Timestamps
}
