package models

import (
	"tix/src/types"
)

// User is the purchasing side. Identity management is an external
// collaborator; the engine stores only what ticket issuing and mail
// delivery need.
type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`

	Orders  []Order  `json:"orders,omitempty"`
	Tickets []Ticket `json:"tickets,omitempty"`

	types.Timestamps
}
