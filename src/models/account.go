package models

import (
	"tix/src/types"
)

// Account is the selling organization. TransactionsPerMonth carries the
// subscription plan's paid-transaction quota; nil means unlimited.
type Account struct {
	ID                   uint   `gorm:"primarykey" json:"id"`
	Name                 string `json:"name,omitempty"`
	Email                string `json:"email,omitempty"`
	TransactionsPerMonth *int   `json:"transactions_per_month,omitempty"`

	Events []Event `json:"events,omitempty"`

	types.Timestamps
}
