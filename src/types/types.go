package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}

func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type OrderStatus string

// Order session states. An order starts in STARTED, ends up PURCHASED on a
// confirmed payment or TIMEOUT when the session expires. A timed out order
// can still become PURCHASED on a late payment confirmation. CANCELLED is
// set by the organizer.
const (
	ORDER_STARTED   OrderStatus = "started"
	ORDER_PURCHASED OrderStatus = "purchased"
	ORDER_TIMEOUT   OrderStatus = "timeout"
	ORDER_CANCELLED OrderStatus = "cancelled"
)

type Availability string

// Public availability projection of a ticket type. Always derived from
// order rows, never authoritative on its own.
const (
	TICKETTYPE_AVAILABLE Availability = "available"
	TICKETTYPE_CLAIMED   Availability = "claimed"
	TICKETTYPE_SOLD      Availability = "sold"
)

type StartOrderRequestBody struct {
	AccountID uint  `json:"account" binding:"required"`
	UserID    *uint `json:"user,omitempty"`
}

type AddTicketsRequestBody struct {
	TicketTypeID uint `json:"ticket_type" binding:"required"`
	Amount       *int `json:"amount" binding:"required"`
}

type CheckoutRequestBody struct {
	UserID   *uint  `json:"user,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type CreateTicketTypeRequestBody struct {
	Name       string  `json:"name" binding:"required"`
	Price      int64   `json:"price"`
	Currency   string  `json:"currency" binding:"required"`
	Units      int     `json:"units" binding:"required"`
	EventID    uint    `json:"event" binding:"required"`
	SalesStart *string `json:"sales_start,omitempty" binding:"omitempty,salesdate"`
	SalesEnd   *string `json:"sales_end,omitempty" binding:"omitempty,salesdate"`
	Publish    bool    `json:"publish,omitempty"`
}

type OrderKeyRequestParams struct {
	Key string `uri:"key" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}
