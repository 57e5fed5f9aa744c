package models

import (
	"log"
	"time"

	"tix/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// TicketType is a sellable product with a fixed unit capacity belonging to
// an event.
//
// Units is immutable capacity, not a live counter. How many units are
// reserved or sold is always derived from the order rows at call time; the
// stored Availability enum is only the public projection maintained by
// UpdateAvailability.
type TicketType struct {
	ID            uint               `gorm:"primarykey" json:"id"`
	Name          string             `json:"name,omitempty"`
	Slug          string             `json:"slug,omitempty"`
	Price         int64              `json:"price"` // in cents
	HandlingFee   *int64             `json:"handling_fee,omitempty"` // in cents, nil inherits from event
	Currency      string             `json:"currency,omitempty"`
	Units         int                `json:"units"`
	MinUnitsOrder int                `json:"min_units_order,omitempty"`
	MaxUnitsOrder int                `json:"max_units_order,omitempty"`
	SalesStart    *time.Time         `json:"sales_start,omitempty"`
	SalesEnd      *time.Time         `json:"sales_end,omitempty"`
	IsActive      bool               `json:"is_active"`
	Availability  types.Availability `gorm:"default:'available'" json:"availability,omitempty"`
	EventID       uint               `json:"event_id,omitempty"`

	Event Event `json:"event,omitempty"`

	types.Timestamps
}

func NewTicketType(name string, price int64, currency string, units int, eventID uint) *TicketType {
	return &TicketType{
		Name:         name,
		Slug:         slug.Make(name),
		Price:        price,
		Currency:     currency,
		Units:        units,
		EventID:      eventID,
		IsActive:     false,
		Availability: types.TICKETTYPE_AVAILABLE,
	}
}

// Publish sets the ticket type as active.
func (t *TicketType) Publish(tx *gorm.DB) error {
	log.Printf("publishing tickettype %d\n", t.ID)
	t.IsActive = true
	return tx.Model(t).Update("is_active", true).Error
}

// Unpublish sets the ticket type as inactive.
func (t *TicketType) Unpublish(tx *gorm.DB) error {
	log.Printf("unpublishing tickettype %d\n", t.ID)
	t.IsActive = false
	return tx.Model(t).Update("is_active", false).Error
}

func (t *TicketType) IsFree() bool {
	return t.Price == 0
}

// GetHandlingFee returns the handling fee in cents. Free ticket types have
// none; without a fee of its own the ticket type inherits the event's.
func (t *TicketType) GetHandlingFee() int64 {
	if t.IsFree() {
		return 0
	}
	if t.HandlingFee != nil {
		return *t.HandlingFee
	}
	return t.Event.HandlingFee
}

func (t *TicketType) FullPrice() int64 {
	return t.Price + t.GetHandlingFee()
}

// AmountOrdered retrieves how many units sit in line items of orders that
// still hold capacity. STARTED orders count: reservations hold capacity
// before payment. Only TIMEOUT and CANCELLED orders release it.
func (t *TicketType) AmountOrdered(tx *gorm.DB) (int64, error) {
	var total int64
	err := tx.
		Model(&TicketOrder{}).
		Select("COALESCE(SUM(ticket_orders.amount), 0)").
		Joins("JOIN orders ON orders.id = ticket_orders.order_id").
		Where("ticket_orders.ticket_type_id = ?", t.ID).
		Where("orders.status NOT IN ?", []types.OrderStatus{types.ORDER_TIMEOUT, types.ORDER_CANCELLED}).
		Scan(&total).
		Error
	return total, err
}

// AmountPurchased retrieves how many units sit in line items of purchased
// orders.
func (t *TicketType) AmountPurchased(tx *gorm.DB) (int64, error) {
	var total int64
	err := tx.
		Model(&TicketOrder{}).
		Select("COALESCE(SUM(ticket_orders.amount), 0)").
		Joins("JOIN orders ON orders.id = ticket_orders.order_id").
		Where("ticket_orders.ticket_type_id = ?", t.ID).
		Where("orders.status = ?", types.ORDER_PURCHASED).
		Scan(&total).
		Error
	return total, err
}

// AmountAvailable retrieves how many units are still open for purchase.
// May be negative transiently under concurrent writes; callers treat
// negative as zero availability.
func (t *TicketType) AmountAvailable(tx *gorm.DB) (int64, error) {
	ordered, err := t.AmountOrdered(tx)
	if err != nil {
		return 0, err
	}
	return int64(t.Units) - ordered, nil
}

// HasAvailable checks whether a specific amount of tickets can still be
// bought.
func (t *TicketType) HasAvailable(tx *gorm.DB, amount int64) (bool, error) {
	available, err := t.AmountAvailable(tx)
	if err != nil {
		return false, err
	}
	return available >= amount, nil
}

// UpdateAvailability adjusts the stored availability if necessary and
// reports whether it changed. One transition per invocation: SOLD is only
// reached from CLAIMED, so a caller observing both conditions at once has
// to recompute again. Callers are expected to schedule a recompute per
// mutating event, not to search for a fixed point here.
func (t *TicketType) UpdateAvailability(tx *gorm.DB) (bool, error) {
	switch t.Availability {
	case types.TICKETTYPE_AVAILABLE:
		available, err := t.AmountAvailable(tx)
		if err != nil {
			return false, err
		}
		if available <= 0 {
			return true, t.setAvailability(tx, types.TICKETTYPE_CLAIMED)
		}

	case types.TICKETTYPE_CLAIMED:
		purchased, err := t.AmountPurchased(tx)
		if err != nil {
			return false, err
		}
		if purchased >= int64(t.Units) {
			return true, t.setAvailability(tx, types.TICKETTYPE_SOLD)
		}
		available, err := t.AmountAvailable(tx)
		if err != nil {
			return false, err
		}
		if available > 0 {
			return true, t.setAvailability(tx, types.TICKETTYPE_AVAILABLE)
		}

	case types.TICKETTYPE_SOLD:
		// A purchased order was cancelled and freed capacity: sales
		// re-open even though the type was sold out.
		available, err := t.AmountAvailable(tx)
		if err != nil {
			return false, err
		}
		if available > 0 {
			return true, t.setAvailability(tx, types.TICKETTYPE_AVAILABLE)
		}
	}
	return false, nil
}

func (t *TicketType) setAvailability(tx *gorm.DB, availability types.Availability) error {
	if err := tx.Model(t).Update("availability", availability).Error; err != nil {
		return err
	}
	t.Availability = availability
	log.Printf("tickettype %d is now %s\n", t.ID, availability)
	return nil
}
