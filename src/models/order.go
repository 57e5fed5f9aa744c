package models

import (
	"log"
	"strings"
	"time"

	"tix/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a buyer's reservation session aggregating line items of one or
// more ticket types sold by a single account.
//
// The Locked flag is monotonic: once an order has been locked for checkout
// it never unlocks. Status moves STARTED -> PURCHASED or TIMEOUT; a timed
// out order may still be purchased on a late payment confirmation, and a
// purchased order may be cancelled by the organizer.
type Order struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	AccountID       uint              `json:"account_id,omitempty"`
	UserID          *uint             `json:"user_id,omitempty"`
	OrderKey        string            `gorm:"size:32;uniqueIndex" json:"order_key,omitempty"`
	PaymentKey      string            `gorm:"size:32;uniqueIndex" json:"-"`
	Status          types.OrderStatus `gorm:"default:'started'" json:"status,omitempty"`
	SessionStart    time.Time         `json:"session_start,omitempty"`
	PurchasedOn     *time.Time        `json:"purchased_on,omitempty"`
	Locked          bool              `json:"locked"`
	PaymentProvider string            `json:"payment_provider,omitempty"`
	Meta            types.OrderMeta   `gorm:"type:jsonb" json:"meta"`

	Account      Account       `json:"-"`
	User         *User         `json:"user,omitempty"`
	TicketOrders []TicketOrder `json:"ticket_orders,omitempty"`

	types.Timestamps
}

// NewOrder starts an order session between a user (possibly unknown until
// checkout) and an account.
func NewOrder(userID *uint, accountID uint) *Order {
	order := Order{
		AccountID:  accountID,
		UserID:     userID,
		Status:     types.ORDER_STARTED,
		OrderKey:   generateKey(),
		PaymentKey: generateKey(),
	}
	order.Touch()
	return &order
}

func generateKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Touch resets the session timer. Called on every line-item mutation so the
// session window slides.
func (o *Order) Touch() {
	o.SessionStart = time.Now().UTC()
}

func (o *Order) IsLocked() bool {
	return o.Locked
}

func (o *Order) IsPurchased() bool {
	return o.Status == types.ORDER_PURCHASED
}

// Lock marks the order so no more tickets can be added. Empty orders and
// orders without a bound user cannot be locked.
func (o *Order) Lock(tx *gorm.DB) error {
	log.Printf("locking order %d\n", o.ID)
	var lines int64
	if err := tx.
		Model(&TicketOrder{}).
		Where(&TicketOrder{OrderID: o.ID}).
		Count(&lines).
		Error; err != nil {
		return err
	}
	if lines == 0 {
		return ErrEmptyOrder
	}
	if o.UserID == nil {
		return ErrOrderUserRequired
	}
	o.Locked = true
	return nil
}

// Checkout binds a user to the order if it has none yet, then locks it.
func (o *Order) Checkout(tx *gorm.DB, user *User) error {
	if o.UserID == nil && user != nil {
		o.UserID = &user.ID
	}
	if err := o.Lock(tx); err != nil {
		return err
	}
	log.Printf("checkout order %d\n", o.ID)
	return nil
}

// Purchase marks the order as purchased. Only locked orders can be
// purchased; the current status is deliberately not checked so a late
// payment confirmation still lands on a timed out order.
func (o *Order) Purchase() error {
	if !o.Locked {
		return ErrOrderNotLocked
	}
	now := time.Now().UTC()
	o.Status = types.ORDER_PURCHASED
	o.PurchasedOn = &now
	return nil
}

// Timeout marks the order session as expired. The reserved capacity is
// released through the counting queries, which skip TIMEOUT orders.
func (o *Order) Timeout() {
	log.Printf("timeout order %d\n", o.ID)
	o.Status = types.ORDER_TIMEOUT
}

// Cancel marks the order as cancelled. Line items are kept; the release
// happens purely through the counting queries skipping CANCELLED orders.
func (o *Order) Cancel() {
	log.Printf("cancelling order %d\n", o.ID)
	o.Status = types.ORDER_CANCELLED
}

// TicketTypes returns the distinct ticket types referenced by the order's
// line items.
func (o *Order) TicketTypes(tx *gorm.DB) ([]TicketType, error) {
	var tickettypes []TicketType
	err := tx.
		Model(&TicketType{}).
		Joins("JOIN ticket_orders ON ticket_orders.ticket_type_id = ticket_types.id").
		Where("ticket_orders.order_id = ?", o.ID).
		Where("ticket_orders.deleted_at IS NULL").
		Find(&tickettypes).
		Error
	return tickettypes, err
}

// TicketCount returns the number of ticket units contained in the order.
func (o *Order) TicketCount(tx *gorm.DB) (int, error) {
	var total int64
	err := tx.
		Model(&TicketOrder{}).
		Select("COALESCE(SUM(amount), 0)").
		Where(&TicketOrder{OrderID: o.ID}).
		Scan(&total).
		Error
	return int(total), err
}

// Total calculates the order total in cents, handling fees included.
func (o *Order) Total(tx *gorm.DB) (int64, error) {
	var lines []TicketOrder
	err := tx.
		Where(&TicketOrder{OrderID: o.ID}).
		Preload("TicketType").
		Preload("TicketType.Event").
		Find(&lines).
		Error
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range lines {
		total += lines[i].Total()
	}
	return total, nil
}
