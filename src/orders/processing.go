package orders

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tix/src/common"
	"tix/src/config"
	"tix/src/db"
	"tix/src/models"
	"tix/src/paymentproviders"
	"tix/src/subscriptions"
	"tix/src/tickets"
	"tix/src/tickettypes"

	"gorm.io/gorm"
)

// StartOrder returns the open order session of a user with an account,
// creating one when none exists. Sessions are reused so a buyer clicking
// around keeps accumulating into the same order.
func StartOrder(userID *uint, accountID uint) (*models.Order, error) {
	var order *models.Order
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		existing, err := GetStartedOrder(tx, userID, accountID)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, models.ErrOrderNotFound) {
			return err
		}
		order = models.NewOrder(userID, accountID)
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddTickets sets the amount of a ticket type reserved by an order. The
// amount is absolute, not a delta; amount 0 removes the line item. The
// session timer restarts on every call.
//
// Availability is checked optimistically inside the write transaction but
// without locking the counting rows, so two concurrent orders can both
// pass the check. The recompute queued after commit settles the published
// state; overbooking within a session window is accepted.
func AddTickets(orderID uint, tickettypeID uint, amount int) (*models.Order, error) {
	if amount < 0 {
		return nil, models.ErrInvalidAmount
	}
	var order *models.Order
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = LookupOrderByID(tx, orderID)
		if err != nil {
			return err
		}
		if order.IsLocked() || order.IsPurchased() {
			return models.ErrOrderLocked
		}
		tickettype, err := tickettypes.LookupTicketTypeByID(tx, tickettypeID)
		if err != nil {
			return err
		}
		if !tickettype.IsActive {
			return models.ErrInactiveTicketType
		}
		event, err := tickettypes.GetEventOf(tx, tickettype)
		if err != nil {
			return err
		}
		if event.AccountID != order.AccountID {
			return models.ErrAccountMismatch
		}
		if !tickettype.IsFree() {
			ok, err := subscriptions.HasAvailableTransactions(tx, order.AccountID)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrSubscriptionLimit
			}
		}

		if err := upsertLineItem(tx, order, tickettype, amount); err != nil {
			return err
		}

		order.Touch()
		return tx.Model(order).Update("session_start", order.SessionStart).Error
	})
	if err != nil {
		return nil, err
	}
	common.ScheduleAvailabilityUpdate(tickettypeID)
	return order, nil
}

func upsertLineItem(tx *gorm.DB, order *models.Order, tickettype *models.TicketType, amount int) error {
	var line models.TicketOrder
	err := tx.
		Where(&models.TicketOrder{OrderID: order.ID, TicketTypeID: tickettype.ID}).
		First(&line).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if amount == 0 {
			return models.ErrAmountNotAvailable
		}
		if !order.Meta.SkipAvailabilityCheck() {
			ok, err := tickettype.HasAvailable(tx, int64(amount))
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrAmountNotAvailable
			}
		}
		line = models.TicketOrder{OrderID: order.ID, TicketTypeID: tickettype.ID, Amount: amount}
		return tx.Create(&line).Error
	}
	if err != nil {
		return err
	}
	if amount == 0 {
		log.Printf("removing tickettype %d from order %d\n", tickettype.ID, order.ID)
		// hard delete so the line can be re-added under the unique index
		return tx.Unscoped().Delete(&line).Error
	}
	if delta := amount - line.Amount; delta >= 0 && !order.Meta.SkipAvailabilityCheck() {
		ok, err := tickettype.HasAvailable(tx, int64(delta))
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrAmountNotAvailable
		}
	}
	return tx.Model(&line).Update("amount", amount).Error
}

// CheckoutOrder binds the user to the order, locks it and opens a payment
// session with the named provider. Free orders skip payment and are
// finalized immediately. The returned URL is empty for free orders.
func CheckoutOrder(orderID uint, user *models.User, provider string) (string, error) {
	p, err := paymentproviders.Get(provider)
	if err != nil {
		return "", err
	}
	var order *models.Order
	var total int64
	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = LookupOrderByID(tx, orderID)
		if err != nil {
			return err
		}
		if order.IsPurchased() {
			return models.ErrOrderLocked
		}
		if err := order.Checkout(tx, user); err != nil {
			return err
		}
		total, err = order.Total(tx)
		if err != nil {
			return err
		}
		order.PaymentProvider = provider
		return tx.Save(order).Error
	})
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "", FinishOrder(order.ID, true)
	}
	count, err := order.TicketCount(db.GetDb())
	if err != nil {
		return "", err
	}
	description := fmt.Sprintf("%d tickets, order %s", count, order.OrderKey)
	return p.CreateCheckout(order.PaymentKey, description, "eur", total)
}

// FinishOrder finalizes a purchase after payment confirmation: the order
// becomes PURCHASED and tickets are materialized. Finalizing is idempotent;
// a confirmation replay does not issue tickets twice or send another mail.
// A timed out order is still finalized, the payment already happened.
func FinishOrder(orderID uint, sendMail bool) error {
	var order models.Order
	var tickettypeIDs []uint
	alreadyFinalized := false
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Order{ID: orderID}).First(&order).Error; err != nil {
			return models.ErrOrderNotFound
		}
		// Tickets existing is the idempotency guard, not the status: a
		// replayed confirmation must not resurrect a cancelled order or
		// count its transaction twice.
		issued, err := tickets.HasCreatedTickets(tx, order.ID)
		if err != nil {
			return err
		}
		if issued {
			alreadyFinalized = true
			return nil
		}
		if err := order.Purchase(); err != nil {
			return err
		}
		count, err := tickets.CreateTickets(tx, &order)
		if err != nil {
			return err
		}
		order.Meta.TicketsCreated = time.Now().UTC().Format(config.META_TIME_FORMAT)
		total, err := order.Total(tx)
		if err != nil {
			return err
		}
		if total > 0 {
			if err := subscriptions.IncrementTransactionCount(tx, order.AccountID, 1); err != nil {
				return err
			}
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		ttypes, err := order.TicketTypes(tx)
		if err != nil {
			return err
		}
		for i := range ttypes {
			tickettypeIDs = append(tickettypeIDs, ttypes[i].ID)
		}
		log.Printf("finalized order %d with %d tickets\n", order.ID, count)
		return nil
	})
	if err != nil {
		stampFinalizeFailure(orderID, err)
		return err
	}
	if alreadyFinalized {
		return nil
	}
	for _, id := range tickettypeIDs {
		common.ScheduleAvailabilityUpdate(id)
	}
	if sendMail {
		common.ScheduleOrderMail(order.ID)
	}
	return nil
}

// stampFinalizeFailure records a failed finalize on the order metadata in
// its own transaction, outside the rolled back one.
func stampFinalizeFailure(orderID uint, cause error) {
	if errors.Is(cause, models.ErrOrderNotFound) {
		return
	}
	d := db.GetDb()
	order, err := LookupOrderByID(d, orderID)
	if err != nil {
		return
	}
	order.Meta.TicketsCreated = fmt.Sprintf("failed @ %s", time.Now().UTC().Format(config.META_TIME_FORMAT))
	if err := d.Model(order).Update("meta", order.Meta).Error; err != nil {
		log.Printf("failed stamping finalize failure on order %d: %s\n", orderID, err.Error())
	}
}

// CancelOrder voids an order. Cancelling a purchased order restocks its
// capacity; the recompute moves a sold out ticket type back to AVAILABLE.
func CancelOrder(orderID uint) error {
	var tickettypeIDs []uint
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		order, err := LookupOrderByID(tx, orderID)
		if err != nil {
			return err
		}
		order.Cancel()
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		ttypes, err := order.TicketTypes(tx)
		if err != nil {
			return err
		}
		for i := range ttypes {
			tickettypeIDs = append(tickettypeIDs, ttypes[i].ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range tickettypeIDs {
		common.ScheduleAvailabilityUpdate(id)
	}
	return nil
}

// DeleteOrder removes an order with its line items and tickets. Meant for
// cleaning up abandoned sessions, but works on any order.
func DeleteOrder(orderID uint) error {
	var tickettypeIDs []uint
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		order, err := LookupOrderByID(tx, orderID)
		if err != nil {
			return err
		}
		ttypes, err := order.TicketTypes(tx)
		if err != nil {
			return err
		}
		for i := range ttypes {
			tickettypeIDs = append(tickettypeIDs, ttypes[i].ID)
		}
		if err := tx.
			Unscoped().
			Where("ticket_order_id IN (?)", tx.Model(&models.TicketOrder{}).Select("id").Where(&models.TicketOrder{OrderID: order.ID})).
			Delete(&models.Ticket{}).
			Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where(&models.TicketOrder{OrderID: order.ID}).Delete(&models.TicketOrder{}).Error; err != nil {
			return err
		}
		log.Printf("deleting order %d\n", order.ID)
		return tx.Unscoped().Delete(order).Error
	})
	if err != nil {
		return err
	}
	for _, id := range tickettypeIDs {
		common.ScheduleAvailabilityUpdate(id)
	}
	return nil
}
