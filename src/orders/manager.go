package orders

import (
	"errors"

	"tix/src/models"
	"tix/src/types"

	"gorm.io/gorm"
)

// GetStartedOrder finds the open order session of a user with an account:
// status STARTED and not yet locked for checkout. Each (user, account) pair
// has at most one such session at a time.
func GetStartedOrder(tx *gorm.DB, userID *uint, accountID uint) (*models.Order, error) {
	var order models.Order
	q := tx.
		Where(&models.Order{AccountID: accountID, Status: types.ORDER_STARTED}).
		Where("locked = ?", false)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	} else {
		q = q.Where("user_id IS NULL")
	}
	if err := q.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// LookupOrderByID retrieves an order by primary key.
func LookupOrderByID(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Where(&models.Order{ID: orderID}).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// LookupOrderByKey retrieves an order by its public order key.
func LookupOrderByKey(tx *gorm.DB, orderKey string) (*models.Order, error) {
	var order models.Order
	if err := tx.Where(&models.Order{OrderKey: orderKey}).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// LookupOrderByPaymentKey retrieves an order by the key handed to the
// payment provider. Payment confirmations reference this key only.
func LookupOrderByPaymentKey(tx *gorm.DB, paymentKey string) (*models.Order, error) {
	var order models.Order
	if err := tx.Where(&models.Order{PaymentKey: paymentKey}).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// HasOrdersForTicketType reports whether any order holds a line item for
// the ticket type. Deleting a ticket type is blocked while this is true.
func HasOrdersForTicketType(tx *gorm.DB, tickettypeID uint) (bool, error) {
	var count int64
	err := tx.
		Model(&models.TicketOrder{}).
		Where(&models.TicketOrder{TicketTypeID: tickettypeID}).
		Count(&count).
		Error
	return count > 0, err
}
