package tickets

import (
	"log"

	"tix/src/models"

	"gorm.io/gorm"
)

// TicketsFromOrder returns all tickets that were created by an order.
func TicketsFromOrder(tx *gorm.DB, orderID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := tx.
		Model(&models.Ticket{}).
		Joins("JOIN ticket_orders ON ticket_orders.id = tickets.ticket_order_id").
		Where("ticket_orders.order_id = ?", orderID).
		Find(&tickets).
		Error
	return tickets, err
}

// HasCreatedTickets checks if tickets have already been created for the
// order.
func HasCreatedTickets(tx *gorm.DB, orderID uint) (bool, error) {
	var count int64
	err := tx.
		Model(&models.Ticket{}).
		Joins("JOIN ticket_orders ON ticket_orders.id = tickets.ticket_order_id").
		Where("ticket_orders.order_id = ?", orderID).
		Count(&count).
		Error
	return count > 0, err
}

// CreateTickets materializes one ticket per reserved unit of the order.
// Creating is idempotent: when tickets already exist the call returns
// without adding any. Owners follow the order's allocation list when one
// is present (order owner first, then the listed users); units beyond the
// list go to the order owner.
func CreateTickets(tx *gorm.DB, order *models.Order) (int, error) {
	created, err := HasCreatedTickets(tx, order.ID)
	if err != nil {
		return 0, err
	}
	if created {
		return 0, nil
	}
	if order.UserID == nil {
		return 0, models.ErrOrderUserRequired
	}

	var allocate []uint
	if a := order.Meta.Allocation; a != nil {
		allocate = append([]uint{*order.UserID}, a.IDs...)
	}

	var lines []models.TicketOrder
	if err := tx.Where(&models.TicketOrder{OrderID: order.ID}).Find(&lines).Error; err != nil {
		return 0, err
	}

	count := 0
	for i := range lines {
		for range lines[i].Amount {
			owner := *order.UserID
			if count < len(allocate) && allocate[count] != 0 {
				owner = allocate[count]
			}
			ticket := models.Ticket{
				TicketOrderID: lines[i].ID,
				UserID:        owner,
			}
			if err := tx.Create(&ticket).Error; err != nil {
				return count, err
			}
			log.Printf("created ticket %d, code %s\n", ticket.ID, ticket.Code())
			count++
		}
	}
	return count, nil
}
