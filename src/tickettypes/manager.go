package tickettypes

import (
	"errors"

	"tix/src/models"

	"gorm.io/gorm"
)

// LookupTicketTypeByID finds a ticket type with a given id.
func LookupTicketTypeByID(tx *gorm.DB, tickettypeID uint) (*models.TicketType, error) {
	var tickettype models.TicketType
	err := tx.
		Where(&models.TicketType{ID: tickettypeID}).
		First(&tickettype).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrTicketTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tickettype, nil
}

// GetEventOf returns the event a ticket type belongs to, or
// ErrEventNotFound when it is not connected to any.
func GetEventOf(tx *gorm.DB, tickettype *models.TicketType) (*models.Event, error) {
	if tickettype.EventID == 0 {
		return nil, models.ErrEventNotFound
	}
	var event models.Event
	err := tx.
		Where(&models.Event{ID: tickettype.EventID}).
		First(&event).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}
