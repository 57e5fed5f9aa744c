package common

import (
	"log"

	"tix/src/config"
	"tix/src/lib"
	"tix/src/tickets"
	"tix/src/tickettypes"
	"tix/src/types"
)

const (
	TopicTicketTypeAvailability = "tickettype-availability"
	TopicOrderMails             = "order-mails"
)

// ScheduleAvailabilityUpdate queues an availability recompute for a ticket
// type. With a broker configured the work goes through Kafka so a single
// worker serializes recomputes; without one it runs on a local goroutine.
func ScheduleAvailabilityUpdate(tickettypeID uint) {
	if config.KafkaBroker() != "" {
		err := lib.KafkaProduceMessage("availability-tasks", TopicTicketTypeAvailability, types.JSONB{
			"tickettype_id": tickettypeID,
		})
		if err == nil {
			return
		}
		log.Printf("Could not queue availability update for tickettype %d: %s\n", tickettypeID, err.Error())
	}
	go func() {
		if err := tickettypes.UpdateAvailability(tickettypeID); err != nil {
			log.Printf("Error updating availability for tickettype %d: %s\n", tickettypeID, err.Error())
		}
	}()
}

// ScheduleOrderMail queues ticket delivery mail for a purchased order.
func ScheduleOrderMail(orderID uint) {
	if config.KafkaBroker() != "" {
		err := lib.KafkaProduceMessage("mail-tasks", TopicOrderMails, types.JSONB{
			"order_id": orderID,
		})
		if err == nil {
			return
		}
		log.Printf("Could not queue mail for order %d: %s\n", orderID, err.Error())
	}
	go func() {
		if err := tickets.MailOrder(orderID); err != nil {
			log.Printf("Error sending mail for order %d: %s\n", orderID, err.Error())
		}
	}()
}
