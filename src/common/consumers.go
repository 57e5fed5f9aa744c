package common

import (
	"log"

	"tix/src/lib"
	"tix/src/tickets"
	"tix/src/tickettypes"

	"github.com/tidwall/gjson"
)

// AvailabilityConsumer drains the availability topic. Recomputes are
// serialized within the consumer group so concurrent orders against the
// same ticket type do not race their state transitions.
func AvailabilityConsumer() {
	lib.KafkaConsume("tix-workers", TopicTicketTypeAvailability, func(value []byte) {
		id := gjson.GetBytes(value, "tickettype_id").Uint()
		if id == 0 {
			log.Printf("Dropping availability message without tickettype_id: %s\n", string(value))
			return
		}
		if err := tickettypes.UpdateAvailability(uint(id)); err != nil {
			log.Printf("Error updating availability for tickettype %d: %s\n", id, err.Error())
		}
	})
}

// OrderMailConsumer drains the order mail topic.
func OrderMailConsumer() {
	lib.KafkaConsume("tix-workers", TopicOrderMails, func(value []byte) {
		id := gjson.GetBytes(value, "order_id").Uint()
		if id == 0 {
			log.Printf("Dropping mail message without order_id: %s\n", string(value))
			return
		}
		if err := tickets.MailOrder(uint(id)); err != nil {
			log.Printf("Error sending mail for order %d: %s\n", id, err.Error())
		}
	})
}
