package tickets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"tix/src/config"
	"tix/src/db"
	"tix/src/lib"
	"tix/src/models"

	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

// MailOrder sends the order confirmation with one QR-coded ticket per
// reserved unit to the buyer. Delivery failures are stamped into the order
// metadata and returned to the caller, which owns the retry policy.
func MailOrder(orderID uint) error {
	d := db.GetDb()
	var order models.Order
	err := d.
		Where(&models.Order{ID: orderID}).
		Preload("User").
		Preload("TicketOrders.TicketType.Event").
		First(&order).
		Error
	if err != nil {
		return models.ErrOrderNotFound
	}

	sendErr := sendOrderMail(d, &order)

	stamp := time.Now().UTC().Format(config.META_TIME_FORMAT)
	if sendErr != nil {
		order.Meta.TicketsSent = fmt.Sprintf("failed @ %s", stamp)
	} else {
		order.Meta.TicketsSent = stamp
	}
	if err := d.Model(&order).Update("meta", order.Meta).Error; err != nil {
		log.Printf("failed stamping tickets_sent on order %d: %s\n", order.ID, err.Error())
	}
	if sendErr != nil {
		log.Printf("failed sending mail for order %d: %s\n", order.ID, sendErr.Error())
	}
	return sendErr
}

func sendOrderMail(tx *gorm.DB, order *models.Order) error {
	if order.User == nil || order.User.Email == "" {
		return models.ErrOrderUserRequired
	}
	tickets, err := TicketsFromOrder(tx, order.ID)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return models.ErrTicketNotFound
	}

	eventName := "your event"
	if len(order.TicketOrders) > 0 {
		eventName = order.TicketOrders[0].TicketType.Event.Name
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", order.User.Name)
	fmt.Fprintf(&body, "Here are your tickets for '%s'.\n\n", eventName)
	attachments := map[string][]byte{}
	for i := range tickets {
		ticket := &tickets[i]
		fmt.Fprintf(&body, "  Ticket %s\n", ticket.Code())
		png, err := renderTicketQR(ticket)
		if err != nil {
			return err
		}
		attachments[fmt.Sprintf("ticket-%s.jpeg", ticket.Code())] = png
	}
	fmt.Fprintf(&body, "\nOrder reference: %s\n", order.OrderKey)

	return lib.SendMail(&lib.SendMailInput{
		From:        "tickets@tix.example",
		FromName:    "Tix Ticketing",
		To:          []string{order.User.Email},
		Subject:     fmt.Sprintf("Your tickets for '%s' are here!", eventName),
		Body:        body.String(),
		Attachments: attachments,
	})
}

func renderTicketQR(ticket *models.Ticket) ([]byte, error) {
	rawBytes, err := json.Marshal(ticket.QRCodeInformation())
	if err != nil {
		return nil, err
	}
	qrc, err := qrcode.New(string(rawBytes))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
