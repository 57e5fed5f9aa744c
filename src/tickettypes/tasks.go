package tickettypes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tix/src/db"
	"tix/src/lib"
	"tix/src/models"

	"gorm.io/gorm"
)

// UpdateAvailability checks if the stored availability of the ticket type
// needs to be changed and persists the transition. A ticket type that no
// longer exists is a logged no-op: the product was deleted while a
// recompute for it was still queued.
func UpdateAvailability(tickettypeID uint) error {
	d := db.GetDb()
	var updated *models.TicketType
	err := d.Transaction(func(tx *gorm.DB) error {
		tickettype, err := LookupTicketTypeByID(tx, tickettypeID)
		if err != nil {
			if errors.Is(err, models.ErrTicketTypeNotFound) {
				log.Printf("failed updating availability: tickettype %d not found\n", tickettypeID)
				return nil
			}
			return err
		}
		changed, err := tickettype.UpdateAvailability(tx)
		if err != nil {
			return err
		}
		if changed {
			updated = tickettype
		}
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		cacheAvailability(updated)
	}
	return nil
}

// cacheAvailability mirrors the latest availability into redis for cheap
// public reads. The cached value is advisory only: accept/reject decisions
// always re-derive from the order rows.
func cacheAvailability(tickettype *models.TicketType) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return
	}
	key := AvailabilityCacheKey(tickettype.ID)
	if err := rdb.Set(context.Background(), key, string(tickettype.Availability), 5*time.Minute).Err(); err != nil {
		log.Printf("[redis] failed caching availability for tickettype %d: %s\n", tickettype.ID, err.Error())
	}
}

func AvailabilityCacheKey(tickettypeID uint) string {
	return fmt.Sprintf("tickettype:%d:availability", tickettypeID)
}
