package orders

import (
	"log"
	"time"

	"tix/src/common"
	"tix/src/db"
	"tix/src/models"
	"tix/src/types"

	"gorm.io/gorm"
)

// TimeoutSessions expires order sessions whose timer ran out: STARTED
// orders whose session_start is older than maxAge become TIMEOUT, which
// releases their reserved capacity. Returns the number of orders expired.
//
// Each order is expired in its own transaction with a guarded update, so
// an order that got purchased between the sweep query and the update is
// skipped rather than clobbered. Per-order failures are logged and the
// sweep keeps going.
func TimeoutSessions(maxAge time.Duration) int {
	d := db.GetDb()
	deadline := time.Now().UTC().Add(-maxAge)

	var stale []models.Order
	err := d.
		Where(&models.Order{Status: types.ORDER_STARTED}).
		Where("session_start < ?", deadline).
		Find(&stale).
		Error
	if err != nil {
		log.Printf("Error sweeping order sessions: %s\n", err.Error())
		return 0
	}

	expired := 0
	for i := range stale {
		order := &stale[i]
		var tickettypeIDs []uint
		timedOut := false
		err := d.Transaction(func(tx *gorm.DB) error {
			res := tx.
				Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, types.ORDER_STARTED).
				Update("status", types.ORDER_TIMEOUT)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// purchased or cancelled since the sweep query, leave it
				return nil
			}
			log.Printf("timeout order %d\n", order.ID)
			timedOut = true
			ttypes, err := order.TicketTypes(tx)
			if err != nil {
				return err
			}
			for j := range ttypes {
				tickettypeIDs = append(tickettypeIDs, ttypes[j].ID)
			}
			return nil
		})
		if err != nil {
			log.Printf("Error expiring order %d: %s\n", order.ID, err.Error())
			continue
		}
		if !timedOut {
			continue
		}
		expired++
		for _, id := range tickettypeIDs {
			common.ScheduleAvailabilityUpdate(id)
		}
	}
	if expired > 0 {
		log.Printf("expired %d order sessions\n", expired)
	}
	return expired
}
