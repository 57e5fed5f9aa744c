package boot

import (
	"log"
	"time"

	"tix/src/common"
	"tix/src/config"
	"tix/src/db"
	"tix/src/lib"
	"tix/src/orders"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	gdb := db.GetDb()
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return gdb
}

// InitBroker creates the work topics and starts the consumers. No-op when
// no broker is configured; tasks then run on local goroutines instead.
func InitBroker() {
	if config.KafkaBroker() == "" {
		log.Println("No Kafka broker configured, running tasks locally")
		return
	}
	go lib.KafkaCreateTopics(common.TopicTicketTypeAvailability, common.TopicOrderMails)
	common.AvailabilityConsumer()
	common.OrderMailConsumer()
}

// InitScheduler starts the session reaper on its sweep interval.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	maxAge := config.OrderSessionTTL()
	jobID, err := lib.CreateCronJob(func() {
		orders.TimeoutSessions(maxAge)
	}, config.ReaperInterval())
	if err != nil {
		log.Printf("Error scheduling session reaper: %s\n", err.Error())
		return
	}
	log.Printf("Session reaper scheduled: job=%s interval=%s ttl=%s\n", *jobID, config.ReaperInterval(), maxAge)
	// catch up on sessions that went stale while the service was down
	if _, err := lib.CreateOneTimeJob(time.Now().Add(10*time.Second), func() {
		orders.TimeoutSessions(maxAge)
	}); err != nil {
		log.Printf("Error scheduling startup sweep: %s\n", err.Error())
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}
