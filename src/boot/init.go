package boot

import (
	"ims/src/db"
	"ims/src/lib"
	"ims/src/models"
	"ims/src/utils"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Inventory{},
		&models.Member{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the daily sweep that removes inventory past its
// expiration date through the cascading delete path.
func InitScheduler() {
	id, err := lib.CreateCronJob(utils.PurgeExpiredInventory, 24*time.Hour)
	if err != nil {
		log.Printf("Error scheduling expired inventory sweep: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
	log.Printf("Expired inventory sweep scheduled: %s\n", *id)
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
