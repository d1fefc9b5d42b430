package database

import (
	"ewait/internal/analytics"
	"ewait/internal/locations"
	"ewait/internal/payments"
	"ewait/internal/queues"
	"ewait/internal/users"

	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&users.User{},
		&locations.Location{},
		&queues.Queue{},
		&queues.Entry{},
		&payments.Payment{},
		&analytics.Event{},
		&analytics.DailyStats{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
