package database

import (
	"gorm.io/gorm"
)

// postgresConstraints are CHECK constraints gorm tags cannot express portably
var postgresConstraints = []string{
	`ALTER TABLE queue_entries ADD CONSTRAINT chk_queue_entries_party_size CHECK (party_size >= 1)`,
	`ALTER TABLE queues ADD CONSTRAINT chk_queues_avg_service_time CHECK (avg_service_time >= 1)`,
	`ALTER TABLE queue_entries ADD CONSTRAINT chk_queue_entries_status
		CHECK (status IN ('WAITING', 'CALLED', 'SERVING', 'COMPLETED', 'CANCELLED', 'NO_SHOW'))`,
}

// MigrateConstraints adds database-level guards on top of AutoMigrate.
// Ticket uniqueness per queue is an index declared on the Entry model.
func MigrateConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, stmt := range postgresConstraints {
		err := db.Exec(`DO $$ BEGIN ` + stmt + `; EXCEPTION WHEN duplicate_object THEN NULL; END $$;`).Error
		if err != nil {
			return err
		}
	}

	return nil
}
