package locations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ewait/internal/queues"
)

const (
	DefaultQueueName        = "Main Queue"
	DefaultQueueDescription = "Default queue"
)

type Location struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string         `json:"name" gorm:"type:varchar(150);not null"`
	Address   *string        `json:"address"`
	Phone     *string        `json:"phone" gorm:"type:varchar(20)"`
	OwnerID   uuid.UUID      `json:"ownerId" gorm:"type:uuid;not null;index"`
	Queues    []queues.Queue `json:"queues,omitempty" gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Location) TableName() string {
	return "locations"
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// DefaultQueue is the queue every new business starts with
func DefaultQueue() queues.Queue {
	description := DefaultQueueDescription
	return queues.Queue{
		Name:           DefaultQueueName,
		Description:    &description,
		AvgServiceTime: queues.DefaultAvgServiceTime,
		IsActive:       true,
	}
}
