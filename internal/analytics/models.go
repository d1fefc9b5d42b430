package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventName string

const (
	EventQueueJoin     EventName = "queue_join"
	EventQueueLeave    EventName = "queue_leave"
	EventQueueCall     EventName = "queue_call"
	EventQueueComplete EventName = "queue_complete"
	EventQueueNoShow   EventName = "queue_no_show"

	EventLocationCreate EventName = "location_create"
	EventQueueCreate    EventName = "queue_create"

	EventUserRegister EventName = "user_register"
	EventUserLogin    EventName = "user_login"

	EventPaymentInit    EventName = "payment_init"
	EventPaymentSuccess EventName = "payment_success"
	EventPaymentFailed  EventName = "payment_failed"
)

// Event is one tracked business event
type Event struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Event      EventName  `json:"event" gorm:"type:varchar(50);not null;index"`
	LocationID *uuid.UUID `json:"locationId,omitempty" gorm:"type:uuid;index"`
	QueueID    *uuid.UUID `json:"queueId,omitempty" gorm:"type:uuid"`
	EntryID    *uuid.UUID `json:"entryId,omitempty" gorm:"type:uuid"`
	UserID     *uuid.UUID `json:"userId,omitempty" gorm:"type:uuid"`
	Metadata   string     `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
}

func (Event) TableName() string {
	return "analytics_events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// DailyStats is the per-location roll-up of one UTC day
type DailyStats struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Date           time.Time `json:"date" gorm:"not null;uniqueIndex:idx_daily_stats_date_location"`
	LocationID     uuid.UUID `json:"locationId" gorm:"type:uuid;not null;uniqueIndex:idx_daily_stats_date_location"`
	TotalJoins     int       `json:"totalJoins"`
	TotalServed    int       `json:"totalServed"`
	TotalNoShows   int       `json:"totalNoShows"`
	TotalCancelled int       `json:"totalCancelled"`
	AvgWaitMinutes *float64  `json:"avgWaitMinutes"`
	PeakHour       *int      `json:"peakHour"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (DailyStats) TableName() string {
	return "daily_stats"
}

func (d *DailyStats) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Refs ties an event to the records it concerns. All fields are optional.
type Refs struct {
	LocationID *uuid.UUID
	QueueID    *uuid.UUID
	EntryID    *uuid.UUID
	UserID     *uuid.UUID
	Metadata   map[string]interface{}
}

// Read models

type StatusCount struct {
	Status string
	Count  int64
}

// EntryTimes is the slice of an entry the daily roll-up needs
type EntryTimes struct {
	Status   string
	JoinedAt time.Time
	CalledAt *time.Time
}

type RecentEntry struct {
	ID           uuid.UUID `json:"id"`
	TicketNumber int       `json:"ticketNumber"`
	Name         *string   `json:"name"`
	Status       string    `json:"status"`
	JoinedAt     time.Time `json:"joinedAt"`
	QueueName    string    `json:"queueName"`
}

type TopQueue struct {
	QueueID   uuid.UUID `json:"queueId"`
	QueueName string    `json:"queueName"`
	Count     int64     `json:"count"`
}

type LocationRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SummaryCounts struct {
	TotalJoins int64 `json:"totalJoins"`
	Completed  int64 `json:"completed"`
	NoShows    int64 `json:"noShows"`
	Cancelled  int64 `json:"cancelled"`
	Waiting    int64 `json:"waiting"`
}

type Period struct {
	Days      int       `json:"days"`
	StartDate time.Time `json:"startDate"`
}

// Summary is the owner dashboard payload
type Summary struct {
	Summary       SummaryCounts `json:"summary"`
	DailyStats    []DailyStats  `json:"dailyStats"`
	RecentEntries []RecentEntry `json:"recentEntries"`
	TopQueues     []TopQueue    `json:"topQueues"`
	Locations     []LocationRef `json:"locations"`
	Period        Period        `json:"period"`
}
