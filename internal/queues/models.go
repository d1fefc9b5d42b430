package queues

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultAvgServiceTime = 5

// Status of a queue entry
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusCalled    Status = "CALLED"
	StatusServing   Status = "SERVING"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
	StatusCancelled Status = "CANCELLED"
)

var AllStatuses = []Status{
	StatusWaiting, StatusCalled, StatusServing, StatusCompleted, StatusNoShow, StatusCancelled,
}

func (s Status) IsValid() bool {
	for _, candidate := range AllStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// IsActive reports whether the entry is currently at the counter
func (s Status) IsActive() bool {
	return s == StatusCalled || s == StatusServing
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoShow || s == StatusCancelled
}

// Action is a guarded lifecycle step
type Action string

const (
	ActionCall     Action = "call"
	ActionComplete Action = "complete"
	ActionNoShow   Action = "no_show"
	ActionCancel   Action = "cancel"
)

type transition struct {
	from []Status
	to   Status
}

var transitions = map[Action]transition{
	ActionCall:     {from: []Status{StatusWaiting}, to: StatusCalled},
	ActionComplete: {from: []Status{StatusCalled, StatusServing}, to: StatusCompleted},
	ActionNoShow:   {from: []Status{StatusCalled, StatusServing}, to: StatusNoShow},
	ActionCancel:   {from: []Status{StatusWaiting}, to: StatusCancelled},
}

// NextStatus returns the status action leads to from current, or false when not allowed
func NextStatus(action Action, current Status) (Status, bool) {
	t, ok := transitions[action]
	if !ok {
		return "", false
	}
	for _, from := range t.from {
		if from == current {
			return t.to, true
		}
	}
	return "", false
}

type Queue struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name           string    `json:"name" gorm:"type:varchar(100);not null"`
	Description    *string   `json:"description"`
	LocationID     uuid.UUID `json:"locationId" gorm:"type:uuid;not null;index"`
	AvgServiceTime int       `json:"avgServiceTime" gorm:"not null"`
	IsActive       bool      `json:"isActive" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Filled by joins on locations, never written
	LocationName string `json:"locationName,omitempty" gorm:"->;-:migration"`
}

func (Queue) TableName() string {
	return "queues"
}

func (q *Queue) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.AvgServiceTime == 0 {
		q.AvgServiceTime = DefaultAvgServiceTime
	}
	return nil
}

// Entry is one customer ticket in a queue. Rows are never deleted.
type Entry struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	QueueID      uuid.UUID  `json:"queueId" gorm:"type:uuid;not null;uniqueIndex:idx_queue_entries_queue_ticket,priority:1;index:idx_queue_entries_queue_status_joined,priority:1"`
	TicketNumber int        `json:"ticketNumber" gorm:"not null;uniqueIndex:idx_queue_entries_queue_ticket,priority:2"`
	Name         *string    `json:"name" gorm:"type:varchar(100)"`
	Phone        *string    `json:"phone" gorm:"type:varchar(20)"`
	Email        *string    `json:"email" gorm:"type:varchar(255)"`
	PartySize    int        `json:"partySize" gorm:"not null;default:1"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null;index:idx_queue_entries_queue_status_joined,priority:2"`
	JoinedAt     time.Time  `json:"joinedAt" gorm:"not null;index:idx_queue_entries_queue_status_joined,priority:3"`
	CalledAt     *time.Time `json:"calledAt"`
	ServedAt     *time.Time `json:"servedAt"`
	CancelledAt  *time.Time `json:"cancelledAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Entry) TableName() string {
	return "queue_entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Entry) PhoneNumber() string {
	if e.Phone == nil {
		return ""
	}
	return *e.Phone
}

// stamp sets the timestamp column that belongs to status
func (e *Entry) stamp(status Status, now time.Time) {
	switch status {
	case StatusCalled:
		e.CalledAt = &now
	case StatusCompleted:
		e.ServedAt = &now
	case StatusCancelled, StatusNoShow:
		e.CancelledAt = &now
	}
}
