package queues

import (
	"time"

	"github.com/google/uuid"
)

type JoinResponse struct {
	ID                   uuid.UUID `json:"id"`
	TicketNumber         int       `json:"ticketNumber"`
	Position             int       `json:"position"`
	EstimatedWaitMinutes int       `json:"estimatedWaitMinutes"`
	QueueName            string    `json:"queueName"`
	LocationName         string    `json:"locationName"`
}

type EntryStatusResponse struct {
	ID                   uuid.UUID  `json:"id"`
	TicketNumber         int        `json:"ticketNumber"`
	Status               Status     `json:"status"`
	Position             int        `json:"position"`
	PeopleAhead          int        `json:"peopleAhead"`
	EstimatedWaitMinutes int        `json:"estimatedWaitMinutes"`
	JoinedAt             time.Time  `json:"joinedAt"`
	CalledAt             *time.Time `json:"calledAt"`
	QueueName            string     `json:"queueName"`
	LocationName         string     `json:"locationName"`
}

// CallNextResult carries the called entry (nil when nobody waits) and the remaining line length
type CallNextResult struct {
	Message      string `json:"message"`
	Entry        *Entry `json:"entry"`
	WaitingCount int    `json:"waitingCount"`
}

// QueueBoard is the staff view of one queue
type QueueBoard struct {
	Queue
	Entries      []Entry `json:"entries"`
	WaitingCount int     `json:"waitingCount"`
	CalledEntry  *Entry  `json:"calledEntry"`
}

type QueueSummary struct {
	Queue
	WaitingCount int `json:"waitingCount"`
}
