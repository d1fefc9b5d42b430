package notifications

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Kind selects the SMS template
type Kind string

const (
	KindJoined     Kind = "joined"
	KindAlmostTurn Kind = "almost_turn"
	KindYourTurn   Kind = "your_turn"
	KindNoShow     Kind = "no_show"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindJoined, KindAlmostTurn, KindYourTurn, KindNoShow:
		return true
	default:
		return false
	}
}

// Notification is one SMS-worthy queue event. It is also the Kafka message body.
type Notification struct {
	Kind         Kind      `json:"kind"`
	Phone        string    `json:"phone"`
	EntryID      uuid.UUID `json:"entry_id"`
	QueueID      uuid.UUID `json:"queue_id"`
	TicketNumber int       `json:"ticket_number"`
	Position     int       `json:"position,omitempty"`
	PeopleAhead  int       `json:"people_ahead,omitempty"`
	QueueName    string    `json:"queue_name,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
}

// Dispatcher accepts notifications without waiting for delivery
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification)
}

// Sink delivers or forwards one notification
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// PartitionKey keeps one queue's messages on one partition, in order
func (n Notification) PartitionKey() string {
	return n.QueueID.String()
}

func (n Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NopDispatcher drops everything. Used where notifications are switched off.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, Notification) {}
