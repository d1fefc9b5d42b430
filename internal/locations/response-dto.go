package locations

import (
	"time"

	"github.com/google/uuid"

	"ewait/internal/queues"
)

type LocationResponse struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Address   *string               `json:"address"`
	Phone     *string               `json:"phone"`
	OwnerID   uuid.UUID             `json:"ownerId"`
	Queues    []queues.QueueSummary `json:"queues"`
	CreatedAt time.Time             `json:"createdAt"`
}

func toLocationResponse(location Location, counts map[uuid.UUID]int) LocationResponse {
	resp := LocationResponse{
		ID:        location.ID,
		Name:      location.Name,
		Address:   location.Address,
		Phone:     location.Phone,
		OwnerID:   location.OwnerID,
		Queues:    make([]queues.QueueSummary, 0, len(location.Queues)),
		CreatedAt: location.CreatedAt,
	}
	for _, q := range location.Queues {
		q.LocationName = location.Name
		resp.Queues = append(resp.Queues, queues.QueueSummary{Queue: q, WaitingCount: counts[q.ID]})
	}
	return resp
}
