package queues

type JoinQueueRequest struct {
	QueueID   string  `json:"queueId" validate:"required"`
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	PartySize *int    `json:"partySize" validate:"omitempty"`
}

type UpdateEntryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreateQueueRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=100"`
	Description    *string `json:"description" validate:"omitempty,max=500"`
	LocationID     string  `json:"locationId" validate:"required,uuid"`
	AvgServiceTime *int    `json:"avgServiceTime" validate:"omitempty"`
}

// UpdateQueueRequest is a partial update; nil fields are left alone
type UpdateQueueRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description    *string `json:"description" validate:"omitempty,max=500"`
	IsActive       *bool   `json:"isActive"`
	AvgServiceTime *int    `json:"avgServiceTime"`
}
