package payments

type InitializeRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// webhookEvent is the Paystack webhook body
type webhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}
