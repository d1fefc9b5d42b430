package payments

import (
	"time"

	"ewait/internal/users"
)

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type VerifyResponse struct {
	Success   bool       `json:"success"`
	Plan      users.Plan `json:"plan"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
