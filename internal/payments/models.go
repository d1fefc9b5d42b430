package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ewait/internal/users"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// PlanDuration is how long one payment keeps a plan active
const PlanDuration = 30 * 24 * time.Hour

// PlanDetails prices are in kobo
type PlanDetails struct {
	Amount int64
	Name   string
}

var Plans = map[users.Plan]PlanDetails{
	users.PlanStarter:    {Amount: 500000, Name: "Starter Plan"},
	users.PlanBusiness:   {Amount: 1500000, Name: "Business Plan"},
	users.PlanEnterprise: {Amount: 5000000, Name: "Enterprise Plan"},
}

type Payment struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Amount      int64      `json:"amount" gorm:"not null"`
	Reference   string     `json:"reference" gorm:"type:varchar(100);uniqueIndex;not null"`
	Plan        users.Plan `json:"plan" gorm:"type:varchar(20);not null"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaystackRef *string    `json:"paystackRef,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
