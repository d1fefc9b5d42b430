package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// Plan is the subscription tier bought through Paystack
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanStarter    Plan = "STARTER"
	PlanBusiness   Plan = "BUSINESS"
	PlanEnterprise Plan = "ENTERPRISE"
)

type User struct {
	ID                 uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	Name               string     `json:"name" gorm:"not null"`
	PasswordHash       string     `json:"-" gorm:"not null"`
	Role               Role       `json:"role" gorm:"type:varchar(20);not null;default:'ADMIN'"`
	Plan               Plan       `json:"plan" gorm:"type:varchar(20);not null;default:'FREE'"`
	PlanExpiresAt      *time.Time `json:"planExpiresAt,omitempty"`
	PaystackCustomerID *string    `json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasActivePlan reports whether a paid plan is in force at now
func (u *User) HasActivePlan(now time.Time) bool {
	return u.Plan != PlanFree && u.PlanExpiresAt != nil && u.PlanExpiresAt.After(now)
}
