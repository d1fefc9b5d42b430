package locations

type CreateLocationRequest struct {
	Name               string  `json:"name" validate:"required,min=2,max=150"`
	Address            *string `json:"address" validate:"omitempty,max=255"`
	Phone              *string `json:"phone" validate:"omitempty,max=20"`
	CreateDefaultQueue *bool   `json:"createDefaultQueue"`
}
