package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Create inserts the location together with any queues attached to it
	Create(ctx context.Context, location *Location) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Location, error)
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, location *Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

// ListByOwner returns newest locations first with their queues oldest first
func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Location, error) {
	var locations []Location
	err := r.db.WithContext(ctx).
		Preload("Queues", func(db *gorm.DB) *gorm.DB {
			return db.Order("queues.created_at ASC")
		}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&locations).Error
	return locations, err
}
