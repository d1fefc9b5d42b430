package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ewait/internal/locations"
	"ewait/internal/users"
)

type Repository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	// CreateBusiness stores the owner and their first location atomically
	CreateBusiness(ctx context.Context, user *users.User, location *locations.Location) error
}

type repository struct {
	db        *gorm.DB
	users     users.Repository
	locations locations.Repository
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:        db,
		users:     users.NewRepository(db),
		locations: locations.NewRepository(db),
	}
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.users.EmailExists(ctx, email)
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.users.GetByEmail(ctx, email)
}

func (r *repository) GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return r.users.GetByID(ctx, id)
}

func (r *repository) CreateBusiness(ctx context.Context, user *users.User, location *locations.Location) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.users.WithTx(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		location.OwnerID = user.ID
		if err := r.locations.WithTx(tx).Create(ctx, location); err != nil {
			return fmt.Errorf("create location: %w", err)
		}
		return nil
	})
}
