package payments

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"ewait/internal/users"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	MarkFailed(ctx context.Context, reference string) error
	// MarkSuccess reports false when the payment was already settled
	MarkSuccess(ctx context.Context, reference, paystackRef string, paidAt time.Time) (bool, error)
	// Settle runs fn with payment and user repositories bound to one transaction
	Settle(ctx context.Context, fn func(payments Repository, users users.Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	var payment Payment
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) MarkFailed(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("reference = ? AND status = ?", reference, StatusPending).
		Update("status", StatusFailed).Error
}

func (r *repository) MarkSuccess(ctx context.Context, reference, paystackRef string, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("reference = ? AND status <> ?", reference, StatusSuccess).
		Updates(map[string]interface{}{
			"status":       StatusSuccess,
			"paystack_ref": paystackRef,
			"paid_at":      paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Settle(ctx context.Context, fn func(payments Repository, users users.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx}, users.NewRepository(tx))
	})
}
