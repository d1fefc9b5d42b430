package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ewait/internal/analytics"
	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/config"
	"ewait/internal/shared/constants"
	"ewait/internal/shared/utils/validation"
	"ewait/internal/users"
	"ewait/pkg/cache"
	"ewait/pkg/logger"
)

const (
	eventChargeSuccess = "charge.success"
	transactionSuccess = "success"
	callbackPath       = "/admin/billing/callback"
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	Initialize(ctx context.Context, userID uuid.UUID, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type service struct {
	repo         Repository
	userRepo     users.Repository
	gateway      Gateway
	tracker      analytics.Tracker
	cacheService cache.Service
	secretKey    string
	callbackURL  string
	now          func() time.Time
}

func NewService(repo Repository, userRepo users.Repository, gateway Gateway, tracker analytics.Tracker, cfg *config.Config) Service {
	return &service{
		repo:        repo,
		userRepo:    userRepo,
		gateway:     gateway,
		tracker:     tracker,
		secretKey:   cfg.Paystack.SecretKey,
		callbackURL: strings.TrimRight(cfg.AppURL, "/") + callbackPath,
		now:         time.Now,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// NewReference returns ewait_<unix millis>_<random>
func NewReference(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("ewait_%d_%s", now.UnixMilli(), random)
}

func (s *service) Initialize(ctx context.Context, userID uuid.UUID, req InitializeRequest) (*InitializeResponse, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	plan := users.Plan(strings.ToUpper(strings.TrimSpace(req.Plan)))
	details, ok := Plans[plan]
	if !ok {
		return nil, apperrors.Validation("Invalid plan")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	payment := &Payment{
		UserID:    user.ID,
		Amount:    details.Amount,
		Reference: NewReference(s.now()),
		Plan:      plan,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	result, err := s.gateway.Initialize(ctx, InitializeParams{
		Email:       user.Email,
		Amount:      details.Amount,
		Reference:   payment.Reference,
		CallbackURL: s.callbackURL,
		Metadata: map[string]interface{}{
			"plan":    string(plan),
			"user_id": user.ID.String(),
		},
	})
	if err != nil {
		return nil, apperrors.Upstream("Failed to initialize payment", err)
	}

	s.track(ctx, analytics.EventPaymentInit, user.ID, map[string]interface{}{"plan": plan, "reference": payment.Reference})
	logger.GetDefault().LogPaymentEvent(ctx, "initialize", payment.Reference, user.ID.String())

	return &InitializeResponse{AuthorizationURL: result.AuthorizationURL, Reference: payment.Reference}, nil
}

func (s *service) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.Validation("Reference required")
	}

	payment, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, apperrors.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil && !errors.Is(err, ErrGatewayRejected) {
		return nil, apperrors.Upstream("Failed to verify payment", err)
	}
	if err != nil || tx.Status != transactionSuccess {
		if markErr := s.repo.MarkFailed(ctx, reference); markErr != nil {
			return nil, fmt.Errorf("failed to mark payment failed: %w", markErr)
		}
		s.track(ctx, analytics.EventPaymentFailed, payment.UserID, map[string]interface{}{"reference": reference})
		logger.GetDefault().LogPaymentEvent(ctx, "failed", reference, payment.UserID.String())
		return nil, apperrors.InvalidState("Payment failed")
	}

	paystackRef := tx.Reference
	if paystackRef == "" {
		paystackRef = reference
	}
	expiresAt, err := s.settle(ctx, payment, paystackRef, tx.CustomerCode())
	if err != nil {
		return nil, err
	}

	return &VerifyResponse{Success: true, Plan: payment.Plan, ExpiresAt: expiresAt}, nil
}

// HandleWebhook rejects bad signatures and ignores events it has nothing to do for
func (s *service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !VerifySignature(s.secretKey, body, signature) {
		return apperrors.Validation("Invalid signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.Validation("Invalid webhook payload")
	}
	if event.Event != eventChargeSuccess {
		return nil
	}

	payment, err := s.repo.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			slog.WarnContext(ctx, "webhook for unknown payment", slog.String("reference", event.Data.Reference))
			return nil
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment.Status != StatusPending {
		return nil
	}

	_, err = s.settle(ctx, payment, event.Data.Reference, event.Data.CustomerCode())
	return err
}

// settle marks the payment paid and upgrades the user in one transaction.
// A payment settled earlier keeps the user's current expiry.
func (s *service) settle(ctx context.Context, payment *Payment, paystackRef, customerCode string) (*time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(PlanDuration)
	applied := false

	err := s.repo.Settle(ctx, func(payRepo Repository, userRepo users.Repository) error {
		updated, err := payRepo.MarkSuccess(ctx, payment.Reference, paystackRef, now)
		if err != nil {
			return err
		}
		if !updated {
			user, err := userRepo.GetByID(ctx, payment.UserID)
			if err != nil {
				return err
			}
			if user.PlanExpiresAt != nil {
				expiresAt = *user.PlanExpiresAt
			}
			return nil
		}

		applied = true
		return userRepo.UpgradePlan(ctx, payment.UserID, payment.Plan, expiresAt, customerCode)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}

	if applied {
		s.invalidateUser(ctx, payment.UserID)
		s.track(ctx, analytics.EventPaymentSuccess, payment.UserID, map[string]interface{}{"plan": payment.Plan, "reference": payment.Reference})
		logger.GetDefault().LogPaymentEvent(ctx, "success", payment.Reference, payment.UserID.String())
	}
	return &expiresAt, nil
}

func (s *service) invalidateUser(ctx context.Context, userID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildUserProfileKey(userID.String())); err != nil {
		slog.WarnContext(ctx, "user profile cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (s *service) track(ctx context.Context, event analytics.EventName, userID uuid.UUID, metadata map[string]interface{}) {
	if s.tracker == nil {
		return
	}
	s.tracker.Track(ctx, event, analytics.Refs{UserID: &userID, Metadata: metadata})
}
