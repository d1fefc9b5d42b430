package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ewait/internal/analytics"
	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/config"
	"ewait/internal/shared/testutil"
	"ewait/internal/users"
)

const testSecret = "sk_test_secret"

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.EventName
}

func (r *recordingTracker) Track(_ context.Context, event analytics.EventName, _ analytics.Refs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// fakePaystack answers initialize and verify; verifyStatus decides the transaction outcome
type fakePaystack struct {
	mu           sync.Mutex
	verifyStatus string
	initialized  []InitializeParams
}

func (f *fakePaystack) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.URL.Path == "/transaction/initialize":
			var params InitializeParams
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
			f.initialized = append(f.initialized, params)
			fmt.Fprintf(w, `{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/%s","reference":"%s"}}`, params.Reference, params.Reference)
		case strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
			ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
			fmt.Fprintf(w, `{"status":true,"data":{"status":"%s","reference":"%s","customer":{"customer_code":"CUS_1"}}}`, f.verifyStatus, ref)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":false,"message":"not found"}`))
		}
	})
}

type paymentFixture struct {
	db      *gorm.DB
	svc     *service
	gateway *fakePaystack
	tracker *recordingTracker
	user    *users.User
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &users.User{}, &Payment{})

	gateway := &fakePaystack{verifyStatus: "success"}
	srv := httptest.NewServer(gateway.handler(t))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AppURL:   "https://ewait.test/",
		Paystack: config.PaystackConfig{SecretKey: testSecret, BaseURL: srv.URL},
	}
	tracker := &recordingTracker{}
	userRepo := users.NewRepository(db)
	svc := NewService(NewRepository(db), userRepo, NewPaystackClient(cfg.Paystack), tracker, cfg).(*service)

	user := &users.User{Email: "owner@example.com", Name: "Owner", PasswordHash: "x", Role: users.RoleAdmin, Plan: users.PlanFree}
	require.NoError(t, userRepo.Create(context.Background(), user))

	return &paymentFixture{db: db, svc: svc, gateway: gateway, tracker: tracker, user: user}
}

func (f *paymentFixture) reloadUser(t *testing.T) *users.User {
	t.Helper()
	var user users.User
	require.NoError(t, f.db.First(&user, "id = ?", f.user.ID).Error)
	return &user
}

func (f *paymentFixture) payment(t *testing.T, reference string) Payment {
	t.Helper()
	var p Payment
	require.NoError(t, f.db.Where("reference = ?", reference).First(&p).Error)
	return p
}

func TestInitializeCreatesPendingPayment(t *testing.T) {
	f := newPaymentFixture(t)

	resp, err := f.svc.Initialize(context.Background(), f.user.ID, InitializeRequest{Plan: "BUSINESS"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Reference, "ewait_"))
	assert.Equal(t, "https://checkout.paystack.com/"+resp.Reference, resp.AuthorizationURL)

	p := f.payment(t, resp.Reference)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, int64(1500000), p.Amount)
	assert.Equal(t, users.PlanBusiness, p.Plan)

	require.Len(t, f.gateway.initialized, 1)
	sent := f.gateway.initialized[0]
	assert.Equal(t, "owner@example.com", sent.Email)
	assert.Equal(t, "https://ewait.test/admin/billing/callback", sent.CallbackURL)
	assert.Equal(t, f.user.ID.String(), sent.Metadata["user_id"])
	assert.Equal(t, "BUSINESS", sent.Metadata["plan"])

	assert.Equal(t, []analytics.EventName{analytics.EventPaymentInit}, f.tracker.events)
}

func TestInitializeRejectsUnknownPlan(t *testing.T) {
	f := newPaymentFixture(t)

	for _, plan := range []string{"", "FREE", "PLATINUM"} {
		_, err := f.svc.Initialize(context.Background(), f.user.ID, InitializeRequest{Plan: plan})
		require.Error(t, err, plan)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), plan)
	}
	assert.Empty(t, f.gateway.initialized)
}

func TestInitializeUnknownUser(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Initialize(context.Background(), uuid.New(), InitializeRequest{Plan: "STARTER"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestVerifySuccessUpgradesPlan(t *testing.T) {
	f := newPaymentFixture(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	ctx := context.Background()

	init, err := f.svc.Initialize(ctx, f.user.ID, InitializeRequest{Plan: "STARTER"})
	require.NoError(t, err)

	resp, err := f.svc.Verify(ctx, init.Reference)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, users.PlanStarter, resp.Plan)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, now.Add(PlanDuration), *resp.ExpiresAt)

	p := f.payment(t, init.Reference)
	assert.Equal(t, StatusSuccess, p.Status)
	require.NotNil(t, p.PaidAt)

	user := f.reloadUser(t)
	assert.Equal(t, users.PlanStarter, user.Plan)
	require.NotNil(t, user.PlanExpiresAt)
	assert.True(t, user.PlanExpiresAt.Equal(now.Add(PlanDuration)))
	require.NotNil(t, user.PaystackCustomerID)
	assert.Equal(t, "CUS_1", *user.PaystackCustomerID)

	// a second verify keeps the first expiry
	f.svc.now = func() time.Time { return now.Add(time.Hour) }
	again, err := f.svc.Verify(ctx, init.Reference)
	require.NoError(t, err)
	assert.True(t, again.ExpiresAt.Equal(now.Add(PlanDuration)))

	assert.Equal(t, []analytics.EventName{analytics.EventPaymentInit, analytics.EventPaymentSuccess}, f.tracker.events)
}

func TestVerifyFailedTransaction(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.verifyStatus = "abandoned"
	ctx := context.Background()

	init, err := f.svc.Initialize(ctx, f.user.ID, InitializeRequest{Plan: "STARTER"})
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, init.Reference)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidState))

	assert.Equal(t, StatusFailed, f.payment(t, init.Reference).Status)
	assert.Equal(t, users.PlanFree, f.reloadUser(t).Plan)
}

func TestVerifyInput(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Verify(context.Background(), " ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = f.svc.Verify(context.Background(), "ewait_1_missing")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func webhookBody(t *testing.T, event, reference string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data": map[string]interface{}{
			"reference": reference,
			"status":    "success",
			"customer":  map[string]string{"customer_code": "CUS_hook"},
		},
	})
	require.NoError(t, err)
	return raw
}

func TestWebhookChargeSuccess(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	init, err := f.svc.Initialize(ctx, f.user.ID, InitializeRequest{Plan: "ENTERPRISE"})
	require.NoError(t, err)

	body := webhookBody(t, "charge.success", init.Reference)
	require.NoError(t, f.svc.HandleWebhook(ctx, body, Sign(testSecret, body)))

	assert.Equal(t, StatusSuccess, f.payment(t, init.Reference).Status)
	user := f.reloadUser(t)
	assert.Equal(t, users.PlanEnterprise, user.Plan)
	require.NotNil(t, user.PaystackCustomerID)
	assert.Equal(t, "CUS_hook", *user.PaystackCustomerID)

	// redelivery is a no-op
	require.NoError(t, f.svc.HandleWebhook(ctx, body, Sign(testSecret, body)))
	assert.Equal(t, []analytics.EventName{analytics.EventPaymentInit, analytics.EventPaymentSuccess}, f.tracker.events)
}

func TestWebhookSignatureAndIgnoredEvents(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	body := webhookBody(t, "charge.success", "ewait_1_x")
	err := f.svc.HandleWebhook(ctx, body, Sign("wrong", body))
	require.Error(t, err)
	assert.Equal(t, "Invalid signature", err.Error())

	unknown := webhookBody(t, "charge.success", "ewait_1_unknown")
	assert.NoError(t, f.svc.HandleWebhook(ctx, unknown, Sign(testSecret, unknown)))

	other := webhookBody(t, "transfer.success", "ewait_1_x")
	assert.NoError(t, f.svc.HandleWebhook(ctx, other, Sign(testSecret, other)))
}

func TestWebhookRejectedWithoutSecretKey(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	init, err := f.svc.Initialize(ctx, f.user.ID, InitializeRequest{Plan: "STARTER"})
	require.NoError(t, err)

	f.svc.secretKey = ""
	body := webhookBody(t, "charge.success", init.Reference)
	err = f.svc.HandleWebhook(ctx, body, Sign("", body))
	require.Error(t, err)
	assert.Equal(t, "Invalid signature", err.Error())

	assert.Equal(t, StatusPending, f.payment(t, init.Reference).Status)
	assert.Equal(t, users.PlanFree, f.reloadUser(t).Plan)
}

func TestNewReferenceFormat(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	ref := NewReference(now)

	parts := strings.Split(ref, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "ewait", parts[0])
	assert.Equal(t, "1767225600000", parts[1])
	assert.Len(t, parts[2], 12)
	assert.NotEqual(t, ref, NewReference(now))
}
