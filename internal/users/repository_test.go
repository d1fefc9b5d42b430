package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewait/internal/shared/testutil"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &User{})
	repo := NewRepository(db)
	ctx := context.Background()

	user := &User{Email: "owner@shop.ng", Name: "Mama Put", PasswordHash: "x", Role: RoleAdmin}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "owner@shop.ng")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, PlanFree, byEmail.Plan)

	exists, err := repo.EmailExists(ctx, "owner@shop.ng")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepositoryUpgradePlan(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &User{})
	repo := NewRepository(db)
	ctx := context.Background()

	user := &User{Email: "b@shop.ng", Name: "B", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))

	expires := time.Now().UTC().Add(30 * 24 * time.Hour)
	require.NoError(t, repo.UpgradePlan(ctx, user.ID, PlanBusiness, expires, "CUS_123"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanBusiness, got.Plan)
	require.NotNil(t, got.PaystackCustomerID)
	assert.Equal(t, "CUS_123", *got.PaystackCustomerID)
	assert.True(t, got.HasActivePlan(time.Now()))

	assert.ErrorIs(t, repo.UpgradePlan(ctx, uuid.New(), PlanStarter, expires, ""), ErrUserNotFound)
}
