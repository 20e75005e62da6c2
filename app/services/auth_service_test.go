package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/auth"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

func TestLoginExpiryDependsOnRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin, customer := e.admin(t), e.customer(t)

	res, err := e.auth.Login(ctx, admin.Email, testPassword)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(45*time.Minute), res.ExpiresAt, 2*time.Second)
	assert.Equal(t, access.RoleAdmin, res.User.Role)

	res, err = e.auth.Login(ctx, "  "+customer.Email+" ", testPassword)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, 2*time.Second)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.customer(t)

	_, err := e.auth.Login(ctx, u.Email, "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = e.auth.Login(ctx, "nobody@krishi.test", testPassword)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestValidateThenLogoutRevokes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.farmer(t)

	res, err := e.auth.Login(ctx, f.Email, testPassword)
	require.NoError(t, err)

	sess, err := e.auth.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.ID, sess.UserID)
	assert.Equal(t, access.RoleFarmer, sess.Role)
	assert.True(t, sess.Active())

	require.NoError(t, e.auth.Logout(ctx, res.Token))
	_, err = e.auth.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)

	assert.NoError(t, e.auth.Logout(ctx, "not-a-token"))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.admin(t)

	past := auth.NewIssuer(testSecret, 45*time.Minute, 24*time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-46 * time.Minute) })
	old := services.NewAuthService(e.db, past, session.NewRevocations(e.cache), e.bus)
	res, err := old.Login(ctx, u.Email, testPassword)
	require.NoError(t, err)
	require.True(t, res.ExpiresAt.Before(time.Now()))

	_, err = e.auth.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestValidateReflectsStatusAndDeletion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.user(t, access.RoleFarmer, moderation.AccountPending)

	res, err := e.auth.Login(ctx, f.Email, testPassword)
	require.NoError(t, err)
	sess, err := e.auth.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.False(t, sess.Active())

	_, err = e.moderation.TransitionFarmer(ctx, sessionOf(e.admin(t)), f.ID, "verify", "")
	require.NoError(t, err)
	sess, err = e.auth.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, sess.Active(), "status is re-read on every validation")

	require.NoError(t, e.db.Delete(f).Error)
	_, err = e.auth.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f, err := e.auth.Register(ctx, services.RegisterInput{
		Name: "Sita", Email: "Sita@Krishi.test", Password: "long-enough", Role: access.RoleFarmer,
	})
	require.NoError(t, err)
	assert.Equal(t, moderation.AccountPending, f.Status)
	assert.Equal(t, "sita@krishi.test", f.Email)

	c, err := e.auth.Register(ctx, services.RegisterInput{
		Name: "Asha", Email: "asha@krishi.test", Password: "long-enough", Role: access.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, moderation.AccountActive, c.Status)

	_, err = e.auth.Register(ctx, services.RegisterInput{
		Name: "Sita again", Email: "sita@krishi.test", Password: "long-enough", Role: access.RoleCustomer,
	})
	assert.Equal(t, apperr.CodeDuplicate, apperr.CodeOf(err))

	_, err = e.auth.Register(ctx, services.RegisterInput{
		Name: "Boss", Email: "boss@krishi.test", Password: "long-enough", Role: access.RoleAdmin,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.farmer(t)
	land := e.land(t, f.ID, moderation.ListingApproved)
	e.product(t, land, moderation.ListingApproved, 5, "10")

	res, err := e.auth.Login(ctx, f.Email, testPassword)
	require.NoError(t, err)
	sess := sessionOf(f)

	err = e.auth.DeleteAccount(ctx, sess, res.Token, "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "a wrong password must not end the session")

	require.NoError(t, e.auth.DeleteAccount(ctx, sess, res.Token, testPassword))

	_, err = e.auth.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
	var n int64
	e.db.Table("lands").Where("farmer_id = ?", f.ID).Count(&n)
	assert.Zero(t, n)
	e.db.Table("products").Where("farmer_id = ?", f.ID).Count(&n)
	assert.Zero(t, n)

	assert.True(t, errors.Is(e.auth.DeleteAccount(ctx, nil, "", ""), apperr.ErrAuth))
}
