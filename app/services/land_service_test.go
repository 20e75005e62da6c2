package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
)

func TestLandCRUD(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.farmer(t)
	sess := sessionOf(f)

	land, err := e.lands.Create(ctx, sess, services.LandInput{
		Name: "North field", Location: "Nashik", AreaAcres: 3.5,
		Crops: []string{"onion", "grapes"}, Facilities: []string{"borewell"},
	})
	require.NoError(t, err)
	assert.Equal(t, moderation.ListingPending, land.Status)
	assert.False(t, land.IsApproved)

	got, err := e.lands.Get(ctx, sess, land.ID)
	require.NoError(t, err)
	assert.Len(t, got.Crops, 2)
	assert.Len(t, got.Facilities, 1)

	updated, err := e.lands.Update(ctx, sess, land.ID, services.LandInput{
		Name: "North field", Location: "Nashik", AreaAcres: 4, Crops: []string{"wheat"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.AreaAcres)
	got, err = e.lands.Get(ctx, sess, land.ID)
	require.NoError(t, err)
	require.Len(t, got.Crops, 1)
	assert.Equal(t, "wheat", got.Crops[0].Name)
	assert.Empty(t, got.Facilities)

	_, err = e.lands.Get(ctx, sessionOf(e.farmer(t)), land.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	lands, _, err := e.lands.List(ctx, sessionOf(e.admin(t)), "pending", firstPage)
	require.NoError(t, err)
	assert.Len(t, lands, 1)

	require.NoError(t, e.lands.Delete(ctx, sess, land.ID))
	_, err = e.lands.Get(ctx, sess, land.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPendingFarmerCannotListLand(t *testing.T) {
	e := newEnv(t)
	f := e.user(t, access.RoleFarmer, moderation.AccountPending)

	_, err := e.lands.Create(context.Background(), sessionOf(f), services.LandInput{Name: "x", Location: "y", AreaAcres: 1})
	e1, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeAccountInactive, e1.Code)
	assert.Equal(t, "/farmer", e1.Redirect)

	_, err = e.lands.Create(context.Background(), sessionOf(e.customer(t)), services.LandInput{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestLandWithProductsCannotBeDeleted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.farmer(t)
	land := e.land(t, f.ID, moderation.ListingApproved)
	p := e.product(t, land, moderation.ListingApproved, 1, "5")

	err := e.lands.Delete(ctx, sessionOf(f), land.ID)
	assert.Equal(t, apperr.CodeInUse, apperr.CodeOf(err))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, e.products.Delete(ctx, sessionOf(f), p.ID))
	require.NoError(t, e.lands.Delete(ctx, sessionOf(e.admin(t)), land.ID))
}
