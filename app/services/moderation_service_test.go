package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

func TestFarmerLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	f := e.user(t, access.RoleFarmer, moderation.AccountPending)

	u, err := e.moderation.TransitionFarmer(ctx, admin, f.ID, "verify", "documents ok")
	require.NoError(t, err)
	assert.Equal(t, moderation.AccountActive, u.Status)

	_, err = e.moderation.TransitionFarmer(ctx, admin, f.ID, "reject", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "an active farmer can only be suspended")

	u, err = e.moderation.TransitionFarmer(ctx, admin, f.ID, "suspend", "complaints")
	require.NoError(t, err)
	assert.Equal(t, moderation.AccountSuspended, u.Status)

	u, err = e.moderation.TransitionFarmer(ctx, admin, f.ID, "reactivate", "")
	require.NoError(t, err)
	assert.Equal(t, moderation.AccountActive, u.Status)

	audits, err := e.moderation.Audits(ctx, admin, services.EntityFarmer, 0)
	require.NoError(t, err)
	require.Len(t, audits, 3)
	assert.Equal(t, "reactivate", audits[0].Action)
	assert.Equal(t, "verify", audits[2].Action)
	assert.Equal(t, admin.UserID, audits[2].ActorID)
}

func TestSuspensionKeepsApprovedListingsOrderable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	f := e.farmer(t)
	p := e.product(t, e.land(t, f.ID, moderation.ListingApproved), moderation.ListingApproved, 5, "10")

	_, err := e.moderation.TransitionFarmer(ctx, admin, f.ID, "suspend", "")
	require.NoError(t, err)

	page, err := e.products.Catalogue(ctx, repositories.ProductFilter{}, firstPage)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, p.ID, page.Items[0].ID)

	_, err = e.carts.AddToCart(ctx, sessionOf(e.customer(t)), p.ID, 1)
	assert.NoError(t, err)

	var suspended models.User
	require.NoError(t, e.db.First(&suspended, f.ID).Error)
	require.Equal(t, moderation.AccountSuspended, suspended.Status)
	_, err = e.products.Create(ctx, sessionOf(&suspended), services.ProductInput{LandID: p.LandID, Name: "Garlic", Price: dec("40"), Stock: 3, Unit: "kg"})
	assert.ErrorIs(t, err, apperr.ErrForbidden, "a suspended farmer cannot list anything new")
}

func TestRejectedFarmerIsTerminal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	f := e.user(t, access.RoleFarmer, moderation.AccountPending)

	_, err := e.moderation.TransitionFarmer(ctx, admin, f.ID, "reject", "incomplete")
	require.NoError(t, err)

	for _, action := range []string{"verify", "reject", "suspend", "reactivate"} {
		_, err := e.moderation.TransitionFarmer(ctx, admin, f.ID, action, "")
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition, action)
	}
}

func TestFarmerTransitionGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	f := e.user(t, access.RoleFarmer, moderation.AccountPending)

	_, err := e.moderation.TransitionFarmer(ctx, nil, f.ID, "verify", "")
	e1, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuth, e1.Kind)
	assert.Equal(t, access.LoginRoute, e1.Redirect)

	_, err = e.moderation.TransitionFarmer(ctx, sessionOf(e.customer(t)), f.ID, "verify", "")
	e2, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindForbidden, e2.Kind)
	assert.Equal(t, "/customer", e2.Redirect)

	_, err = e.moderation.TransitionFarmer(ctx, admin, f.ID, "promote", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.moderation.TransitionFarmer(ctx, admin, e.customer(t).ID, "verify", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	farmers, pg, err := e.moderation.Farmers(ctx, admin, "pending", orm.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, farmers, 1)
	assert.Equal(t, f.ID, farmers[0].ID)
	assert.EqualValues(t, 1, pg.Total)
}

func TestListingRemoderation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	land := e.land(t, e.farmer(t).ID, moderation.ListingPending)

	l, err := e.moderation.TransitionLand(ctx, admin, land.ID, "approve", "")
	require.NoError(t, err)
	assert.True(t, l.IsApproved)

	l, err = e.moderation.TransitionLand(ctx, admin, land.ID, "reject", "blurry survey")
	require.NoError(t, err)
	assert.False(t, l.IsApproved)
	assert.Equal(t, moderation.ListingRejected, l.Status)

	l, err = e.moderation.TransitionLand(ctx, admin, land.ID, "approve", "")
	require.NoError(t, err)
	assert.True(t, l.IsApproved)

	p := e.product(t, land, moderation.ListingPending, 4, "12.50")
	got, err := e.moderation.TransitionProduct(ctx, admin, p.ID, "approve", "")
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
	got, err = e.moderation.TransitionProduct(ctx, admin, p.ID, "pending", "recheck price")
	require.NoError(t, err)
	assert.False(t, got.IsApproved)
	assert.Equal(t, "recheck price", got.Notes)

	audits, err := e.moderation.Audits(ctx, admin, "", 10)
	require.NoError(t, err)
	assert.Len(t, audits, 5)

	_, err = e.moderation.TransitionProduct(ctx, admin, p.ID, "archive", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = e.moderation.TransitionLand(ctx, admin, 9999, "approve", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBulkApproveReportsEachItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	f := e.farmer(t)

	var ids []uint
	for range 5 {
		ids = append(ids, e.land(t, f.ID, moderation.ListingPending).ID)
	}
	gone := ids[2]
	require.NoError(t, e.db.Exec("DELETE FROM lands WHERE id = ?", gone).Error)

	report, err := e.moderation.BulkLands(ctx, admin, append(ids, ids[0]), "approve", "")
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 4)
	assert.NotContains(t, report.Succeeded, gone)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "land not found", report.Failed[gone])

	for _, id := range report.Succeeded {
		l, err := e.lands.Get(ctx, admin, id)
		require.NoError(t, err)
		assert.True(t, l.IsApproved)
	}

	_, err = e.moderation.BulkLands(ctx, admin, nil, "approve", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.moderation.BulkProducts(ctx, admin, ids, "explode", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.moderation.BulkProducts(ctx, sessionOf(f), ids, "approve", "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
