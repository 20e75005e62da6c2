package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/fulfillment"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

var addr = services.CheckoutInput{ShippingAddress: "12 Market Road, Nashik"}

func (e *env) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

// placeOrder checks out qty of p for a fresh customer.
func (e *env) placeOrder(t *testing.T, p *models.Product, qty int) (*access.Session, *models.Order) {
	t.Helper()
	ctx := context.Background()
	cust := sessionOf(e.customer(t))
	_, err := e.carts.AddToCart(ctx, cust, p.ID, qty)
	require.NoError(t, err)
	o, err := e.orders.Checkout(ctx, cust, addr)
	require.NoError(t, err)
	return cust, o
}

func TestCheckoutLastUnitsGoToFirstBuyer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.orderable(t, 3, "60")
	a, b := sessionOf(e.customer(t)), sessionOf(e.customer(t))

	_, err := e.carts.AddToCart(ctx, a, p.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddToCart(ctx, b, p.ID, 2)
	require.NoError(t, err)

	order, err := e.orders.Checkout(ctx, a, addr)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Pending, order.Status)
	assert.Equal(t, 1, e.stockOf(t, p.ID))

	_, err = e.orders.Checkout(ctx, b, addr)
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	view, err := e.carts.Get(ctx, b)
	require.NoError(t, err)
	line, ok := view.Find(p.ID)
	require.True(t, ok, "a failed checkout leaves the cart alone")
	assert.Equal(t, 2, line.Quantity)
	assert.EqualValues(t, 1, e.orderCount(t))

	view, err = e.carts.Get(ctx, a)
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestCheckoutAfterStockRunsOutIsConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.orderable(t, 2, "32")
	a, b := sessionOf(e.customer(t)), sessionOf(e.customer(t))

	_, err := e.carts.AddToCart(ctx, a, p.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddToCart(ctx, b, p.ID, 2)
	require.NoError(t, err)

	_, err = e.orders.Checkout(ctx, a, addr)
	require.NoError(t, err)
	require.Zero(t, e.stockOf(t, p.ID))

	_, err = e.orders.Checkout(ctx, b, addr)
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	view, err := e.carts.Get(ctx, b)
	require.NoError(t, err)
	line, ok := view.Find(p.ID)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.EqualValues(t, 1, e.orderCount(t))
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.orderable(t, 3, "10")

	var buyers []*access.Session
	for range 6 {
		s := sessionOf(e.customer(t))
		_, err := e.carts.AddToCart(ctx, s, p.ID, 1)
		require.NoError(t, err)
		buyers = append(buyers, s)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		declined int
	)
	for _, s := range buyers {
		wg.Add(1)
		go func(s *access.Session) {
			defer wg.Done()
			_, err := e.orders.Checkout(ctx, s, addr)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case apperr.CodeOf(err) == apperr.CodeOutOfStock:
				declined++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(s)
	}
	wg.Wait()

	assert.Equal(t, 3, placed)
	assert.Equal(t, 3, declined)
	assert.Zero(t, e.stockOf(t, p.ID))
}

func TestCheckoutIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust := sessionOf(e.customer(t))
	a, b := e.orderable(t, 5, "10"), e.orderable(t, 5, "20")

	_, err := e.carts.AddToCart(ctx, cust, a.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddToCart(ctx, cust, b.ID, 2)
	require.NoError(t, err)
	require.NoError(t, e.db.Model(b).Update("status", moderation.ListingPending).Error)

	_, err = e.orders.Checkout(ctx, cust, addr)
	assert.ErrorIs(t, err, apperr.ErrProductUnavailable)
	assert.Equal(t, 5, e.stockOf(t, a.ID), "stock taken for earlier lines is rolled back")
	assert.Zero(t, e.orderCount(t))

	view, err := e.carts.Get(ctx, cust)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	e := newEnv(t)
	_, err := e.orders.Checkout(context.Background(), sessionOf(e.customer(t)), addr)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	_, err = e.orders.Checkout(context.Background(), sessionOf(e.farmer(t)), addr)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCheckoutTotals(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust := sessionOf(e.customer(t))
	a, b := e.orderable(t, 10, "100"), e.orderable(t, 10, "25.50")

	_, err := e.carts.AddToCart(ctx, cust, a.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddToCart(ctx, cust, b.ID, 1)
	require.NoError(t, err)

	o, err := e.orders.Checkout(ctx, cust, addr)
	require.NoError(t, err)
	assert.True(t, dec("225.50").Equal(o.Subtotal), o.Subtotal.String())
	assert.True(t, dec("11.28").Equal(o.PlatformFee), o.PlatformFee.String())
	assert.True(t, o.Shipping.IsZero())
	assert.True(t, dec("236.78").Equal(o.Total), o.Total.String())
	assert.Len(t, o.Items, 2)
	assert.NotEmpty(t, o.Number)
	assert.Equal(t, "Processing", o.StatusLabel)

	got, err := e.orders.Get(ctx, cust, o.ID)
	require.NoError(t, err)
	assert.True(t, dec("236.78").Equal(got.Total))
	assert.Equal(t, addr.ShippingAddress, got.ShippingAddress)
}

func TestOrderStatusChain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	_, o := e.placeOrder(t, e.orderable(t, 5, "10"), 1)

	_, err := e.orders.Advance(ctx, admin, o.ID, "delivered")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "steps cannot be skipped")

	got, err := e.orders.Advance(ctx, admin, o.ID, "Order Placed")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Confirmed, got.Status)
	assert.Equal(t, "Order Placed", got.StatusLabel)

	got, err = e.orders.Advance(ctx, admin, o.ID, "Dispatched")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Shipped, got.Status)

	_, err = e.orders.Advance(ctx, admin, o.ID, "In-Transit")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	got, err = e.orders.Advance(ctx, admin, o.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Delivered, got.Status)

	_, err = e.orders.Cancel(ctx, admin, o.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = e.orders.Advance(ctx, admin, o.ID, "lost")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCustomerCancellation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := sessionOf(e.admin(t))
	p := e.orderable(t, 5, "10")

	cust, o := e.placeOrder(t, p, 2)
	assert.Equal(t, 3, e.stockOf(t, p.ID))

	_, err := e.orders.Advance(ctx, cust, o.ID, "confirmed")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := e.orders.Cancel(ctx, cust, o.ID)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Cancelled, got.Status)
	assert.Equal(t, 5, e.stockOf(t, p.ID), "cancelling returns the stock")

	cust, o = e.placeOrder(t, p, 1)
	_, err = e.orders.Advance(ctx, admin, o.ID, "confirmed")
	require.NoError(t, err)
	_, err = e.orders.Cancel(ctx, cust, o.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = e.orders.Cancel(ctx, sessionOf(e.customer(t)), o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err = e.orders.Cancel(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.Cancelled, got.Status)
	assert.Equal(t, 5, e.stockOf(t, p.ID))
}

func TestFarmerSeesOnlyOwnItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust := sessionOf(e.customer(t))
	a, b := e.orderable(t, 5, "10"), e.orderable(t, 5, "20")
	farmerA := &access.Session{UserID: a.FarmerID, Role: access.RoleFarmer, Status: access.StatusActive}

	_, err := e.carts.AddToCart(ctx, cust, a.ID, 1)
	require.NoError(t, err)
	_, err = e.carts.AddToCart(ctx, cust, b.ID, 1)
	require.NoError(t, err)
	o, err := e.orders.Checkout(ctx, cust, addr)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.FarmerID, b.FarmerID}, o.FarmerIDs())

	got, err := e.orders.Get(ctx, farmerA, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, a.ID, got.Items[0].ProductID)

	list, pg, err := e.orders.List(ctx, farmerA, "", orm.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pg.Total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 1)

	advanced, err := e.orders.Advance(ctx, farmerA, o.ID, "confirmed")
	require.NoError(t, err)
	assert.Len(t, advanced.Items, 1)

	stranger := sessionOf(e.farmer(t))
	_, err = e.orders.Get(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.orders.Advance(ctx, stranger, o.ID, "shipped")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, _, err := e.orders.List(ctx, sessionOf(e.admin(t)), "Order Placed", orm.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Items, 2)
}
