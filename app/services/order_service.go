package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/fulfillment"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/event"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/metrics"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// CheckoutInput carries the delivery details of a checkout.
type CheckoutInput struct {
	ShippingAddress string `json:"shipping_address" validate:"omitempty,max=500"`
}

// OrderEvent is the payload of OrderPlaced and OrderStatusChanged.
type OrderEvent struct {
	OrderID    uint               `json:"order_id"`
	Number     string             `json:"order_number"`
	CustomerID uint               `json:"customer_id"`
	FarmerIDs  []uint             `json:"farmer_ids"`
	From       fulfillment.Status `json:"from,omitempty"`
	To         fulfillment.Status `json:"to"`
	ActorID    uint               `json:"actor_id"`
}

// OrderService turns carts into orders and moves orders along the
// fulfillment chain.
type OrderService struct {
	db     *gorm.DB
	orders *repositories.OrderRepository
	carts  *CartService
	cache  cache.Store
	bus    *event.Bus
}

func NewOrderService(db *gorm.DB, carts *CartService, c cache.Store, bus *event.Bus) *OrderService {
	return &OrderService{
		db:     db,
		orders: repositories.NewOrderRepository(db),
		carts:  carts,
		cache:  c,
		bus:    bus,
	}
}

// ── Checkout ─────────────────────────────────────────────────────────────────

// Checkout converts the customer's cart into an order in one transaction:
// every product and its land are re-checked for approval, stock is taken
// with a guarded decrement (a shortfall is OutOfStock), and the order with its items is inserted. Any failure
// rolls everything back and leaves the cart untouched. On success the cart
// is cleared.
func (s *OrderService) Checkout(ctx context.Context, sess *access.Session, in CheckoutInput) (*models.Order, error) {
	if err := authorize(sess, access.RoleCustomer); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.carts.withLock(sess.UserID, func() error {
		c, err := s.carts.store.Load(ctx, sess.UserID)
		if err != nil {
			return apperr.Server(err)
		}
		if c.Empty() {
			return apperr.ErrEmptyCart
		}

		order = &models.Order{
			Number:          uuid.NewString(),
			CustomerID:      sess.UserID,
			Status:          fulfillment.Pending,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		}

		// only tx inside: sqlite runs on a single connection
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			products := repositories.NewProductRepository(tx)
			subtotal := decimal.Zero
			for _, line := range c.Lines {
				p, err := products.FindByID(ctx, line.ProductID)
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.ErrProductUnavailable.WithMessage(line.Name + " is no longer available")
				}
				if err != nil {
					return err
				}
				if !p.Listed() {
					return apperr.ErrProductUnavailable.WithMessage(p.Name + " is not available")
				}
				ok, err := products.TakeStock(ctx, p.ID, line.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return outOfStock(p)
				}

				lineTotal := line.Subtotal()
				subtotal = subtotal.Add(lineTotal)
				order.Items = append(order.Items, models.OrderItem{
					ProductID: p.ID,
					FarmerID:  p.FarmerID,
					Name:      p.Name,
					Unit:      p.Unit,
					UnitPrice: line.Price,
					Quantity:  line.Quantity,
					LineTotal: lineTotal,
				})
			}

			q := s.carts.Quote(subtotal)
			order.Subtotal, order.PlatformFee, order.Shipping, order.Total = q.Subtotal, q.PlatformFee, q.Shipping, q.Total
			return s.orders.Tx(tx).Create(ctx, order)
		})
		if err != nil {
			return err
		}

		if err := s.carts.store.Clear(ctx, sess.UserID); err != nil {
			// the order stands; a stale cart is only advisory
			logger.WithCtx(ctx).Error("checkout: clear cart failed", "customer_id", sess.UserID, "error", err)
		}
		return nil
	})
	if err != nil {
		metrics.Checkouts.WithLabelValues(checkoutResult(err)).Inc()
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Server(err)
	}

	order.Derive()
	metrics.Checkouts.WithLabelValues("ok").Inc()
	invalidateCatalogue(ctx, s.cache)
	logger.WithCtx(ctx).Info("checkout: order placed",
		"order", order.Number, "customer_id", order.CustomerID, "total", order.Total.StringFixed(2))
	s.bus.FireAsync(ctx, event.OrderPlaced, OrderEvent{
		OrderID: order.ID, Number: order.Number, CustomerID: order.CustomerID,
		FarmerIDs: order.FarmerIDs(), To: order.Status, ActorID: sess.UserID,
	})
	return order, nil
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, apperr.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, apperr.ErrProductUnavailable):
		return "unavailable"
	case errors.Is(err, apperr.ErrEmptyCart):
		return "empty"
	}
	return "error"
}

// ── Reads ────────────────────────────────────────────────────────────────────

// List pages the orders visible to the caller: a customer's own, the orders
// holding a farmer's products (with only that farmer's items), or all of
// them for an admin.
func (s *OrderService) List(ctx context.Context, sess *access.Session, status string, p orm.Page) ([]models.Order, orm.Pagination, error) {
	if err := authorize(sess); err != nil {
		return nil, orm.Pagination{}, err
	}
	var (
		orders []models.Order
		pg     orm.Pagination
		err    error
	)
	switch sess.Role {
	case access.RoleCustomer:
		orders, pg, err = s.orders.ForCustomer(ctx, sess.UserID, p)
	case access.RoleFarmer:
		orders, pg, err = s.orders.ForFarmer(ctx, sess.UserID, p)
	case access.RoleAdmin:
		if status != "" {
			st, perr := fulfillment.Parse(status)
			if perr != nil {
				return nil, orm.Pagination{}, apperr.Invalid(apperr.CodeInvalidInput, "%v", perr)
			}
			status = string(st)
		}
		orders, pg, err = s.orders.All(ctx, status, p)
	default:
		return nil, orm.Pagination{}, authorize(sess, access.RoleCustomer, access.RoleFarmer, access.RoleAdmin)
	}
	if err != nil {
		return nil, orm.Pagination{}, apperr.Server(err)
	}
	return orders, pg, nil
}

// Get returns one order the caller may see. Farmers see only their items.
func (s *OrderService) Get(ctx context.Context, sess *access.Session, id uint) (*models.Order, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case sess.Is(access.RoleAdmin):
	case sess.Is(access.RoleCustomer) && o.CustomerID == sess.UserID:
	case sess.Is(access.RoleFarmer) && o.HasFarmer(sess.UserID):
		o.OnlyFarmer(sess.UserID)
	default:
		return nil, apperr.NotFound("order")
	}
	return o, nil
}

// ── Transitions ──────────────────────────────────────────────────────────────

// Advance moves an order to next, given in either the canonical or the
// dispatch vocabulary. Only an admin or a farmer with items in the order
// may call it, and only the single successor or a cancellation is legal.
func (s *OrderService) Advance(ctx context.Context, sess *access.Session, id uint, next string) (*models.Order, error) {
	if err := authorize(sess, access.RoleAdmin, access.RoleFarmer); err != nil {
		return nil, err
	}
	to, err := fulfillment.Parse(next)
	if err != nil {
		return nil, apperr.Invalid(apperr.CodeInvalidInput, "%v", err)
	}
	return s.transition(ctx, sess, id, to)
}

// Cancel cancels an order. The owning customer may cancel only while it is
// pending; fulfillers may cancel until it is delivered. Stock is returned.
func (s *OrderService) Cancel(ctx context.Context, sess *access.Session, id uint) (*models.Order, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}
	return s.transition(ctx, sess, id, fulfillment.Cancelled)
}

func (s *OrderService) transition(ctx context.Context, sess *access.Session, id uint, to fulfillment.Status) (*models.Order, error) {
	var (
		order *models.Order
		from  fulfillment.Status
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.Tx(tx)
		o, err := orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		actor, ok := actorFor(sess, o)
		if !ok {
			return apperr.NotFound("order")
		}
		if actor == fulfillment.ActorCustomer && to != fulfillment.Cancelled {
			return apperr.NotAuthorized(sess.Role.Home(), false)
		}

		from = o.Status
		if err := fulfillment.Check(from, to, actor); err != nil {
			return apperr.Transition(err)
		}
		moved, err := orders.CompareAndSetStatus(ctx, id, from, to)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.Conflict(apperr.CodeInvalidTransition, "order status changed concurrently, reload and retry")
		}
		if to == fulfillment.Cancelled {
			products := repositories.NewProductRepository(tx)
			for _, it := range o.Items {
				if err := products.ReturnStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}
		o.Status = to
		o.Derive()
		order = o
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Server(err)
	}

	metrics.OrderTransitions.WithLabelValues(string(to)).Inc()
	if to == fulfillment.Cancelled {
		invalidateCatalogue(ctx, s.cache)
	}
	logger.WithCtx(ctx).Info("order: status changed", "order", order.Number, "from", from, "to", to, "by", sess.UserID)
	s.bus.FireAsync(ctx, event.OrderStatusChanged, OrderEvent{
		OrderID: order.ID, Number: order.Number, CustomerID: order.CustomerID,
		FarmerIDs: order.FarmerIDs(), From: from, To: to, ActorID: sess.UserID,
	})

	if sess.Is(access.RoleFarmer) {
		order.OnlyFarmer(sess.UserID)
	}
	return order, nil
}

// actorFor decides in which capacity sess acts on o. Callers unrelated to
// the order get ok=false.
func actorFor(sess *access.Session, o *models.Order) (fulfillment.Actor, bool) {
	switch {
	case sess.Is(access.RoleAdmin):
		return fulfillment.ActorFulfiller, true
	case sess.Is(access.RoleFarmer) && o.HasFarmer(sess.UserID):
		return fulfillment.ActorFulfiller, true
	case sess.Is(access.RoleCustomer) && o.CustomerID == sess.UserID:
		return fulfillment.ActorCustomer, true
	}
	return 0, false
}
