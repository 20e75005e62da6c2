package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/cart"
	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/metrics"
)

// CartView is a cart with the charges checkout would apply.
type CartView struct {
	*cart.Cart
	Quote cart.Quote `json:"quote"`
}

// CartService mutates customer carts. Writes to one customer's cart are
// serialised in-process; the cart is advisory and checkout re-validates.
//
// Policy: a product that is not approved, or sits on land that is not, is
// ProductUnavailable. A stock shortfall, including no stock at all, is
// OutOfStock; checkout follows the same rule. AddToCart rejects a quantity
// above stock, while UpdateCartItem clamps it to the line limit silently.
type CartService struct {
	products *repositories.ProductRepository
	store    *cart.Store
	feeRate  decimal.Decimal
	locks    sync.Map // customer id -> *sync.Mutex
}

func NewCartService(db *gorm.DB, store *cart.Store, feeRate decimal.Decimal) *CartService {
	return &CartService{
		products: repositories.NewProductRepository(db),
		store:    store,
		feeRate:  feeRate,
	}
}

// withLock runs fn holding the customer's cart lock.
func (s *CartService) withLock(customerID uint, fn func() error) error {
	mu, _ := s.locks.LoadOrStore(customerID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()
	return fn()
}

// Quote applies the platform fee to subtotal.
func (s *CartService) Quote(subtotal decimal.Decimal) cart.Quote {
	return cart.NewQuote(subtotal, s.feeRate)
}

// Get returns the customer's cart as stored. Lines are not re-validated.
func (s *CartService) Get(ctx context.Context, sess *access.Session) (*CartView, error) {
	if err := authorize(sess, access.RoleCustomer); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Server(err)
	}
	return s.view(c), nil
}

// AddToCart adds qty of product to the cart. The product must be orderable
// and qty at most its stock. An existing line is summed and clamped to the
// line limit; a new line snapshots the current price.
func (s *CartService) AddToCart(ctx context.Context, sess *access.Session, productID uint, qty int) (*CartView, error) {
	if err := authorize(sess, access.RoleCustomer); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, apperr.InvalidFields(map[string]string{"quantity": "The quantity must be at least 1."})
	}

	var out *CartView
	err := s.withLock(sess.UserID, func() error {
		p, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !p.Listed() {
			return apperr.ErrProductUnavailable.WithMessage(p.Name + " is not available")
		}
		if qty > p.Stock {
			return outOfStock(p)
		}

		c, err := s.store.Load(ctx, sess.UserID)
		if err != nil {
			return apperr.Server(err)
		}
		line, ok := c.Find(productID)
		if !ok {
			line = cart.Line{ProductID: p.ID, Name: p.Name, Unit: p.Unit, Price: p.Price}
		}
		line.Quantity = min(line.Quantity+qty, p.Limit())
		c.Put(line)
		if err := s.store.Save(ctx, c); err != nil {
			return apperr.Server(err)
		}
		out = s.view(c)
		return nil
	})
	s.count("add", err)
	return out, err
}

func outOfStock(p *models.Product) error {
	if p.Stock < 1 {
		return apperr.Conflict(apperr.CodeOutOfStock, "%s is out of stock", p.Name)
	}
	return apperr.Conflict(apperr.CodeOutOfStock, "only %d %s of %s left", p.Stock, p.Unit, p.Name)
}

// UpdateCartItem sets a line's quantity. qty < 1 removes the line; a qty
// above the line limit is clamped to it. Updating a product that is not in
// the cart is NotFound.
func (s *CartService) UpdateCartItem(ctx context.Context, sess *access.Session, productID uint, qty int) (*CartView, error) {
	if err := authorize(sess, access.RoleCustomer); err != nil {
		return nil, err
	}

	var out *CartView
	err := s.withLock(sess.UserID, func() error {
		c, err := s.store.Load(ctx, sess.UserID)
		if err != nil {
			return apperr.Server(err)
		}
		line, ok := c.Find(productID)
		if !ok {
			return apperr.NotFound("cart item")
		}

		if qty < 1 {
			c.Remove(productID)
		} else {
			p, err := s.products.FindByID(ctx, productID)
			if err != nil {
				return err
			}
			limit := p.Limit()
			if limit < 1 {
				return outOfStock(p)
			}
			line.Quantity = min(qty, limit)
			c.Put(line)
		}
		if err := s.store.Save(ctx, c); err != nil {
			return apperr.Server(err)
		}
		out = s.view(c)
		return nil
	})
	s.count("update", err)
	return out, err
}

// RemoveFromCart drops a line. Removing an absent line succeeds.
func (s *CartService) RemoveFromCart(ctx context.Context, sess *access.Session, productID uint) (*CartView, error) {
	if err := authorize(sess, access.RoleCustomer); err != nil {
		return nil, err
	}
	var out *CartView
	err := s.withLock(sess.UserID, func() error {
		c, err := s.store.Load(ctx, sess.UserID)
		if err != nil {
			return apperr.Server(err)
		}
		if c.Remove(productID) {
			if err := s.store.Save(ctx, c); err != nil {
				return apperr.Server(err)
			}
		}
		out = s.view(c)
		return nil
	})
	s.count("remove", err)
	return out, err
}

// ClearCart empties the cart. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, sess *access.Session) error {
	if err := authorize(sess, access.RoleCustomer); err != nil {
		return err
	}
	err := s.withLock(sess.UserID, func() error {
		if err := s.store.Clear(ctx, sess.UserID); err != nil {
			return apperr.Server(err)
		}
		return nil
	})
	s.count("clear", err)
	return err
}

func (s *CartService) view(c *cart.Cart) *CartView {
	return &CartView{Cart: c, Quote: s.Quote(c.Total())}
}

func (s *CartService) count(op string, err error) {
	metrics.CartOperations.WithLabelValues(op, metrics.Result(err)).Inc()
}
