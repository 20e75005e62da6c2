package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// ── Session ──────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.session.Login(ctx, Credentials{Email: email, Password: password})
}

// Logout revokes the token on the server when it can, then clears the
// local session regardless.
func (c *Client) Logout(ctx context.Context) {
	if token := c.session.Token(); token != "" {
		if err := c.send(ctx, http.MethodPost, "/auth/logout", token, nil, nil); err != nil {
			logger.WithCtx(ctx).Debug("client: server logout failed", "error", err)
		}
	}
	c.session.Logout()
}

func (c *Client) Register(ctx context.Context, in Registration) (*User, error) {
	var u User
	if err := c.send(ctx, http.MethodPost, "/auth/register", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me validates the session and returns the fresh profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	return c.session.Validate(ctx)
}

// ── Catalogue ────────────────────────────────────────────────────────────────

// ProductQuery filters the public catalogue.
type ProductQuery struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Products lists orderable products. No session is needed.
func (c *Client) Products(ctx context.Context, q ProductQuery) (*Page[Product], error) {
	var page Page[Product]
	if err := c.do(ctx, http.MethodGet, "/products"+q.encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Product(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ── Cart ─────────────────────────────────────────────────────────────────────

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*Cart, error) {
	if err := c.authorize(ctx, false, access.RoleCustomer); err != nil {
		return nil, err
	}
	var cart Cart
	if err := c.do(ctx, method, path, body, &cart); err != nil {
		return nil, err
	}
	c.cart.set(&cart)
	return &cart, nil
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

// AddToCart adds quantity of productID, merging with an existing line.
func (c *Client) AddToCart(ctx context.Context, productID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, apperr.InvalidFields(map[string]string{"quantity": "The quantity must be at least 1."})
	}
	return c.cartCall(ctx, http.MethodPost, "/cart/items", map[string]any{"product_id": productID, "quantity": quantity})
}

// UpdateCartItem sets a line's quantity; zero removes the line.
func (c *Client) UpdateCartItem(ctx context.Context, productID uint, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, apperr.InvalidFields(map[string]string{"quantity": "The quantity must not be negative."})
	}
	return c.cartCall(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", productID), map[string]int{"quantity": quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID uint) (*Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	if err := c.authorize(ctx, false, access.RoleCustomer); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, "/cart", nil, nil); err != nil {
		return err
	}
	c.cart.Clear()
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

// Checkout turns the cart into an order. The cart snapshot is dropped on
// success since the server empties the cart.
func (c *Client) Checkout(ctx context.Context, shippingAddress string) (*Order, error) {
	if err := c.authorize(ctx, false, access.RoleCustomer); err != nil {
		return nil, err
	}
	var o Order
	body := map[string]string{"shipping_address": shippingAddress}
	if err := c.do(ctx, http.MethodPost, "/orders", body, &o); err != nil {
		return nil, err
	}
	c.cart.Clear()
	return &o, nil
}

// Orders lists the orders visible to the signed-in role.
func (c *Client) Orders(ctx context.Context, status string, page int) (*Page[Order], error) {
	if err := c.authorize(ctx, false); err != nil {
		return nil, err
	}
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	path := "/orders"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out Page[Order]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, id uint) (*Order, error) {
	if err := c.authorize(ctx, false); err != nil {
		return nil, err
	}
	var o Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Advance moves an order to status, which may be canonical or a dispatch
// label such as "Dispatched".
func (c *Client) Advance(ctx context.Context, id uint, status string) (*Order, error) {
	if err := c.authorize(ctx, false, access.RoleFarmer, access.RoleAdmin); err != nil {
		return nil, err
	}
	var o Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/status", id), map[string]string{"status": status}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Cancel(ctx context.Context, id uint) (*Order, error) {
	if err := c.authorize(ctx, false); err != nil {
		return nil, err
	}
	var o Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/cancel", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ── Moderation ───────────────────────────────────────────────────────────────

type notes struct {
	Notes string `json:"notes,omitempty"`
}

func (c *Client) ModerateFarmer(ctx context.Context, id uint, action, note string) (*User, error) {
	if err := c.authorize(ctx, false, access.RoleAdmin); err != nil {
		return nil, err
	}
	var u User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/farmers/%d/%s", id, url.PathEscape(action)), notes{note}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ModerateProduct(ctx context.Context, id uint, action, note string) (*Product, error) {
	if err := c.authorize(ctx, false, access.RoleAdmin); err != nil {
		return nil, err
	}
	var p Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/products/%d/%s", id, url.PathEscape(action)), notes{note}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ModerateLand(ctx context.Context, id uint, action, note string) (*Land, error) {
	if err := c.authorize(ctx, false, access.RoleAdmin); err != nil {
		return nil, err
	}
	var l Land
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/lands/%d/%s", id, url.PathEscape(action)), notes{note}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// BulkModerate applies action to every id of entity ("products" or
// "lands"). Per-item failures are in the report, not the error.
func (c *Client) BulkModerate(ctx context.Context, entity, action string, ids []uint, note string) (*BulkReport, error) {
	if entity != "products" && entity != "lands" {
		return nil, apperr.InvalidFields(map[string]string{"entity": "The entity must be products or lands."})
	}
	if err := c.authorize(ctx, false, access.RoleAdmin); err != nil {
		return nil, err
	}
	body := struct {
		IDs   []uint `json:"ids"`
		Notes string `json:"notes,omitempty"`
	}{ids, note}
	var r BulkReport
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/%s/bulk/%s", entity, url.PathEscape(action)), body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
