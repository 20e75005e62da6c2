package controllers

import (
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type addItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartController) Show(c *ctx.Context) {
	view, err := h.carts.Get(c.Context(), c.Session())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

func (h *CartController) Add(c *ctx.Context) {
	var body addItemRequest
	if !c.BindJSON(&body) {
		return
	}
	view, err := h.carts.AddToCart(c.Context(), c.Session(), body.ProductID, body.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

// Update sets a line's quantity; zero removes the line.
func (h *CartController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body updateItemRequest
	if !c.BindJSON(&body) {
		return
	}
	view, err := h.carts.UpdateCartItem(c.Context(), c.Session(), id, body.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

func (h *CartController) Remove(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	view, err := h.carts.RemoveFromCart(c.Context(), c.Session(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

func (h *CartController) Clear(c *ctx.Context) {
	if err := h.carts.ClearCart(c.Context(), c.Session()); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Cart cleared")
}
