package controllers

import (
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Checkout turns the caller's cart into an order.
func (h *OrderController) Checkout(c *ctx.Context) {
	var body services.CheckoutInput
	if !c.BindJSON(&body) {
		return
	}
	order, err := h.orders.Checkout(c.Context(), c.Session(), body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(order)
}

// Index lists the orders visible to the caller's role.
func (h *OrderController) Index(c *ctx.Context) {
	items, pg, err := h.orders.List(c.Context(), c.Session(), c.Query("status"), c.Page())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(items, pg)
}

func (h *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Context(), c.Session(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// UpdateStatus advances an order; status may be canonical or a dispatch label.
func (h *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if !c.BindJSON(&body) {
		return
	}
	order, err := h.orders.Advance(c.Context(), c.Session(), id, body.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

func (h *OrderController) Cancel(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	order, err := h.orders.Cancel(c.Context(), c.Session(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}
