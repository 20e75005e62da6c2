package controllers

import (
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func filterFrom(c *ctx.Context) repositories.ProductFilter {
	return repositories.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
}

// Index is the public catalogue.
func (h *ProductController) Index(c *ctx.Context) {
	page, err := h.products.Catalogue(c.Context(), filterFrom(c), c.Page())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(page.Items, page.Pagination)
}

func (h *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := h.products.Show(c.Context(), c.Session(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

// Mine lists the farmer's own products in every status.
func (h *ProductController) Mine(c *ctx.Context) {
	items, pg, err := h.products.Mine(c.Context(), c.Session(), c.Query("status"), c.Page())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(items, pg)
}

// Board lists every product for admins.
func (h *ProductController) Board(c *ctx.Context) {
	items, pg, err := h.products.All(c.Context(), c.Session(), filterFrom(c), c.Page())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(items, pg)
}

func (h *ProductController) Store(c *ctx.Context) {
	var body services.ProductInput
	if !c.BindJSON(&body) {
		return
	}
	p, err := h.products.Create(c.Context(), c.Session(), body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(p)
}

func (h *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body services.ProductInput
	if !c.BindJSON(&body) {
		return
	}
	p, err := h.products.Update(c.Context(), c.Session(), id, body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (h *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Context(), c.Session(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Product deleted")
}
