package controllers

import (
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
)

type LandController struct {
	lands *services.LandService
}

func NewLandController(lands *services.LandService) *LandController {
	return &LandController{lands: lands}
}

// Index lists the farmer's lands, or every land for an admin.
func (h *LandController) Index(c *ctx.Context) {
	items, pg, err := h.lands.List(c.Context(), c.Session(), c.Query("status"), c.Page())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(items, pg)
}

func (h *LandController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	land, err := h.lands.Get(c.Context(), c.Session(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(land)
}

func (h *LandController) Store(c *ctx.Context) {
	var body services.LandInput
	if !c.BindJSON(&body) {
		return
	}
	land, err := h.lands.Create(c.Context(), c.Session(), body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(land)
}

func (h *LandController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body services.LandInput
	if !c.BindJSON(&body) {
		return
	}
	land, err := h.lands.Update(c.Context(), c.Session(), id, body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(land)
}

func (h *LandController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := h.lands.Delete(c.Context(), c.Session(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Land deleted")
}
