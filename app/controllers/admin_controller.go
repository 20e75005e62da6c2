package controllers

import (
	"strconv"

	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
)

// AdminController serves the moderation board.
type AdminController struct {
	moderation *services.ModerationService
}

func NewAdminController(moderation *services.ModerationService) *AdminController {
	return &AdminController{moderation: moderation}
}

type moderateRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

type bulkRequest struct {
	IDs   []uint `json:"ids"   validate:"required,min=1,max=500"`
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

// ── Farmers ──────────────────────────────────────────────────────────────────

func (h *AdminController) Farmers(c *ctx.Context) {
	users, pg, err := h.moderation.Farmers(c.Context(), c.Session(), c.Query("status"), c.Page())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(users, pg)
}

// ModerateFarmer applies {action} (verify, reject, suspend, reactivate).
func (h *AdminController) ModerateFarmer(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body moderateRequest
	if !c.BindJSON(&body) {
		return
	}
	user, err := h.moderation.TransitionFarmer(c.Context(), c.Session(), id, c.Param("action"), body.Notes)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

// ── Listings ─────────────────────────────────────────────────────────────────

// ModerateLand applies {action} (approve, reject, pending).
func (h *AdminController) ModerateLand(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body moderateRequest
	if !c.BindJSON(&body) {
		return
	}
	land, err := h.moderation.TransitionLand(c.Context(), c.Session(), id, c.Param("action"), body.Notes)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(land)
}

func (h *AdminController) ModerateProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var body moderateRequest
	if !c.BindJSON(&body) {
		return
	}
	p, err := h.moderation.TransitionProduct(c.Context(), c.Session(), id, c.Param("action"), body.Notes)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (h *AdminController) BulkLands(c *ctx.Context) {
	var body bulkRequest
	if !c.BindJSON(&body) {
		return
	}
	report, err := h.moderation.BulkLands(c.Context(), c.Session(), body.IDs, c.Param("action"), body.Notes)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(report)
}

func (h *AdminController) BulkProducts(c *ctx.Context) {
	var body bulkRequest
	if !c.BindJSON(&body) {
		return
	}
	report, err := h.moderation.BulkProducts(c.Context(), c.Session(), body.IDs, c.Param("action"), body.Notes)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(report)
}

// Audits lists recent moderation decisions, optionally for one entity kind.
func (h *AdminController) Audits(c *ctx.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.ValidationError(map[string]string{"limit": "The limit must be a number."})
		return
	}
	out, err := h.moderation.Audits(c.Context(), c.Session(), c.Query("entity"), limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}
