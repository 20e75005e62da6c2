package controllers

import (
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login issues a bearer token.
func (h *AuthController) Login(c *ctx.Context) {
	var body loginRequest
	if !c.BindJSON(&body) {
		return
	}
	res, err := h.auth.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

func (h *AuthController) Register(c *ctx.Context) {
	var body services.RegisterInput
	if !c.BindJSON(&body) {
		return
	}
	user, err := h.auth.Register(c.Context(), body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(user)
}

// Logout revokes the request's token. It always succeeds for the caller.
func (h *AuthController) Logout(c *ctx.Context) {
	if err := h.auth.Logout(c.Context(), c.Token()); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Logged out")
}

func (h *AuthController) Me(c *ctx.Context) {
	user, err := h.auth.Me(c.Context(), c.Session())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (h *AuthController) DeleteAccount(c *ctx.Context) {
	var body struct {
		Password string `json:"password" validate:"required"`
	}
	if !c.BindJSON(&body) {
		return
	}
	if err := h.auth.DeleteAccount(c.Context(), c.Session(), c.Token(), body.Password); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Account deleted")
}
