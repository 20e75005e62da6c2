// Package routes maps the REST surface onto controllers and access gates.
package routes

import (
	"github.com/shashiranjanraj/krishi/app/controllers"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/ctx"
	"github.com/shashiranjanraj/krishi/pkg/middleware"
	"github.com/shashiranjanraj/krishi/pkg/rbac"
	"github.com/shashiranjanraj/krishi/pkg/router"
)

// Prefix is where the API is mounted.
const Prefix = "/api"

// Controllers are the HTTP handlers behind the API.
type Controllers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Lands    *controllers.LandController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Admin    *controllers.AdminController
}

// RegisterAPI mounts every API route. Tokens are resolved once for the whole
// API; anonymous requests reach only the public routes.
func RegisterAPI(r *router.Router, h Controllers, tokens middleware.TokenValidator) {
	api := r.Group(Prefix, middleware.Authenticate(tokens))

	customer := rbac.Require(access.RoleCustomer)
	farmer := rbac.Require(access.RoleFarmer)
	activeFarmer := rbac.RequireActive(access.RoleFarmer)
	fulfiller := rbac.Require(access.RoleFarmer, access.RoleAdmin)
	signedIn := rbac.Require()

	// ── Auth ─────────────────────────────────────────────────────────────────
	api.Post("/auth/login", "auth.login", ctx.Wrap(h.Auth.Login))
	api.Post("/auth/register", "auth.register", ctx.Wrap(h.Auth.Register))
	api.Post("/auth/logout", "auth.logout", ctx.Wrap(h.Auth.Logout))
	api.Get("/auth/me", "auth.me", ctx.Wrap(h.Auth.Me), signedIn)
	api.Delete("/auth/account", "auth.account.delete", ctx.Wrap(h.Auth.DeleteAccount), signedIn)

	// ── Catalogue and listings ───────────────────────────────────────────────
	api.Get("/products", "products.index", ctx.Wrap(h.Products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(h.Products.Show))
	api.Post("/products", "products.store", ctx.Wrap(h.Products.Store), activeFarmer)
	api.Put("/products/{id}", "products.update", ctx.Wrap(h.Products.Update), activeFarmer)
	api.Delete("/products/{id}", "products.destroy", ctx.Wrap(h.Products.Destroy), fulfiller)

	lands := api.Group("/lands", fulfiller)
	lands.Get("/", "lands.index", ctx.Wrap(h.Lands.Index))
	lands.Get("/{id}", "lands.show", ctx.Wrap(h.Lands.Show))
	lands.Post("/", "lands.store", ctx.Wrap(h.Lands.Store), activeFarmer)
	lands.Put("/{id}", "lands.update", ctx.Wrap(h.Lands.Update), activeFarmer)
	lands.Delete("/{id}", "lands.destroy", ctx.Wrap(h.Lands.Destroy))

	farmerViews := api.Group("/farmer", farmer)
	farmerViews.Get("/products", "farmer.products", ctx.Wrap(h.Products.Mine))
	farmerViews.Get("/orders", "farmer.orders", ctx.Wrap(h.Orders.Index))

	// ── Cart and orders ──────────────────────────────────────────────────────
	cart := api.Group("/cart", customer)
	cart.Get("/", "cart.show", ctx.Wrap(h.Cart.Show))
	cart.Delete("/", "cart.clear", ctx.Wrap(h.Cart.Clear))
	cart.Post("/items", "cart.items.add", ctx.Wrap(h.Cart.Add))
	cart.Put("/items/{id}", "cart.items.update", ctx.Wrap(h.Cart.Update))
	cart.Delete("/items/{id}", "cart.items.remove", ctx.Wrap(h.Cart.Remove))

	orders := api.Group("/orders", signedIn)
	orders.Post("/", "orders.checkout", ctx.Wrap(h.Orders.Checkout), customer)
	orders.Get("/", "orders.index", ctx.Wrap(h.Orders.Index))
	orders.Get("/{id}", "orders.show", ctx.Wrap(h.Orders.Show))
	orders.Put("/{id}/status", "orders.status", ctx.Wrap(h.Orders.UpdateStatus), fulfiller)
	orders.Put("/{id}/cancel", "orders.cancel", ctx.Wrap(h.Orders.Cancel))

	// ── Admin board ──────────────────────────────────────────────────────────
	admin := api.Group("/admin", rbac.Require(access.RoleAdmin))
	admin.Get("/farmers", "admin.farmers", ctx.Wrap(h.Admin.Farmers))
	admin.Put("/farmers/{id}/{action}", "admin.farmers.moderate", ctx.Wrap(h.Admin.ModerateFarmer))
	admin.Get("/products", "admin.products", ctx.Wrap(h.Products.Board))
	admin.Put("/products/{id}/{action}", "admin.products.moderate", ctx.Wrap(h.Admin.ModerateProduct))
	admin.Post("/products/bulk/{action}", "admin.products.bulk", ctx.Wrap(h.Admin.BulkProducts))
	admin.Get("/lands", "admin.lands", ctx.Wrap(h.Lands.Index))
	admin.Put("/lands/{id}/{action}", "admin.lands.moderate", ctx.Wrap(h.Admin.ModerateLand))
	admin.Post("/lands/bulk/{action}", "admin.lands.bulk", ctx.Wrap(h.Admin.BulkLands))
	admin.Get("/orders", "admin.orders", ctx.Wrap(h.Orders.Index))
	admin.Get("/audits", "admin.audits", ctx.Wrap(h.Admin.Audits))
}
