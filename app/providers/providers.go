// Package providers wires repositories, services, controllers, listeners and
// jobs onto the shared infrastructure in pkg/app.
package providers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/krishi/app/audit"
	"github.com/shashiranjanraj/krishi/app/cart"
	"github.com/shashiranjanraj/krishi/app/controllers"
	"github.com/shashiranjanraj/krishi/app/jobs"
	"github.com/shashiranjanraj/krishi/app/listeners"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/app/routes"
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/app"
	"github.com/shashiranjanraj/krishi/pkg/auth"
	"github.com/shashiranjanraj/krishi/pkg/mail"
	"github.com/shashiranjanraj/krishi/pkg/router"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

// Krishi is the wired marketplace.
type Krishi struct {
	Auth       *services.AuthService
	Moderation *services.ModerationService
	Lands      *services.LandService
	Products   *services.ProductService
	Carts      *services.CartService
	Orders     *services.OrderService

	closeAudit func(context.Context) error
}

// Options override config-derived settings, mostly for tests.
type Options struct {
	Issuer  *auth.Issuer
	FeeRate *decimal.Decimal
	// Mailer delivers notifications; mail.FromConfig when nil.
	Mailer mail.Sender
}

// Boot builds the services on c, registers the notification job and
// subscribes the listeners.
func Boot(ctx context.Context, c *app.Container, opts Options) (*Krishi, error) {
	rec, closeAudit, err := audit.Open(ctx, c.DB)
	if err != nil {
		return nil, fmt.Errorf("providers: audit: %w", err)
	}

	issuer := opts.Issuer
	if issuer == nil {
		issuer = auth.FromConfig()
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = mail.FromConfig()
	}
	var fee decimal.Decimal
	if opts.FeeRate != nil {
		fee = *opts.FeeRate
	} else if fee, err = decimal.NewFromString(config.PlatformFeeRate()); err != nil {
		return nil, fmt.Errorf("providers: PLATFORM_FEE_RATE: %w", err)
	}

	carts := services.NewCartService(c.DB, cart.NewStore(c.Cache, cart.DefaultTTL), fee)
	k := &Krishi{
		Auth:       services.NewAuthService(c.DB, issuer, session.NewRevocations(c.Cache), c.Bus),
		Moderation: services.NewModerationService(c.DB, rec, c.Pool, c.Cache, c.Bus),
		Lands:      services.NewLandService(c.DB, c.Cache),
		Products:   services.NewProductService(c.DB, c.Cache),
		Carts:      carts,
		Orders:     services.NewOrderService(c.DB, carts, c.Cache, c.Bus),
		closeAudit: closeAudit,
	}

	c.Queue.Register(jobs.NotificationName, jobs.NotificationFactory(repositories.NewUserRepository(c.DB), mailer))
	listeners.Register(c.Bus, c.Queue)
	return k, nil
}

// Routes mounts the API. A nil *Krishi still registers every route, which
// is what route:list needs.
func (k *Krishi) Routes(r *router.Router) {
	if k == nil {
		routes.RegisterAPI(r, routes.Controllers{}, nil)
		return
	}
	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(k.Auth),
		Products: controllers.NewProductController(k.Products),
		Lands:    controllers.NewLandController(k.Lands),
		Cart:     controllers.NewCartController(k.Carts),
		Orders:   controllers.NewOrderController(k.Orders),
		Admin:    controllers.NewAdminController(k.Moderation),
	}, k.Auth)
}

// Close releases the audit sink.
func (k *Krishi) Close(ctx context.Context) error {
	if k.closeAudit == nil {
		return nil
	}
	return k.closeAudit(ctx)
}
