package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/audit"
	"github.com/shashiranjanraj/krishi/app/cart"
	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/services"
	"github.com/shashiranjanraj/krishi/database/migrations"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/auth"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/database"
	"github.com/shashiranjanraj/krishi/pkg/event"
	"github.com/shashiranjanraj/krishi/pkg/migration"
	"github.com/shashiranjanraj/krishi/pkg/session"
	"github.com/shashiranjanraj/krishi/pkg/workerpool"
)

const (
	testSecret   = "test-secret"
	testPassword = "secret-pass"
)

func init() { auth.HashCost = bcrypt.MinCost }

// env is a fully wired service layer over a private in-memory database.
type env struct {
	db    *gorm.DB
	cache *cache.Memory
	bus   *event.Bus
	audit audit.Recorder

	auth       *services.AuthService
	moderation *services.ModerationService
	lands      *services.LandService
	products   *services.ProductService
	carts      *services.CartService
	orders     *services.OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	_, err = migration.New(db, nil, migrations.All()...).Run(ctx)
	require.NoError(t, err)

	mem := cache.NewMemory()
	bus := event.NewBus()
	pool := workerpool.New(4)
	rec := audit.NewGormRecorder(db)
	issuer := auth.NewIssuer(testSecret, 45*time.Minute, 24*time.Hour)
	carts := services.NewCartService(db, cart.NewStore(mem, 0), decimal.RequireFromString("0.05"))

	e := &env{
		db: db, cache: mem, bus: bus, audit: rec,
		auth:       services.NewAuthService(db, issuer, session.NewRevocations(mem), bus),
		moderation: services.NewModerationService(db, rec, pool, mem, bus),
		lands:      services.NewLandService(db, mem),
		products:   services.NewProductService(db, mem),
		carts:      carts,
		orders:     services.NewOrderService(db, carts, mem, bus),
	}
	t.Cleanup(func() {
		bus.Wait()
		pool.Shutdown()
		_ = database.Close(db)
	})
	return e
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

var seq int

func (e *env) user(t *testing.T, role access.Role, status moderation.AccountStatus) *models.User {
	t.Helper()
	seq++
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := &models.User{
		Name:     string(role),
		Email:    fmt.Sprintf("%s%d@krishi.test", role, seq),
		Password: hash,
		Role:     role,
		Status:   status,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) customer(t *testing.T) *models.User {
	return e.user(t, access.RoleCustomer, moderation.AccountActive)
}

func (e *env) farmer(t *testing.T) *models.User {
	return e.user(t, access.RoleFarmer, moderation.AccountActive)
}

func (e *env) admin(t *testing.T) *models.User {
	return e.user(t, access.RoleAdmin, moderation.AccountActive)
}

func (e *env) land(t *testing.T, farmerID uint, status moderation.ListingStatus) *models.Land {
	t.Helper()
	l := &models.Land{FarmerID: farmerID, Name: "Plot", Location: "Nashik", AreaAcres: 2, Status: status}
	require.NoError(t, e.db.Create(l).Error)
	return l
}

func (e *env) product(t *testing.T, land *models.Land, status moderation.ListingStatus, stock int, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		FarmerID: land.FarmerID,
		LandID:   land.ID,
		Name:     "Onion",
		Unit:     "kg",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Status:   status,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

// orderable creates an approved product with stock on an approved land of a
// fresh farmer.
func (e *env) orderable(t *testing.T, stock int, price string) *models.Product {
	t.Helper()
	return e.product(t, e.land(t, e.farmer(t).ID, moderation.ListingApproved), moderation.ListingApproved, stock, price)
}

func (e *env) stockOf(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, id).Error)
	return p.Stock
}

func sessionOf(u *models.User) *access.Session {
	return &access.Session{UserID: u.ID, Role: u.Role, Status: string(u.Status), ExpiresAt: time.Now().Add(time.Hour)}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
