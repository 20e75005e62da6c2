package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// CatalogueTTL bounds how stale a cached catalogue read can be when an
// invalidation is missed.
const CatalogueTTL = 5 * time.Minute

// ProductInput is the farmer-editable content of a product.
type ProductInput struct {
	LandID           uint            `json:"land_id"            validate:"required"`
	Name             string          `json:"name"               validate:"required,max=255"`
	Description      string          `json:"description"        validate:"omitempty,max=5000"`
	Category         string          `json:"category"           validate:"omitempty,max=100"`
	Price            decimal.Decimal `json:"price"              validate:"gt=0"`
	Stock            int             `json:"stock"              validate:"gte=0"`
	Unit             string          `json:"unit"               validate:"required,max=32"`
	MaxOrderQuantity *int            `json:"max_order_quantity" validate:"omitempty,gte=1"`
}

func (in ProductInput) apply(p *models.Product) {
	p.LandID = in.LandID
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Category = strings.ToLower(strings.TrimSpace(in.Category))
	p.Price = in.Price.Round(2)
	p.Stock = in.Stock
	p.Unit = strings.TrimSpace(in.Unit)
	p.MaxOrderQuantity = in.MaxOrderQuantity
}

// CataloguePage is one cached page of the public catalogue.
type CataloguePage struct {
	Items      []models.Product `json:"items"`
	Pagination orm.Pagination   `json:"pagination"`
}

// ProductService is the catalogue plus farmer-owned product CRUD.
type ProductService struct {
	products *repositories.ProductRepository
	lands    *repositories.LandRepository
	cache    cache.Store
}

func NewProductService(db *gorm.DB, c cache.Store) *ProductService {
	return &ProductService{
		products: repositories.NewProductRepository(db),
		lands:    repositories.NewLandRepository(db),
		cache:    c,
	}
}

// Catalogue pages orderable products. Anyone may browse it.
func (s *ProductService) Catalogue(ctx context.Context, f repositories.ProductFilter, p orm.Page) (*CataloguePage, error) {
	f.FarmerID, f.Status = 0, ""
	key := fmt.Sprintf("%spage:%d:%d:%s:%s", cataloguePrefix, p.Number, p.PerPage,
		strings.ToLower(f.Category), strings.ToLower(strings.TrimSpace(f.Search)))

	var page CataloguePage
	err := cache.Remember(ctx, s.cache, key, CatalogueTTL, &page, func() error {
		items, pg, err := s.products.Orderable(ctx, f, p)
		if err != nil {
			return err
		}
		page = CataloguePage{Items: items, Pagination: pg}
		return nil
	})
	if err != nil {
		return nil, apperr.Server(err)
	}
	if page.Items == nil {
		page.Items = []models.Product{}
	}
	return &page, nil
}

// Show returns one product. The public sees only orderable products; the
// owning farmer and admins see any.
func (s *ProductService) Show(ctx context.Context, sess *access.Session, id uint) (*models.Product, error) {
	if sess.Is(access.RoleAdmin) || sess.Is(access.RoleFarmer) {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess.Is(access.RoleAdmin) || p.FarmerID == sess.UserID {
			return p, nil
		}
	}

	var p models.Product
	err := cache.Remember(ctx, s.cache, fmt.Sprintf("%sproduct:%d", cataloguePrefix, id), CatalogueTTL, &p, func() error {
		found, err := s.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !found.Orderable() {
			return apperr.NotFound("product")
		}
		p = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Mine pages the calling farmer's products in every status.
func (s *ProductService) Mine(ctx context.Context, sess *access.Session, status string, p orm.Page) ([]models.Product, orm.Pagination, error) {
	if err := authorize(sess, access.RoleFarmer); err != nil {
		return nil, orm.Pagination{}, err
	}
	items, pg, err := s.products.List(ctx, repositories.ProductFilter{FarmerID: sess.UserID, Status: status}, p)
	if err != nil {
		return nil, orm.Pagination{}, apperr.Server(err)
	}
	return items, pg, nil
}

// All pages every product for the admin board.
func (s *ProductService) All(ctx context.Context, sess *access.Session, f repositories.ProductFilter, p orm.Page) ([]models.Product, orm.Pagination, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, orm.Pagination{}, err
	}
	items, pg, err := s.products.List(ctx, f, p)
	if err != nil {
		return nil, orm.Pagination{}, apperr.Server(err)
	}
	return items, pg, nil
}

// Create lists a product on one of the farmer's approved lands. New products
// wait for moderation.
func (s *ProductService) Create(ctx context.Context, sess *access.Session, in ProductInput) (*models.Product, error) {
	if err := authorizeActive(sess, access.RoleFarmer); err != nil {
		return nil, err
	}
	land, err := s.approvedLand(ctx, sess, in.LandID)
	if err != nil {
		return nil, err
	}
	p := &models.Product{FarmerID: sess.UserID, Status: moderation.ListingPending}
	in.apply(p)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Server(err)
	}
	p.Land = land
	p.Derive()
	return p, nil
}

// Update replaces the content of a product. Moving it to another land
// requires that land to be approved; status is untouched.
func (s *ProductService) Update(ctx context.Context, sess *access.Session, id uint, in ProductInput) (*models.Product, error) {
	if err := authorizeActive(sess, access.RoleFarmer); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if in.LandID != p.LandID {
		land, err := s.approvedLand(ctx, sess, in.LandID)
		if err != nil {
			return nil, err
		}
		p.Land = land
	}
	in.apply(p)
	if err := s.products.UpdateContent(ctx, p); err != nil {
		return nil, apperr.Server(err)
	}
	invalidateCatalogue(ctx, s.cache)
	return p, nil
}

// Delete removes a product. Orders keep their frozen copy of it.
func (s *ProductService) Delete(ctx context.Context, sess *access.Session, id uint) error {
	if err := authorize(sess, access.RoleFarmer, access.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return apperr.Server(err)
	}
	invalidateCatalogue(ctx, s.cache)
	return nil
}

func (s *ProductService) owned(ctx context.Context, sess *access.Session, id uint) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Is(access.RoleAdmin) && p.FarmerID != sess.UserID {
		return nil, apperr.NotFound("product")
	}
	return p, nil
}

func (s *ProductService) approvedLand(ctx context.Context, sess *access.Session, landID uint) (*models.Land, error) {
	land, err := s.lands.FindByID(ctx, landID)
	if err != nil || land.FarmerID != sess.UserID {
		return nil, apperr.InvalidFields(map[string]string{"land_id": "The selected land is invalid."})
	}
	if !land.Status.IsApproved() {
		return nil, apperr.InvalidFields(map[string]string{"land_id": "The selected land is not approved yet."})
	}
	return land, nil
}
