package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// ProductFilter narrows product listings. Zero fields do not filter.
type ProductFilter struct {
	FarmerID uint
	Status   string
	Search   string
	Category string
}

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Tx returns a repository bound to tx.
func (r *ProductRepository) Tx(tx *gorm.DB) *ProductRepository { return &ProductRepository{db: tx} }

// FindByID loads a product with its land.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Preload("Land").First(&p, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

// List pages products matching f.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter, p orm.Page) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(filter(f), orm.Latest)
	pg, err := orm.Paginate(q, p, &products, orm.Preload("Land"))
	return products, pg, err
}

// Orderable pages the public catalogue: approved products with stock on an
// approved land.
func (r *ProductRepository) Orderable(ctx context.Context, f ProductFilter, p orm.Page) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("products.status = ? AND products.stock > 0", moderation.ListingApproved).
		Where("products.land_id IN (?)",
			r.db.Model(&models.Land{}).Select("id").Where("status = ?", moderation.ListingApproved)).
		Scopes(filter(f), orm.Latest)
	pg, err := orm.Paginate(q, p, &products, orm.Preload("Land"))
	return products, pg, err
}

func filter(f ProductFilter) orm.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			orm.WhereIf(f.FarmerID != 0, "products.farmer_id = ?", f.FarmerID),
			orm.WhereIf(f.Status != "", "products.status = ?", f.Status),
			orm.WhereIf(f.Category != "", "products.category = ?", f.Category),
			orm.WhereIf(f.Search != "", "LOWER(products.name) LIKE ?", "%"+lower(f.Search)+"%"),
		)
	}
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// UpdateContent saves the farmer-owned fields of p.
func (r *ProductRepository) UpdateContent(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Model(p).Select(
		"land_id", "name", "description", "category", "price", "stock", "unit", "max_order_quantity",
	).Updates(p).Error
}

// SetStatus writes a moderation decision.
func (r *ProductRepository) SetStatus(ctx context.Context, id uint, status moderation.ListingStatus, notes string) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "notes": notes}).Error
}

// TakeStock decrements stock by qty only if at least qty is left. It
// reports false when the guard failed.
func (r *ProductRepository) TakeStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("repositories: take stock: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReturnStock adds qty back. Deleted products are skipped.
func (r *ProductRepository) ReturnStock(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

// DeleteByFarmer removes every product of farmerID.
func (r *ProductRepository) DeleteByFarmer(ctx context.Context, farmerID uint) error {
	return r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).Delete(&models.Product{}).Error
}
