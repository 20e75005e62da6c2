package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/internal/fulfillment"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// OrderRepository handles database operations for Order and its items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Tx returns a repository bound to tx.
func (r *OrderRepository) Tx(tx *gorm.DB) *OrderRepository { return &OrderRepository{db: tx} }

// Create inserts the order and its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// FindByID loads an order with every item.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

// ForCustomer pages a customer's orders.
func (r *OrderRepository) ForCustomer(ctx context.Context, customerID uint, p orm.Page) ([]models.Order, orm.Pagination, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID).Scopes(orm.Latest)
	pg, err := orm.Paginate(q, p, &orders, orm.Preload("Items"))
	return orders, pg, err
}

// ForFarmer pages orders containing farmerID's products. Only that farmer's
// items are loaded.
func (r *OrderRepository) ForFarmer(ctx context.Context, farmerID uint, p orm.Page) ([]models.Order, orm.Pagination, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN (?)", r.db.Model(&models.OrderItem{}).Select("order_id").Where("farmer_id = ?", farmerID)).
		Scopes(orm.Latest)
	pg, err := orm.Paginate(q, p, &orders, orm.Preload("Items", "farmer_id = ?", farmerID))
	return orders, pg, err
}

// All pages every order, optionally by status.
func (r *OrderRepository) All(ctx context.Context, status string, p orm.Page) ([]models.Order, orm.Pagination, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Scopes(orm.WhereIf(status != "", "status = ?", status), orm.Latest)
	pg, err := orm.Paginate(q, p, &orders, orm.Preload("Items"))
	return orders, pg, err
}

// CompareAndSetStatus moves an order from one status to another and reports
// whether it was still in from.
func (r *OrderRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to fulfillment.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("repositories: set order status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
