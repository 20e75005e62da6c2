package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Tx returns a repository bound to tx.
func (r *UserRepository) Tx(tx *gorm.DB) *UserRepository { return &UserRepository{db: tx} }

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// Emails maps each existing id in ids to its address. Deleted users are
// simply absent.
func (r *UserRepository) Emails(ctx context.Context, ids []uint) (map[uint]string, error) {
	var rows []models.User
	if err := r.db.WithContext(ctx).Select("id", "email").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repositories: user emails: %w", err)
	}
	out := make(map[uint]string, len(rows))
	for _, u := range rows {
		out[u.ID] = u.Email
	}
	return out, nil
}

// EmailTaken reports whether an account already uses email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CompareAndSetStatus moves a user from one status to another and reports
// whether the row was still in from.
func (r *UserRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to moderation.AccountStatus, notes string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "notes": notes})
	if res.Error != nil {
		return false, fmt.Errorf("repositories: set user status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Delete removes the user row.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// Farmers lists farmer accounts, optionally filtered by status.
func (r *UserRepository) Farmers(ctx context.Context, status string, p orm.Page) ([]models.User, orm.Pagination, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", access.RoleFarmer).
		Scopes(orm.WhereIf(status != "", "status = ?", status), orm.Latest)
	pg, err := orm.Paginate(q, p, &users)
	return users, pg, err
}
