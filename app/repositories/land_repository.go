package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// LandRepository handles database operations for Land and its
// sub-collections.
type LandRepository struct {
	db *gorm.DB
}

func NewLandRepository(db *gorm.DB) *LandRepository {
	return &LandRepository{db: db}
}

// Tx returns a repository bound to tx.
func (r *LandRepository) Tx(tx *gorm.DB) *LandRepository { return &LandRepository{db: tx} }

// FindByID loads a land with its crops and facilities.
func (r *LandRepository) FindByID(ctx context.Context, id uint) (*models.Land, error) {
	var land models.Land
	err := r.db.WithContext(ctx).Preload("Crops").Preload("Facilities").First(&land, id).Error
	if err != nil {
		return nil, notFound(err, "land")
	}
	return &land, nil
}

// List pages lands. farmerID 0 lists every farmer's; status "" every status.
func (r *LandRepository) List(ctx context.Context, farmerID uint, status string, p orm.Page) ([]models.Land, orm.Pagination, error) {
	var lands []models.Land
	q := r.db.WithContext(ctx).Model(&models.Land{}).
		Scopes(
			orm.WhereIf(farmerID != 0, "farmer_id = ?", farmerID),
			orm.WhereIf(status != "", "status = ?", status),
			orm.Latest,
		)
	pg, err := orm.Paginate(q, p, &lands, orm.Preload("Crops"), orm.Preload("Facilities"))
	return lands, pg, err
}

// Create inserts the land and its sub-collections.
func (r *LandRepository) Create(ctx context.Context, land *models.Land) error {
	return r.db.WithContext(ctx).Create(land).Error
}

// Update saves content fields and replaces crops and facilities. Status and
// notes are left alone.
func (r *LandRepository) Update(ctx context.Context, land *models.Land) error {
	db := r.db.WithContext(ctx)
	err := db.Model(land).Select(
		"name", "location", "latitude", "longitude", "area_acres", "soil_type", "irrigation_type",
	).Updates(land).Error
	if err != nil {
		return err
	}
	if err := r.deleteChildren(db, land.ID); err != nil {
		return err
	}
	for i := range land.Crops {
		land.Crops[i].ID = 0
		land.Crops[i].LandID = land.ID
	}
	for i := range land.Facilities {
		land.Facilities[i].ID = 0
		land.Facilities[i].LandID = land.ID
	}
	if len(land.Crops) > 0 {
		if err := db.Create(&land.Crops).Error; err != nil {
			return err
		}
	}
	if len(land.Facilities) > 0 {
		if err := db.Create(&land.Facilities).Error; err != nil {
			return err
		}
	}
	return nil
}

// SetStatus writes a moderation decision.
func (r *LandRepository) SetStatus(ctx context.Context, id uint, status moderation.ListingStatus, notes string) error {
	return r.db.WithContext(ctx).Model(&models.Land{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "notes": notes}).Error
}

// CountProducts counts products listed on land id.
func (r *LandRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("land_id = ?", id).Count(&n).Error
	return n, err
}

// Delete removes the land with its crops and facilities.
func (r *LandRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteChildren(db, id); err != nil {
		return err
	}
	return db.Delete(&models.Land{}, id).Error
}

// DeleteByFarmer removes every land of farmerID.
func (r *LandRepository) DeleteByFarmer(ctx context.Context, farmerID uint) error {
	db := r.db.WithContext(ctx)
	ids := db.Model(&models.Land{}).Select("id").Where("farmer_id = ?", farmerID)
	if err := db.Where("land_id IN (?)", ids).Delete(&models.LandCrop{}).Error; err != nil {
		return err
	}
	if err := db.Where("land_id IN (?)", ids).Delete(&models.LandFacility{}).Error; err != nil {
		return err
	}
	return db.Where("farmer_id = ?", farmerID).Delete(&models.Land{}).Error
}

func (r *LandRepository) deleteChildren(db *gorm.DB, landID uint) error {
	if err := db.Where("land_id = ?", landID).Delete(&models.LandCrop{}).Error; err != nil {
		return err
	}
	return db.Where("land_id = ?", landID).Delete(&models.LandFacility{}).Error
}
