package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/collection"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// LandInput is the farmer-editable content of a land.
type LandInput struct {
	Name           string   `json:"name"            validate:"required,max=255"`
	Location       string   `json:"location"        validate:"required,max=255"`
	Latitude       float64  `json:"latitude"        validate:"omitempty,latitude"`
	Longitude      float64  `json:"longitude"       validate:"omitempty,longitude"`
	AreaAcres      float64  `json:"area_acres"      validate:"gt=0"`
	SoilType       string   `json:"soil_type"       validate:"omitempty,max=100"`
	IrrigationType string   `json:"irrigation_type" validate:"omitempty,max=100"`
	Crops          []string `json:"crops"           validate:"omitempty,max=50,dive,required,max=100"`
	Facilities     []string `json:"facilities"      validate:"omitempty,max=50,dive,required,max=100"`
}

func (in LandInput) apply(l *models.Land) {
	l.Name = strings.TrimSpace(in.Name)
	l.Location = strings.TrimSpace(in.Location)
	l.Latitude, l.Longitude = in.Latitude, in.Longitude
	l.AreaAcres = in.AreaAcres
	l.SoilType, l.IrrigationType = in.SoilType, in.IrrigationType
	l.Crops = collection.Map(in.Crops, func(c string) models.LandCrop {
		return models.LandCrop{Name: strings.TrimSpace(c)}
	})
	l.Facilities = collection.Map(in.Facilities, func(f string) models.LandFacility {
		return models.LandFacility{Name: strings.TrimSpace(f)}
	})
}

// LandService is farmer-owned land CRUD. Moderation lives in
// ModerationService.
type LandService struct {
	db    *gorm.DB
	lands *repositories.LandRepository
	cache cache.Store
}

func NewLandService(db *gorm.DB, c cache.Store) *LandService {
	return &LandService{db: db, lands: repositories.NewLandRepository(db), cache: c}
}

// List returns the caller's lands; admins see every land.
func (s *LandService) List(ctx context.Context, sess *access.Session, status string, p orm.Page) ([]models.Land, orm.Pagination, error) {
	if err := authorize(sess, access.RoleFarmer, access.RoleAdmin); err != nil {
		return nil, orm.Pagination{}, err
	}
	var owner uint
	if sess.Is(access.RoleFarmer) {
		owner = sess.UserID
	}
	lands, pg, err := s.lands.List(ctx, owner, status, p)
	if err != nil {
		return nil, orm.Pagination{}, apperr.Server(err)
	}
	return lands, pg, nil
}

// Get returns one land to its owner or an admin.
func (s *LandService) Get(ctx context.Context, sess *access.Session, id uint) (*models.Land, error) {
	if err := authorize(sess, access.RoleFarmer, access.RoleAdmin); err != nil {
		return nil, err
	}
	return s.owned(ctx, sess, id)
}

// Create lists a new land, pending moderation. The farmer must be active.
func (s *LandService) Create(ctx context.Context, sess *access.Session, in LandInput) (*models.Land, error) {
	if err := authorizeActive(sess, access.RoleFarmer); err != nil {
		return nil, err
	}
	land := &models.Land{FarmerID: sess.UserID, Status: moderation.ListingPending}
	in.apply(land)
	if err := s.lands.Create(ctx, land); err != nil {
		return nil, apperr.Server(err)
	}
	land.Derive()
	return land, nil
}

// Update replaces the content of a land. Moderation status is untouched.
func (s *LandService) Update(ctx context.Context, sess *access.Session, id uint, in LandInput) (*models.Land, error) {
	if err := authorizeActive(sess, access.RoleFarmer); err != nil {
		return nil, err
	}
	land, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	in.apply(land)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.lands.Tx(tx).Update(ctx, land)
	})
	if err != nil {
		return nil, apperr.Server(err)
	}
	invalidateCatalogue(ctx, s.cache)
	return land, nil
}

// Delete removes a land with its crops and facilities. A land that still
// carries products cannot be deleted.
func (s *LandService) Delete(ctx context.Context, sess *access.Session, id uint) error {
	if err := authorize(sess, access.RoleFarmer, access.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.lands.Tx(tx)
		n, err := repo.CountProducts(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(apperr.CodeInUse, "land still has %d product(s); delete them first", n)
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return err
		}
		return apperr.Server(err)
	}
	invalidateCatalogue(ctx, s.cache)
	return nil
}

// owned loads land id, hiding other farmers' lands as not found.
func (s *LandService) owned(ctx context.Context, sess *access.Session, id uint) (*models.Land, error) {
	land, err := s.lands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Is(access.RoleAdmin) && land.FarmerID != sess.UserID {
		return nil, apperr.NotFound("land")
	}
	return land, nil
}
