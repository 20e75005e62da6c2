package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

// Demo account emails.
const (
	AdminEmail         = "admin@krishi.test"
	FarmerEmail        = "farmer@krishi.test"
	PendingFarmerEmail = "newfarmer@krishi.test"
	CustomerEmail      = "customer@krishi.test"
)

// SeedUsers creates one account per role plus a farmer awaiting verification.
func SeedUsers(ctx context.Context, db *gorm.DB) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	users := []models.User{
		{Name: "Admin", Email: AdminEmail, Role: access.RoleAdmin, Status: moderation.AccountActive},
		{Name: "Ramesh Patil", Email: FarmerEmail, Role: access.RoleFarmer, Status: moderation.AccountActive, Phone: "+91 90000 00001"},
		{Name: "Sita Devi", Email: PendingFarmerEmail, Role: access.RoleFarmer, Status: moderation.AccountPending},
		{Name: "Asha Rao", Email: CustomerEmail, Role: access.RoleCustomer, Status: moderation.AccountActive},
	}
	for i := range users {
		users[i].Password = hash
		if err := db.WithContext(ctx).Where(models.User{Email: users[i].Email}).FirstOrCreate(&users[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedLands gives the active demo farmer one approved land.
func SeedLands(ctx context.Context, db *gorm.DB) error {
	farmer, err := userByEmail(ctx, db, FarmerEmail)
	if err != nil {
		return err
	}
	land := models.Land{
		FarmerID:       farmer.ID,
		Name:           "Riverside Plot",
		Location:       "Nashik, Maharashtra",
		Latitude:       19.9975,
		Longitude:      73.7898,
		AreaAcres:      4.5,
		SoilType:       "black",
		IrrigationType: "drip",
		Status:         moderation.ListingApproved,
		Crops:          []models.LandCrop{{Name: "onion"}, {Name: "grapes"}},
		Facilities:     []models.LandFacility{{Name: "cold storage"}, {Name: "borewell"}},
	}
	return db.WithContext(ctx).
		Where(models.Land{FarmerID: farmer.ID, Name: land.Name}).
		FirstOrCreate(&land).Error
}

// SeedProducts lists a few approved products on the demo land.
func SeedProducts(ctx context.Context, db *gorm.DB) error {
	farmer, err := userByEmail(ctx, db, FarmerEmail)
	if err != nil {
		return err
	}
	var land models.Land
	if err := db.WithContext(ctx).Where("farmer_id = ?", farmer.ID).First(&land).Error; err != nil {
		return err
	}
	limit := 10
	products := []models.Product{
		{Name: "Red Onion", Unit: "kg", Price: decimal.RequireFromString("32.00"), Stock: 500, Category: "vegetables"},
		{Name: "Thompson Seedless Grapes", Unit: "kg", Price: decimal.RequireFromString("90.00"), Stock: 120, Category: "fruits", MaxOrderQuantity: &limit},
		{Name: "Raisins", Unit: "500g", Price: decimal.RequireFromString("180.00"), Stock: 3, Category: "dry fruits"},
	}
	for i := range products {
		p := &products[i]
		p.FarmerID = farmer.ID
		p.LandID = land.ID
		p.Status = moderation.ListingApproved
		p.Description = p.Name + " from " + land.Name
		if err := db.WithContext(ctx).Where(models.Product{FarmerID: farmer.ID, Name: p.Name}).FirstOrCreate(p).Error; err != nil {
			return err
		}
	}
	return nil
}

func userByEmail(ctx context.Context, db *gorm.DB, email string) (models.User, error) {
	var u models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return u, err
}
