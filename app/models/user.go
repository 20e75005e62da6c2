package models

import (
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
)

// User is a customer, farmer or admin account.
type User struct {
	Model
	Name     string                   `gorm:"size:255;not null" json:"name"`
	Email    string                   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string                   `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Phone    string                   `gorm:"size:32" json:"phone,omitempty"`
	Role     access.Role              `gorm:"size:20;not null;index" json:"role"`
	Status   moderation.AccountStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	Notes    string                   `gorm:"type:text" json:"notes,omitempty"`
}

// InitialStatus is the status a new account of role starts in. Farmers wait
// for verification.
func InitialStatus(role access.Role) moderation.AccountStatus {
	if role == access.RoleFarmer {
		return moderation.AccountPending
	}
	return moderation.AccountActive
}
