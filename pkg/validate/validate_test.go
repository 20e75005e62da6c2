package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/krishi/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,role"`
}

type productInput struct {
	Name  string          `json:"name"  validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gt=0"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret123",
		Role:     "farmer",
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredUsesJSONNames(t *testing.T) {
	errs := validate.Struct(registerInput{})
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "role")
}

func TestRoleRule(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name: "Root", Email: "root@example.com", Password: "secret123", Role: "admin",
	})
	assert.Equal(t, "The role must be customer or farmer.", errs["role"])
}

func TestStringLengthMessages(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name: "A", Email: "a@example.com", Password: "short", Role: "customer",
	})
	assert.Equal(t, "The name must be at least 2 characters.", errs["name"])
	assert.Equal(t, "The password must be at least 8 characters.", errs["password"])
}

func TestDecimalRule(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Rice", Price: decimal.Zero})
	assert.Equal(t, "The price must be greater than 0.", errs["price"])

	errs = validate.Struct(productInput{Name: "Rice", Price: decimal.RequireFromString("12.50"), Stock: -1})
	assert.NotContains(t, errs, "price")
	assert.Contains(t, errs, "stock")
}

func TestVar(t *testing.T) {
	assert.Empty(t, validate.Var("quantity", 3, "gte=1"))
	assert.Equal(t,
		"The quantity must be greater than or equal to 1.",
		validate.Var("quantity", 0, "gte=1")["quantity"])
}
