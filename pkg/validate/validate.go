// Package validate runs struct-tag validation and reports failures as a
// field → message map, the shape every 422 response carries.
//
// Rules are go-playground/validator tags, plus:
//
//	role        one of the self-registrable roles (customer, farmer)
//
// decimal.Decimal fields validate as float64, so numeric rules such as
// gt=0 apply to prices.
//
// Example:
//
//	type RegisterInput struct {
//	    Name     string `json:"name"     validate:"required,min=2,max=100"`
//	    Email    string `json:"email"    validate:"required,email"`
//	    Password string `json:"password" validate:"required,min=8"`
//	    Role     string `json:"role"     validate:"required,role"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "customer" || s == "farmer"
		})
		v.RegisterCustomTypeFunc(func(f reflect.Value) any {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				n, _ := d.Float64()
				return n
			}
			return nil
		}, decimal.Decimal{})
	})
	return v
}

// Struct validates s. The returned map is empty when s is valid.
func Struct(s any) map[string]string {
	errs := make(map[string]string)
	err := engine().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// non-struct input; nothing to report per field
		return errs
	}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := errs[name]; seen {
			continue
		}
		errs[name] = message(name, fe)
	}
	return errs
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) map[string]string {
	errs := make(map[string]string)
	var verrs validator.ValidationErrors
	if err := engine().Var(value, tag); errors.As(err, &verrs) {
		errs[field] = message(field, verrs[0])
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func message(field string, fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, p)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, p)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, p)
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, p)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, p)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, p)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, p)
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.ReplaceAll(p, " ", ", "))
	case "latitude", "longitude":
		return fmt.Sprintf("The %s must be a valid %s.", field, fe.Tag())
	case "role":
		return fmt.Sprintf("The %s must be customer or farmer.", field)
	case "dive":
		return fmt.Sprintf("The %s field is invalid.", field)
	default:
		return fmt.Sprintf("The %s field failed the %s rule.", field, fe.Tag())
	}
}
