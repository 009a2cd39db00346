package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

// requestValidator is installed as echo.Echo.Validator.
type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns a validator that reports fields by their JSON name and
// understands the "role" tag.
func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseRole(fl.Field().String())
		return ok
	})
	return &requestValidator{v: v}
}

// Validate returns an InvalidInput error listing every failed field.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.Wrap(domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, describe(fe))
	}
	return domain.Errorf(domain.KindInvalidInput, "%s", strings.Join(msgs, "; "))
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "excludes":
		return fmt.Sprintf("%s must not contain %s", field, fe.Param())
	case "role":
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field,
			domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleModerator)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
