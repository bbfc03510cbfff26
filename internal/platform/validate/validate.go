package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
)

var (
	v          *validator.Validate
	nationalID = regexp.MustCompile(`^[0-9]{11}$`)
)

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister("nationalid", func(fl validator.FieldLevel) bool {
		return nationalID.MatchString(fl.Field().String())
	})
	mustRegister("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister("date", func(fl validator.FieldLevel) bool {
		_, err := dates.Parse(fl.Field().String())
		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

// NationalID reports whether s is exactly eleven ASCII digits.
func NationalID(s string) bool {
	return nationalID.MatchString(s)
}

// Struct validates s and returns an INVALID_ARGUMENT error listing every failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Internal(err.Error())
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = formatFieldError(fe)
	}
	return apperr.InvalidFields(fields)
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "nationalid":
		return "must be exactly 11 digits"
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "max":
		return fmt.Sprintf("maximum length is %s", e.Param())
	default:
		return fmt.Sprintf("failed on '%s'", e.Tag())
	}
}
