package apperror

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("cents", validCents)
		validate = v
	})
	return validate
}

// validCents reports whether a decimal field carries no more than two
// fractional digits. The custom type func hands the tag a float64, so the
// original decimal is read back from the parent struct.
func validCents(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return true
	}
	field := parent.FieldByName(fl.StructFieldName())
	if !field.IsValid() || !field.CanInterface() {
		return true
	}
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return true
	}
	return d.Equal(d.Truncate(2))
}

// Struct validates s against its `validate` tags and returns a validation
// AppError listing every failing field.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	return MapValidationError(err)
}

func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return Invalid("", "invalid input")
	}
	issues := make([]FieldIssue, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, FieldIssue{Field: e.Field(), Reason: reasonFor(e)})
	}
	return Validation(issues...)
}

func reasonFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "min":
		return "must contain at least " + e.Param() + " item(s)"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "cents":
		return "must have at most 2 decimal places"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
