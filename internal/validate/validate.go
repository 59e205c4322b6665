package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ms-reservations/internal/apierror"
)

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their JSON names so the 422 body matches the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates a request payload against its `validate` tags and converts
// failures into the field-keyed ValidationError the API returns as 422.
// Returns nil when the payload is valid.
func Struct(s interface{}) *apierror.ValidationError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	ve := apierror.NewValidation()
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ve.Add("body", "invalid request payload")
	}
	for _, fe := range verrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("the %s field is required", fe.Field())
	case "email":
		return fmt.Sprintf("the %s must be a valid email address", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("the %s may not be greater than %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("the %s may not be greater than %s", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("the %s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("the %s must be at least %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("the %s is not a valid date", fe.Field())
	default:
		return fmt.Sprintf("the %s field is invalid", fe.Field())
	}
}
