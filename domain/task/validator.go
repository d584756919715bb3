package task

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks drafts against the task schema
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a schema validator. It is safe for concurrent use.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns human-readable reasons the draft is invalid, or nil
func (v *Validator) Validate(d *Draft) []string {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		reasons = append(reasons, describe(fe))
	}
	return reasons
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", field)
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s: must be a UUID", field)
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}
