// Package service holds the forum's use cases on top of the repositories.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"forumcore/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and folds failures into a ValidationError.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe.Field(), fe.Tag(), fe.Param()))
	}
	return models.NewValidationError(strings.Join(msgs, "; "))
}

func fieldMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "ne":
		return fmt.Sprintf("%s must not be %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, tag)
	}
}
