package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/salesdash/internal/transaction/domain"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collectValidation converts validator output into per-field messages.
func collectValidation(err error, into *domain.ValidationError) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		into.Add(fe.Field(), messageFor(fe.Field(), fe.Tag()))
	}
	return nil
}

func messageFor(field, tag string) string {
	label := attributeLabel(field)
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "number", "numeric":
		return fmt.Sprintf("The %s must be a number.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}

func invalidSelection(field string) string {
	return fmt.Sprintf("The selected %s is invalid.", attributeLabel(field))
}

func attributeLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
