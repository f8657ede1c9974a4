package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct проверяет теги validate и возвращает первую ошибку как *domain.ValidationError
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Field: "body", Reason: domain.ReasonInvalidValue}
	}

	first := fieldErrs[0]
	return &domain.ValidationError{Field: first.Field(), Reason: reasonForTag(first.Tag())}
}

func reasonForTag(tag string) string {
	switch tag {
	case "required":
		return domain.ReasonRequired
	case "max":
		return domain.ReasonTooLong
	case "gt", "gte":
		return domain.ReasonMustBePositive
	default:
		return domain.ReasonInvalidValue
	}
}
