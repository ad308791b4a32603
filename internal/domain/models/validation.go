package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation возвращается, если у вопроса не заполнено обязательное поле.
var ErrValidation = errors.New("validation error")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Validate проверяет, что все шесть полей вопроса присутствуют и не пусты.
func (in QuestionInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w, %v", ErrValidation, err)
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}

	return fmt.Errorf("%w, missing fields: %s", ErrValidation, strings.Join(missing, ", "))
}

// ValidateAll проверяет пачку вопросов и указывает номер первого некорректного.
func ValidateAll(inputs []QuestionInput) error {
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}

	return nil
}
