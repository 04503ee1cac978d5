package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bigkaa/refadmin/internal/domain/model"
)

// newValidator создаёт валидатор, сообщающий имена полей в JSON-виде
// (совпадают с именами полей формы).
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
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
	return v
}

// validateRecord проверяет запись по тегам validate.
// Первая найденная ошибка возвращается как *model.ValidationError
// с ключом перевода validation.{tag}.
func validateRecord(v *validator.Validate, rec any) error {
	err := v.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fe := verrs[0]
	msg := fmt.Sprintf("поле не прошло проверку %q", fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("поле не прошло проверку %q (%s)", fe.Tag(), fe.Param())
	}
	return model.NewLocalizedValidationError(fe.Field(), "validation."+fe.Tag(), msg)
}
