package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

type CustomValidator struct {
	validator *validator.Validate
	trans     ut.Translator
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	errs := make([]ValidationError, 0, len(verrs))
	for _, verr := range verrs {
		errs = append(errs, ValidationError{
			Field:   verr.Field(),
			Message: verr.Translate(cv.trans),
		})
	}

	return echo.NewHTTPError(http.StatusUnprocessableEntity, errs)
}

func NewValidator() (*CustomValidator, error) {
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	err := en_translations.RegisterDefaultTranslations(validate, trans)
	if err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	return &CustomValidator{
		validator: validate,
		trans:     trans,
	}, nil
}
