package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "github.com/simonboegh/x-sentiment-tracker/internal/platform/errors"
)

var tickerRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.]{0,9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their request names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"param", "query"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	if err := v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// bindAndValidate applies `default` tags, binds path and query parameters over
// them and runs `validate` tags. Defaults go first so an explicit zero survives.
// Failures come back as validation errors.
func bindAndValidate(c echo.Context, req any) error {
	if err := defaults.Set(req); err != nil {
		return apperrors.InternalError("failed to apply request defaults", err)
	}

	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return apperrors.ValidationError(fmt.Sprintf("%v", he.Message))
		}
		return apperrors.ValidationError(err.Error())
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return apperrors.ValidationError(validationMessage(fe)).WithField("field", fe.Field())
		}
		return apperrors.ValidationError(err.Error())
	}

	return nil
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "ticker":
		return fmt.Sprintf("%s must be a ticker symbol", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
