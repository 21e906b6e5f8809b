package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"tasklist/internal/core/model/response"
	"tasklist/internal/core/port"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())
	Validator.RegisterTagNameFunc(jsonFieldName)

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

type structValidator struct{}

// New returns the shared validator behind the port used by the services.
func New() port.Validator {
	return structValidator{}
}

func (structValidator) ValidateStruct(s interface{}) error {
	return Validator.Struct(s)
}

func (structValidator) FormatValidationErrors(err error) []response.ValidationError {
	return FormatValidationErrors(err)
}

// IsValidationError reports whether err carries field errors from the validator.
func IsValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "This field is required.", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required")
		return t
	})

	Validator.RegisterTranslation("max", Translator, func(ut ut.Translator) error {
		return ut.Add("max", "Ensure this field has no more than {0} characters.", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", fe.Param())
		return t
	})

	Validator.RegisterTranslation("min", Translator, func(ut ut.Translator) error {
		return ut.Add("min", "Ensure this field has at least {0} characters.", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("min", fe.Param())
		return t
	})

	Validator.RegisterTranslation("email", Translator, func(ut ut.Translator) error {
		return ut.Add("email", "Enter a valid email address.", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("email")
		return t
	})
}

// jsonFieldName reports fields by their wire name. Structs without json tags
// fall back to snake case of the Go name.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

	if name == "-" {
		return ""
	}

	if name != "" {
		return name
	}

	return toSnake(field.Name)
}

func toSnake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	return b.String()
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errs []response.ValidationError
	var validationErrors validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			errs = append(errs, response.ValidationError{
				Field:   fieldError.Field(),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errs
}
