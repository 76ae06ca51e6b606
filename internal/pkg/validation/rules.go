package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/users333/faculty-registry/internal/pkg/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

// FacultyInput holds the raw fields typed for a new faculty
type FacultyInput struct {
	Name         string `validate:"required,max=100,singleline"`
	Abbreviation string `validate:"required,max=20,singleline"`
	Domain       string `validate:"required,max=100,singleline"`
}

// StudentInput holds the raw fields typed for a new student
type StudentInput struct {
	Faculty   string `validate:"required,singleline"`
	Surname   string `validate:"required,max=100,singleline"`
	GivenName string `validate:"required,max=100,singleline"`
	Email     string `validate:"required,email"`
	BirthDate string `validate:"required,datetime=2006-01-02"`
}

// Struct validates any tagged struct and converts failures into a CustomError
// whose details map field name to the failing rule.
func Struct(obj interface{}) error {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, formatValidationError(fe))
		details[fe.Field()] = fe.Tag()
	}

	return apperrors.NewValidationError(strings.Join(messages, "; ")).
		WithCode("VALIDATION_FAILED").
		WithDetails(details)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "datetime":
		return e.Field() + " must be a date in YYYY-MM-DD format"
	case "singleline":
		return e.Field() + " must not contain line breaks"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
