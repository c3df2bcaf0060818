// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Classify wraps err with an HTTP class sentinel so RespondError can map it.
func Classify(class, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", class, err)
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail(err, ErrNotFound))
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", detail(err, ErrDuplicate))
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", detail(err, ErrValidation))
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", detail(err, ErrForbidden))
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", detail(err, ErrUnauthorized))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// ValidateStruct runs struct tag validation and reports failures as ErrValidation.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func detail(err, class error) string {
	return strings.TrimPrefix(err.Error(), class.Error()+": ")
}
