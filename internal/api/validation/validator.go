package validation

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/h190k/formrelay/internal/forms"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Tag     string `json:"tag,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// FormatValidationError formats binding errors into a user-friendly response
func FormatValidationError(err error) []ValidationError {
	var (
		validationErrors validator.ValidationErrors
		syntaxErr        *json.SyntaxError
		typeErr          *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErrors):
		out := make([]ValidationError, 0, len(validationErrors))
		for _, e := range validationErrors {
			out = append(out, ValidationError{
				Field: e.Field(),
				Tag:   e.Tag(),
				Value: e.Param(),
			})
		}
		return out
	case errors.Is(err, forms.ErrNotObject):
		return []ValidationError{{Field: "data", Message: forms.ErrNotObject.Error()}}
	case errors.As(err, &typeErr):
		return []ValidationError{{Field: typeErr.Field, Message: "must be " + typeErr.Type.String()}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return []ValidationError{{Message: "malformed JSON"}}
	case errors.Is(err, io.EOF):
		return []ValidationError{{Message: "request body is empty"}}
	default:
		return nil
	}
}
