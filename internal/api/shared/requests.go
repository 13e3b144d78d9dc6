package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// FormValue returns the named form field, or fallback when the field is
// absent from the request. An explicitly submitted empty value is kept.
// The request's form must already be parsed.
func FormValue(r *http.Request, name, fallback string) string {
	if values, ok := r.Form[name]; ok && len(values) > 0 {
		return values[0]
	}
	return fallback
}
