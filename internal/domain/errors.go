package domain

// APIError is the RFC 7807 style error body every handler returns.
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Error type discriminators used in APIError.Type
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// GetValidationMessage turns a validator tag into a message suitable for the
// per-field errors map. Only the tags the request DTOs actually use get a
// dedicated message.
func GetValidationMessage(tag string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "max":
		return "Exceeds maximum length"
	case "min":
		return "Below minimum length"
	case "gt":
		return "Must be greater than zero"
	case "gte":
		return "Must not be negative"
	case "oneof":
		return "Must be one of the allowed values"
	case "uuid":
		return "Must be a valid UUID"
	case "url":
		return "Must be a valid URL"
	default:
		return "Validation failed: " + tag
	}
}
