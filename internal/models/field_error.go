// internal/models/field_error.go
package models

// FieldError is an advisory validation message bound to one input.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
