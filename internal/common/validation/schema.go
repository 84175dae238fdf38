package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct checks `validate` tags on v and reports failures keyed by JSON field path.
func Struct(v interface{}) *ValidationResult {
	err := validate.Struct(v)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	var errs []ValidationError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errs = append(errs, ValidationError{
				Field:   trimRoot(fe.Namespace()),
				Message: describe(fe),
				Code:    strings.ToUpper(fe.Tag()),
			})
		}
	} else {
		errs = append(errs, ValidationError{Field: "", Message: err.Error(), Code: "INVALID"})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

// IsURL reports whether s is an absolute URL.
func IsURL(s string) bool {
	return validate.Var(s, "required,url") == nil
}

// IsEmail reports whether s is a syntactically valid address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// SchemaValidator validates documents against a compiled JSON schema.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

func NewSchemaValidator(schemaJSON []byte) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate marshals doc through encoding/json and checks it against the schema.
func (s *SchemaValidator) Validate(doc interface{}) (*ValidationResult, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	errs := make([]ValidationError, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		}
	}
	return &ValidationResult{Valid: false, Errors: errs}, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and anything nested under it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
