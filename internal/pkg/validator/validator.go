// Package validator checks struct tags after the transport layer has already
// bound the payload, so failures here are domain rules rather than malformed
// JSON.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Fields maps a struct field name to the rule it broke, e.g. "Name": "min=2".
type Fields map[string]string

// Validate runs the `validate` tags on v and returns nil when everything
// passes. The rule string keeps the tag parameter so callers can surface
// "min=2" instead of a bare "min".
func Validate(v interface{}) Fields {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(Fields)
	for _, fe := range err.(validator.ValidationErrors) {
		rule := fe.Tag()
		if param := fe.Param(); param != "" {
			rule += "=" + param
		}
		fields[fe.Field()] = rule
	}
	return fields
}
