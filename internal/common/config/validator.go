package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one invalid configuration field
type FieldError struct {
	Field string
	Rule  string
	Value any
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, f := range e.Fields {
		sb.WriteString("\n--> ")
		sb.WriteString(f.Field)
		sb.WriteString(": failed '")
		sb.WriteString(f.Rule)
		sb.WriteString("' (got ")
		sb.WriteString(fmt.Sprintf("%v", f.Value))
		sb.WriteString(")")
	}
	return sb.String()
}

// Validate checks the configuration against its struct rules
func Validate(cfg *HuddleConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Message: "invalid huddle configuration"}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Namespace(),
			Rule:  fe.Tag(),
			Value: fe.Value(),
		})
	}
	return out
}
