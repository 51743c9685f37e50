package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tag constraints on cfg and reports every failing
// field in a single error.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldError := range validationErrs {
		field := strings.TrimPrefix(fieldError.Namespace(), "Config.")

		switch fieldError.Tag() {
		case "required":
			problems = append(problems, field+" is required")
		case "numeric":
			problems = append(problems, field+" must be numeric")
		case "url":
			problems = append(problems, fmt.Sprintf("%s must be a URL (got %v)", field, fieldError.Value()))
		case "startswith":
			problems = append(problems, fmt.Sprintf("%s must start with %q", field, fieldError.Param()))
		case "gt", "gte", "lte":
			problems = append(problems, fmt.Sprintf("%s out of range (%s %s)", field, fieldError.Tag(), fieldError.Param()))
		default:
			problems = append(problems, field+" is invalid")
		}
	}
	sort.Strings(problems)

	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
