package val

import (
	"errors"
	"fmt"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
)

// ValidateSchema validates a given schema using the go-playground/validator package.
func ValidateSchema(schema any) error {
	err := getValidator().Struct(schema)

	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(errx.M)

		for _, fieldErr := range validationErrors {
			field := fieldErr.Field()
			fields[field] = getFieldErrDescription(fieldErr)
		}

		return errx.New(
			"Validation failed. See fields for details.",
			errx.WithCode(CodeValidationFailed),
			errx.WithType(errx.T_Validation),
			errx.WithFields(fields),
		)
	}
	return errx.New(
		fmt.Sprintf("Unknown validation error: %s", err.Error()),
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
	)
}

func getFieldErrDescription(fieldErr validator.FieldError) string {
	param := fieldErr.Param()
	tag := fieldErr.Tag()

	switch tag {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Value must be at least %s", param)
	case "max":
		return fmt.Sprintf("Value must be at most %s", param)
	case "gte":
		return fmt.Sprintf("Value must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("Value must be less than or equal to %s", param)
	case "gt":
		return fmt.Sprintf("Value must be greater than %s", param)
	case "lt":
		return fmt.Sprintf("Value must be less than %s", param)
	case "len":
		return fmt.Sprintf("Length must be exactly %s", param)
	case "oneof":
		return fmt.Sprintf("Value must be one of: %s", param)
	case "email":
		return "Value must be a valid email address"
	case "uuid":
		return "Value must be a valid UUID"
	case "url":
		return "Value must be a valid URL"
	case "numeric":
		return "Value must be numeric"
	case "alphanum":
		return "Value must contain only letters and numbers"
	}

	return fmt.Sprintf("Failed validation: %s", tag)
}
