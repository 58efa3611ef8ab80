package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidationDetails converts binding errors into field details.
// The second result is false when err is not a validation error.
func ValidationDetails(err error) ([]ValidationDetail, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ValidationDetail{
				Field:   toSnakeCase(fe.Field()),
				Message: validationMessage(fe),
				Code:    validationCode(fe.Tag()),
			})
		}
		return details, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationDetail{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			Code:    ErrCodeValidationFormat,
		}}, true
	}
	return nil, false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag() + " validation"
	}
}

func validationCode(tag string) string {
	switch tag {
	case "required":
		return ErrCodeValidationRequired
	case "min", "max", "len":
		return ErrCodeValidationLength
	case "gte", "lte", "gt", "lt":
		return ErrCodeValidationRange
	default:
		return ErrCodeValidationFormat
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && unicode.IsLower(prev) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
