package validator

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required fails for blank strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: field + " is required"},
	}
}

// RequiredSlice fails for empty slices.
func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool { return len(value) > 0 },
		Error: ValidationError{Field: field, Message: field + " must contain at least one item"},
	}
}

// MaxLen fails when value has more than max runes.
func MaxLen(field, value string, max int, message string) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: message},
	}
}

// MatchesPattern fails when a non-empty value does not match re.
func MatchesPattern(field, value string, re *regexp.Regexp, message string) Rule {
	return Rule{
		Check: func() bool { return value == "" || re.MatchString(value) },
		Error: ValidationError{Field: field, Message: message},
	}
}

// InList fails when a non-empty value is not one of allowed.
func InList[T comparable](field string, value T, allowed []T, message string) Rule {
	return Rule{
		Check: func() bool {
			var zero T
			return value == zero || slices.Contains(allowed, value)
		},
		Error: ValidationError{Field: field, Message: message},
	}
}

// Result is the outcome of RequiredFields.
type Result struct {
	IsValid bool
	Errors  []string
}

// RequiredFields checks that every named key of data holds a value.
// Missing keys, nil, and blank strings report "<field> is required";
// empty slices report "<field> must contain at least one item".
// data is never modified.
func RequiredFields(data map[string]any, fields []string) Result {
	res := Result{IsValid: true, Errors: []string{}}
	for _, f := range fields {
		if msg, ok := missing(f, data[f]); ok {
			res.IsValid = false
			res.Errors = append(res.Errors, msg)
		}
	}
	return res
}

func missing(field string, v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return field + " is required", true
	case string:
		if strings.TrimSpace(x) == "" {
			return field + " is required", true
		}
	case []string:
		if len(x) == 0 {
			return field + " must contain at least one item", true
		}
	case []any:
		if len(x) == 0 {
			return field + " must contain at least one item", true
		}
	}
	return "", false
}
