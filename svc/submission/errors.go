package submission

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("submission: validation failed")
	ErrSchemaViolation    = errors.New("submission: schema violation")
	ErrStorageUnavailable = errors.New("submission: storage unavailable")
	ErrNotFound           = errors.New("submission: not found")
	ErrStatusTransition   = errors.New("submission: email status already final")
)

// FieldsErrorKind says which client-input check failed.
type FieldsErrorKind string

const (
	KindMissingFields   FieldsErrorKind = "missing_fields"
	KindMissingServices FieldsErrorKind = "missing_services"
	KindInvalidEmail    FieldsErrorKind = "invalid_email"
)

// FieldsError reports a failed critical-field check.
type FieldsError struct {
	Kind     FieldsErrorKind
	Required []string // fields that must be present
	Missing  []string // fields that were absent, in declared order
}

// Field is the first offending field.
func (e *FieldsError) Field() string {
	switch {
	case e.Kind == KindInvalidEmail:
		return "email"
	case e.Kind == KindMissingServices:
		return "services"
	case len(e.Missing) > 0:
		return e.Missing[0]
	}
	return ""
}

func (e *FieldsError) Error() string {
	switch e.Kind {
	case KindInvalidEmail:
		return "invalid email format"
	case KindMissingServices:
		return "at least one service must be selected"
	}
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

func (e *FieldsError) Unwrap() error { return ErrValidation }

// SchemaError is a storage-level constraint failure. Details are
// human-readable and safe to return to clients.
type SchemaError struct {
	Details []string
	Cause   error
}

func (e *SchemaError) Error() string {
	return ErrSchemaViolation.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *SchemaError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrSchemaViolation}
	}
	return []error{ErrSchemaViolation, e.Cause}
}

// Unavailable wraps a connectivity error so it matches ErrStorageUnavailable.
func Unavailable(err error) error {
	return errors.Join(ErrStorageUnavailable, err)
}
