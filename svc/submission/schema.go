package submission

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// schemaEmail is stricter than ValidEmail and guards what reaches storage.
var schemaEmail = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("schemaemail", func(fl validator.FieldLevel) bool {
		return schemaEmail.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

var fieldLabels = map[string]string{
	"FirstName":    "First name",
	"LastName":     "Last name",
	"Email":        "Email",
	"Phone":        "Phone number",
	"Company":      "Company name",
	"Subject":      "Subject",
	"Message":      "Message",
	"Service":      "Service",
	"EmailStatus":  "Email status",
	"Industry":     "Industry",
	"Address":      "Address",
	"Services":     "Services",
	"Budget":       "Budget",
	"Timeline":     "Timeline",
	"Requirements": "Requirements",
}

// CheckContactSchema enforces storage constraints on a contact.
func CheckContactSchema(c *Contact) error { return checkSchema(c) }

// CheckQuoteSchema enforces storage constraints on a quote.
func CheckQuoteSchema(q *Quote) error { return checkSchema(q) }

func checkSchema(v any) error {
	err := schema.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &SchemaError{Details: []string{"Invalid record"}, Cause: err}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, schemaMessage(fe))
	}
	return &SchemaError{Details: details, Cause: err}
}

func schemaMessage(fe validator.FieldError) string {
	field := fe.StructField()
	element := false
	if i := strings.IndexByte(field, '['); i >= 0 {
		field, element = field[:i], true
	}
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "schemaemail":
		return "Please provide a valid email"
	case "min":
		if field == "Services" {
			return "At least one service must be selected"
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		if field == "Services" {
			return fmt.Sprintf("Cannot select more than %s services", fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "oneof":
		if element {
			return fmt.Sprintf("%q is not a valid service", fe.Value())
		}
		return fmt.Sprintf("%q is not a valid %s", fe.Value(), strings.ToLower(label))
	}
	return label + " is invalid"
}
