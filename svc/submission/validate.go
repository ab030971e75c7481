package submission

import (
	"regexp"

	"github.com/cernol/formintake/pkg/validator"
)

var (
	ContactCritical = []string{"firstName", "lastName", "email", "message"}
	QuoteCritical   = []string{"firstName", "lastName", "email", "company", "requirements"}
)

var emailFormat = regexp.MustCompile(`^[^/\s@]+@[^/\s@]+\.[^/\s@]+$`)

// ValidEmail is the client-facing address format check.
func ValidEmail(s string) bool {
	return emailFormat.MatchString(s)
}

// CheckContact verifies critical fields and the email format of a
// sanitized contact.
func CheckContact(c Contact) error {
	res := validator.RequiredFields(map[string]any{
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"email":     c.Email,
		"message":   c.Message,
	}, ContactCritical)
	if !res.IsValid {
		return &FieldsError{Kind: KindMissingFields, Required: ContactCritical, Missing: missingFrom(res, ContactCritical)}
	}
	if !ValidEmail(c.Email) {
		return &FieldsError{Kind: KindInvalidEmail, Required: ContactCritical}
	}
	return nil
}

// CheckQuote verifies critical fields, the service selection and the email
// format of a sanitized quote, in that order.
func CheckQuote(q Quote) error {
	res := validator.RequiredFields(map[string]any{
		"firstName":    q.FirstName,
		"lastName":     q.LastName,
		"email":        q.Email,
		"company":      q.Company,
		"requirements": q.Requirements,
	}, QuoteCritical)
	if !res.IsValid {
		return &FieldsError{Kind: KindMissingFields, Required: QuoteCritical, Missing: missingFrom(res, QuoteCritical)}
	}
	if r := validator.RequiredFields(map[string]any{"services": q.Services}, []string{"services"}); !r.IsValid {
		return &FieldsError{Kind: KindMissingServices, Required: QuoteCritical, Missing: []string{"services"}}
	}
	if !ValidEmail(q.Email) {
		return &FieldsError{Kind: KindInvalidEmail, Required: QuoteCritical}
	}
	return nil
}

// missingFrom maps RequiredFields messages back to field names.
func missingFrom(res validator.Result, fields []string) []string {
	out := make([]string, 0, len(res.Errors))
	for _, msg := range res.Errors {
		for _, f := range fields {
			if msg == f+" is required" || msg == f+" must contain at least one item" {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
