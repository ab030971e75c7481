package submission

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cernol/formintake/pkg/sanitizer"
)

var cleanText = sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim)

// SanitizeText turns untrusted input into safe display text: non-strings
// become "", control characters and markup are removed and the remainder is
// HTML-escaped. The result never exceeds max runes and sanitizing it again
// returns it unchanged.
func SanitizeText(v any, max int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if max <= 0 {
		max = DefaultTextLen
	}
	s = sanitizer.MaxLength(cleanText(s), max)
	// Decoded entities may reintroduce whitespace or control characters.
	s = cleanText(sanitizer.StripHTML(s))
	s = sanitizer.TruncateEscaped(sanitizer.EscapeHTML(s), max)
	return strings.TrimSpace(s)
}

// SanitizeEmail normalizes an address; "" when it is not one.
func SanitizeEmail(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return sanitizer.NormalizeEmail(s)
}

// SanitizePhone keeps digits and '+'.
func SanitizePhone(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return sanitizer.MaxLength(sanitizer.KeepPhoneChars(s), MaxPhoneLen)
}

// SanitizeServices keeps trimmed, non-empty string entries in input order,
// at most MaxServices of them. Anything that is not a list yields an empty
// list.
func SanitizeServices(v any) []string {
	var items []string
	switch x := v.(type) {
	case []string:
		items = x
	case []any:
		items = make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return []string{}
	}
	out := sanitizer.FilterEmpty(sanitizer.TrimStringSlice(items))
	return slices.Clone(sanitizer.LimitSliceLength(out, MaxServices))
}

// SanitizeSelect returns the sanitized value when it is one of allowed,
// otherwise "".
func SanitizeSelect(v any, allowed []string) string {
	s := SanitizeText(v, MaxSelectLen)
	if slices.Contains(allowed, s) {
		return s
	}
	return ""
}

// SanitizeBool applies loose truthiness. Form encodings send "false", "0"
// or "off" for unchecked boxes, which count as false.
func SanitizeBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "false", "0", "off", "no":
			return false
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f != 0
		}
		return true
	case []any:
		return true
	case map[string]any:
		return true
	}
	return false
}

// SanitizeContact builds a pending Contact from raw form data. The inquiry
// type is derived from the sanitized subject.
func SanitizeContact(raw map[string]any) Contact {
	c := Contact{
		FirstName:   SanitizeText(raw["firstName"], MaxNameLen),
		LastName:    SanitizeText(raw["lastName"], MaxNameLen),
		Email:       SanitizeEmail(raw["email"]),
		Phone:       SanitizePhone(raw["phone"]),
		Company:     SanitizeText(raw["company"], MaxCompanyLen),
		Subject:     SanitizeText(raw["subject"], MaxSubjectLen),
		Message:     SanitizeText(raw["message"], MaxMessageLen),
		Service:     defaultContactService,
		EmailStatus: EmailPending,
	}
	if mapped, ok := contactServices[c.Subject]; ok {
		c.Service = mapped
	}
	return c
}

// SanitizeQuote builds a Quote from raw form data. Budget and timeline fall
// back to "discuss".
func SanitizeQuote(raw map[string]any) Quote {
	q := Quote{
		FirstName:    SanitizeText(raw["firstName"], MaxNameLen),
		LastName:     SanitizeText(raw["lastName"], MaxNameLen),
		Email:        SanitizeEmail(raw["email"]),
		Phone:        SanitizePhone(raw["phone"]),
		Company:      SanitizeText(raw["company"], MaxCompanyLen),
		Industry:     SanitizeSelect(raw["industry"], Industries),
		Address:      SanitizeText(raw["address"], MaxAddressLen),
		Services:     SanitizeServices(raw["services"]),
		Budget:       SanitizeSelect(raw["budget"], Budgets),
		Timeline:     SanitizeSelect(raw["timeline"], Timelines),
		Requirements: SanitizeText(raw["requirements"], MaxRequirementsLen),
		Newsletter:   SanitizeBool(raw["newsletter"]),
	}
	if q.Budget == "" {
		q.Budget = "discuss"
	}
	if q.Timeline == "" {
		q.Timeline = "discuss"
	}
	return q
}
