package notification

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const notSpecified = "Not specified"

var serviceNames = map[string]string{
	"general-inquiry":      "General Inquiry",
	"quote-request":        "Quote Request",
	"technical-support":    "Technical Support",
	"partnership":          "Partnership",
	"industrial-chemicals": "Industrial Chemicals",
	"lab-supplies":         "Laboratory Supplies",
	"water-treatment":      "Water Treatment",
	"mining-chemicals":     "Mining Chemicals",
	"food-beverage":        "Food & Beverage",
	"consulting":           "Consulting",
}

var budgetNames = map[string]string{
	"under-1000":  "Under $1,000",
	"1000-5000":   "$1,000 - $5,000",
	"5000-10000":  "$5,000 - $10,000",
	"10000-25000": "$10,000 - $25,000",
	"over-25000":  "Over $25,000",
}

var timelineNames = map[string]string{
	"urgent":   "Urgent (1-2 weeks)",
	"normal":   "Normal (1 month)",
	"flexible": "Flexible (2+ months)",
}

var industryExceptions = map[string]string{
	"food-beverage": "Food & Beverage",
}

func lookup(names map[string]string, v string) string {
	if v == "" {
		return notSpecified
	}
	if name, ok := names[v]; ok {
		return name
	}
	return v
}

// ServiceName returns the display name of a service or inquiry type.
func ServiceName(v string) string { return lookup(serviceNames, v) }

func BudgetName(v string) string { return lookup(budgetNames, v) }

func TimelineName(v string) string { return lookup(timelineNames, v) }

// IndustryName title-cases a hyphenated industry value: "water-treatment"
// becomes "Water Treatment".
func IndustryName(v string) string {
	if v == "" {
		return notSpecified
	}
	if name, ok := industryExceptions[v]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(v, "-", " "))
}

// ServiceList joins display names, or reports Not specified for none.
func ServiceList(services []string) string {
	if len(services) == 0 {
		return notSpecified
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = ServiceName(s)
	}
	return strings.Join(names, ", ")
}

// FormatPhone renders a phone number in international format when it parses
// as a valid number for region, and returns it unchanged otherwise.
func FormatPhone(raw, region string) string {
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
