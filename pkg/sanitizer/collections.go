package sanitizer

import "strings"

// FilterEmpty drops blank strings.
func FilterEmpty(slice []string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// TrimStringSlice trims every element.
func TrimStringSlice(slice []string) []string {
	out := make([]string, len(slice))
	for i, s := range slice {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// LimitSliceLength keeps the first maxLength elements.
func LimitSliceLength[T any](slice []T, maxLength int) []T {
	if maxLength <= 0 {
		return []T{}
	}
	if len(slice) <= maxLength {
		return slice
	}
	return slice[:maxLength]
}
