// Package sanitizer provides small, composable string transforms used to
// clean untrusted form input before it is validated or stored.
//
// Every transform is a plain func(string) string (or a slice equivalent), so
// pipelines can be built with Apply and Compose:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.RemoveControlChars, sanitizer.StripHTML)
//	name := clean(raw)
package sanitizer
