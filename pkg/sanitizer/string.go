package sanitizer

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func Trim(s string) string { return strings.TrimSpace(s) }

func ToLower(s string) string { return strings.ToLower(s) }

// MaxLength keeps at most maxLen runes of s.
func MaxLength(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}

// RemoveControlChars drops C0 control characters and DEL, keeping tab,
// line feed and carriage return.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// Elements whose text content is dropped along with the tags.
var nonTextElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Textarea: true,
	atom.Option:   true,
}

// StripHTML removes all markup and returns the decoded text content.
// Content of script, style, textarea and option elements is discarded.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if nonTextElements[atom.Lookup(name)] {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if nonTextElements[atom.Lookup(name)] && skip > 0 {
				skip--
			}
		}
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML escapes & < > " ' and / as HTML entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// UnescapeHTML decodes HTML entities.
func UnescapeHTML(s string) string {
	return html.UnescapeString(s)
}

// longest entity EscapeHTML emits
const maxEntityLen = len("&#x2F;")

// TruncateEscaped limits escaped text to maxLen runes without cutting an
// entity in half. An entity that would straddle the limit is dropped whole.
func TruncateEscaped(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	cut := maxLen
	for i := cut - 1; i >= 0 && i > cut-maxEntityLen; i-- {
		if runes[i] == ';' {
			break
		}
		if runes[i] == '&' {
			end := min(len(runes), i+maxEntityLen)
			if j := slices.Index(runes[i:end], ';'); j > 0 && i+j >= cut {
				cut = i
			}
			break
		}
	}
	return string(runes[:cut])
}

// KeepPhoneChars keeps digits and '+'.
func KeepPhoneChars(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, s)
}
