package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cernol/formintake/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags removed", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"script dropped", "hi<script>alert(1)</script>there", "hithere"},
		{"style dropped", "<style>p{}</style>text", "text"},
		{"option dropped", "<select><option>a</option></select>x", "x"},
		{"entities decoded", "Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
		{"bare less-than", "a < b", "a < b"},
		{"attributes gone", `<a href="javascript:x" onclick="y">link</a>`, "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.StripHTML(tt.in))
		})
	}
}

func TestEscapeHTML(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;&#x27;&amp;&#x2F;", sanitizer.EscapeHTML(`<a href="x">'&/`))
	assert.Equal(t, "plain", sanitizer.EscapeHTML("plain"))
}

func TestRemoveControlChars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab\tc\nd\re", sanitizer.RemoveControlChars("a\x00b\tc\nd\re\x7f\x1f\x0b\x0c"))
}

func TestMaxLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héll", sanitizer.MaxLength("héllo", 4))
	assert.Equal(t, "hi", sanitizer.MaxLength("hi", 10))
	assert.Equal(t, "", sanitizer.MaxLength("hi", 0))
}

func TestTruncateEscaped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"plain cut", "abcdef", 4, "abcd"},
		{"entity straddles", "ab&amp;cd", 4, "ab"},
		{"entity fits", "ab&amp;cd", 7, "ab&amp;"},
		{"long entity straddles", "x&#x2F;", 6, "x"},
		{"cut after entity", "&lt;&gt;x", 8, "&lt;&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.TruncateEscaped(tt.in, tt.max))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  John.Doe@Example.COM ", "john.doe@example.com"},
		{"john.doe+promo@googlemail.com", "john.doe+promo@gmail.com"},
		{"jane+news@outlook.com", "jane@outlook.com"},
		{"jane+news@hotmail.com", "jane@hotmail.com"},
		{"bob-list@yahoo.com", "bob@yahoo.com"},
		{"amy+x@icloud.com", "amy@icloud.com"},
		{"+tag@live.com", ""},
		{"no-at-sign", ""},
		{"@example.com", ""},
		{"user@", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.in))
		})
	}
}

func TestKeepPhoneChars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+263771234567", sanitizer.KeepPhoneChars("+263 (77) 123-4567"))
	assert.Equal(t, "", sanitizer.KeepPhoneChars("call me"))
}

func TestCollections(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", " b "}, sanitizer.FilterEmpty([]string{"a", "", "  ", " b "}))
	assert.Equal(t, []string{"a", "b"}, sanitizer.TrimStringSlice([]string{" a", "b "}))
	assert.Equal(t, []int{1, 2}, sanitizer.LimitSliceLength([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{}, sanitizer.LimitSliceLength([]int{1}, 0))
}

func TestCompose(t *testing.T) {
	t.Parallel()

	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.ToLower)
	assert.Equal(t, "abc", clean("  ABC "))
	assert.Equal(t, "abc", sanitizer.Apply(" Abc", sanitizer.Trim, sanitizer.ToLower))
}
