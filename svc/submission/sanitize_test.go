package submission_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cernol/formintake/svc/submission"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		max  int
		want string
	}{
		{"non-string", 42, 50, ""},
		{"nil", nil, 50, ""},
		{"trimmed", "  Jane  ", 50, "Jane"},
		{"tags stripped", "<b>Hello</b> world", 50, "Hello world"},
		{"script removed with content", "<script>alert('x')</script>Hi", 50, "Hi"},
		{"special chars escaped", `Tom & "Jerry" O'Neil 1/2`, 100, "Tom &amp; &quot;Jerry&quot; O&#x27;Neil 1&#x2F;2"},
		{"control chars removed", "a\x00b\x07c\nd", 50, "abc\nd"},
		{"capped", strings.Repeat("a", 60), 50, strings.Repeat("a", 50)},
		{"escaped output capped on entity boundary", strings.Repeat("a", 48) + "&b", 50, strings.Repeat("a", 48)},
		{"whitespace exposed by stripping", "<p> hi </p>", 50, "hi"},
		{"default max", strings.Repeat("x", 1200), 0, strings.Repeat("x", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, submission.SanitizeText(tt.in, tt.max))
		})
	}
}

func TestSanitizeTextIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"plain text",
		`<img src=x onerror="alert(1)">caption`,
		"Fish & Chips <3 / 'quoted' \"double\"",
		"&lt;script&gt; already escaped",
		"\x01 leading control",
		strings.Repeat("é&", 40),
		"line one\nline two\r\n",
	}
	for _, in := range inputs {
		for _, max := range []int{10, 50, 200} {
			once := submission.SanitizeText(in, max)
			assert.Equal(t, once, submission.SanitizeText(once, max), "input %q max %d", in, max)
			assert.LessOrEqual(t, len([]rune(once)), max)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane@example.com", submission.SanitizeEmail(" Jane@Example.com "))
	assert.Equal(t, "jane@outlook.com", submission.SanitizeEmail("jane+spam@outlook.com"))
	assert.Equal(t, "", submission.SanitizeEmail("not-an-email"))
	assert.Equal(t, "", submission.SanitizeEmail(123))
}

func TestSanitizePhone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+263771234567", submission.SanitizePhone("+263 77 123 4567"))
	assert.Equal(t, "", submission.SanitizePhone(true))
	assert.Len(t, submission.SanitizePhone(strings.Repeat("1", 30)), 20)
}

func TestSanitizeServices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"not a list", "consulting", []string{}},
		{"nil", nil, []string{}},
		{"json list", []any{" consulting ", "", 3, "lab-supplies", "consulting"}, []string{"consulting", "lab-supplies", "consulting"}},
		{"form list", []string{"a", "  "}, []string{"a"}},
		{"capped", []any{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, submission.SanitizeServices(tt.in))
		})
	}
}

func TestSanitizeSelect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mining", submission.SanitizeSelect(" mining ", submission.Industries))
	assert.Equal(t, "", submission.SanitizeSelect("space-travel", submission.Industries))
	assert.Equal(t, "", submission.SanitizeSelect(nil, submission.Industries))
}

func TestSanitizeBool(t *testing.T) {
	t.Parallel()

	truthy := []any{true, 1.0, "yes", "on", "true", "1", []any{}}
	falsy := []any{false, 0.0, "", "false", "0", "off", nil}
	for _, v := range truthy {
		assert.True(t, submission.SanitizeBool(v), "%v", v)
	}
	for _, v := range falsy {
		assert.False(t, submission.SanitizeBool(v), "%v", v)
	}
}

func TestSanitizeContact(t *testing.T) {
	t.Parallel()

	c := submission.SanitizeContact(map[string]any{
		"firstName": " <b>Ann</b> ",
		"lastName":  "Lee",
		"email":     "ANN@Example.com",
		"phone":     "(077) 123-456",
		"company":   "Acme & Sons",
		"subject":   " support ",
		"message":   "Hello\nthere",
		"service":   "partnership",
		"extra":     "ignored",
	})

	assert.Equal(t, "Ann", c.FirstName)
	assert.Equal(t, "ann@example.com", c.Email)
	assert.Equal(t, "077123456", c.Phone)
	assert.Equal(t, "Acme &amp; Sons", c.Company)
	assert.Equal(t, "support", c.Subject)
	assert.Equal(t, "technical-support", c.Service)
	assert.Equal(t, submission.EmailPending, c.EmailStatus)
	assert.Empty(t, c.ID)
}

func TestSanitizeContact_ServiceFromSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		subject any
		want    string
	}{
		{subject: "general", want: "general-inquiry"},
		{subject: "quote", want: "quote-request"},
		{subject: "support", want: "technical-support"},
		{subject: "partnership", want: "partnership"},
		{subject: "Pricing question", want: "general-inquiry"},
		{subject: "", want: "general-inquiry"},
		{subject: nil, want: "general-inquiry"},
	}

	for _, tt := range tests {
		c := submission.SanitizeContact(map[string]any{
			"firstName": "Jane",
			"lastName":  "Doe",
			"email":     "jane@example.com",
			"message":   "Hello",
			"subject":   tt.subject,
		})
		assert.Equal(t, tt.want, c.Service, "subject %v", tt.subject)
	}

	ignored := submission.SanitizeContact(map[string]any{"service": "support"})
	assert.Equal(t, "general-inquiry", ignored.Service)
}

func TestSanitizeQuote(t *testing.T) {
	t.Parallel()

	q := submission.SanitizeQuote(map[string]any{
		"firstName":    "Bo",
		"lastName":     "Ng",
		"email":        "bo@example.com",
		"company":      "Mine Co",
		"industry":     "mining",
		"services":     []any{"mining-chemicals"},
		"budget":       "a lot",
		"requirements": "Need reagents",
		"newsletter":   "on",
	})

	assert.Equal(t, "mining", q.Industry)
	assert.Equal(t, []string{"mining-chemicals"}, q.Services)
	assert.Equal(t, "discuss", q.Budget)
	assert.Equal(t, "discuss", q.Timeline)
	assert.True(t, q.Newsletter)
}
