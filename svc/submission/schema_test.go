package submission_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cernol/formintake/svc/submission"
)

func TestCheckContactSchema(t *testing.T) {
	t.Parallel()

	c := validContact()
	require.NoError(t, submission.CheckContactSchema(&c))

	c.FirstName = strings.Repeat("a", 51)
	c.Email = "ann.@example.com"
	c.Service = "sales"
	err := submission.CheckContactSchema(&c)

	var se *submission.SchemaError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, submission.ErrSchemaViolation)
	assert.Equal(t, []string{
		"First name cannot exceed 50 characters",
		"Please provide a valid email",
		`"sales" is not a valid service`,
	}, se.Details)
}

func TestCheckQuoteSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*submission.Quote)
		want   string
	}{
		{"phone required", func(q *submission.Quote) { q.Phone = "" }, "Phone number is required"},
		{"industry required", func(q *submission.Quote) { q.Industry = "" }, "Industry is required"},
		{"unknown service", func(q *submission.Quote) { q.Services = []string{"rockets"} }, `"rockets" is not a valid service`},
		{"no services", func(q *submission.Quote) { q.Services = []string{} }, "At least one service must be selected"},
		{"bad budget", func(q *submission.Quote) { q.Budget = "free" }, `"free" is not a valid budget`},
		{"company too long", func(q *submission.Quote) { q.Company = strings.Repeat("c", 101) }, "Company name cannot exceed 100 characters"},
	}

	ok := validQuote()
	require.NoError(t, submission.CheckQuoteSchema(&ok))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := validQuote()
			tt.mutate(&q)

			var se *submission.SchemaError
			require.True(t, errors.As(submission.CheckQuoteSchema(&q), &se))
			assert.Equal(t, []string{tt.want}, se.Details)
		})
	}
}
