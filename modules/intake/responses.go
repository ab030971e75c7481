package intake

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cernol/formintake/binder"
	"github.com/cernol/formintake/handler"
	"github.com/cernol/formintake/pkg/environment"
	"github.com/cernol/formintake/svc/submission"
)

const (
	contactAcceptedMessage = "Thank you for contacting us! We have received your message and will get back to you soon."
	quoteCreatedMessage    = "Quote request submitted successfully! We'll get back to you within 24 hours."
)

type contactAccepted struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ContactID    string `json:"contactId"`
	ResponseTime string `json:"responseTime"`
}

type quoteCreated struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	QuoteID      string `json:"quoteId"`
	ResponseTime string `json:"responseTime"`
}

type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type missingFieldsBody struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error"`
	Required []string `json:"required"`
	Missing  []string `json:"missing"`
}

type fieldErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field"`
	Message string `json:"message,omitempty"`
}

type schemaErrorBody struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details"`
	Message string   `json:"message"`
}

type serverErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type internalErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type notFoundBody struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

func responseTime(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// form names the endpoint an error came from; the two forms word their
// missing-field responses differently.
type form int

const (
	contactForm form = iota
	quoteForm
)

// submitError maps a submission failure to its response.
func submitError(f form, err error, env environment.Environment) handler.Response {
	var (
		fieldsErr *submission.FieldsError
		schemaErr *submission.SchemaError
	)

	switch {
	case errors.As(err, &fieldsErr):
		return fieldsResponse(f, fieldsErr)

	case errors.As(err, &schemaErr):
		return handler.JSON(schemaErrorBody{
			Error:   "Validation error",
			Details: schemaErr.Details,
			Message: "Please check your input data",
		}, handler.WithJSONStatus(http.StatusBadRequest))

	case errors.Is(err, submission.ErrStorageUnavailable):
		return handler.JSON(failureBody{
			Error:   "Database temporarily unavailable",
			Message: "Please try again in a few moments",
		}, handler.WithJSONStatus(http.StatusServiceUnavailable))
	}

	body := serverErrorBody{
		Error:   "Server error occurred while processing your request",
		Message: "Please try again later",
	}
	if !env.IsProduction() {
		body.Details = err.Error()
	}
	return handler.JSON(body, handler.WithJSONStatus(http.StatusInternalServerError))
}

func fieldsResponse(f form, err *submission.FieldsError) handler.Response {
	badRequest := handler.WithJSONStatus(http.StatusBadRequest)

	switch err.Kind {
	case submission.KindInvalidEmail:
		return handler.JSON(fieldErrorBody{
			Error:   "Invalid email format",
			Field:   "email",
			Message: "Please enter a valid email address",
		}, badRequest)

	case submission.KindMissingServices:
		return handler.JSON(failureBody{Error: "At least one service must be selected"}, badRequest)
	}

	if f == contactForm {
		return handler.JSON(missingFieldsBody{
			Error:    "Missing required fields",
			Required: err.Required,
			Missing:  err.Missing,
		}, badRequest)
	}
	return handler.JSON(fieldErrorBody{
		Error: "Please fill in all required fields",
		Field: err.Field(),
	}, badRequest)
}

// bindError answers requests whose body could not be decoded.
func bindError(ctx handler.Context, err error) {
	status := http.StatusBadRequest
	body := failureBody{Error: "Invalid request body", Message: "Request body must be valid JSON or form data"}
	if errors.Is(err, binder.ErrBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
		body = failureBody{Error: "Request body too large", Message: "Please shorten your submission"}
	}
	_ = handler.WriteJSON(ctx.ResponseWriter(), ctx.Request(), status, body)
}
