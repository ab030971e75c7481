package intake

import (
	"fmt"
	"net/http"

	"github.com/cernol/formintake/handler"
	"github.com/cernol/formintake/pkg/logger"
)

type testEmailSent struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

type testEmailFailed struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// GET /api/test-email
func (a *api) testEmail(w http.ResponseWriter, r *http.Request) {
	if a.opts.Environment.IsProduction() {
		_ = handler.WriteJSON(w, r, http.StatusNotFound, map[string]string{
			"error": "Test endpoint not available in production",
		})
		return
	}

	res := a.opts.Mailer.SendTest(r.Context())
	if res.Err != nil {
		a.log.ErrorContext(r.Context(), "test email failed", logger.Error(res.Err))
		_ = handler.WriteJSON(w, r, http.StatusInternalServerError, testEmailFailed{
			Error:   "Failed to send test email",
			Details: res.Err.Error(),
		})
		return
	}

	_ = handler.WriteJSON(w, r, http.StatusOK, testEmailSent{
		Success:   true,
		Message:   "Test email sent successfully",
		MessageID: res.MessageID,
	})
}

func (a *api) notFound(w http.ResponseWriter, r *http.Request) {
	a.unknownEndpoint(w, r, http.StatusNotFound)
}

func (a *api) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.unknownEndpoint(w, r, http.StatusMethodNotAllowed)
}

func (a *api) unknownEndpoint(w http.ResponseWriter, r *http.Request, status int) {
	_ = handler.WriteJSON(w, r, status, notFoundBody{
		Error:              "Endpoint not found",
		Message:            fmt.Sprintf("The requested endpoint %s %s does not exist", r.Method, r.URL.RequestURI()),
		AvailableEndpoints: a.endpoints(),
	})
}
