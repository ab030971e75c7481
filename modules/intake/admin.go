package intake

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cernol/formintake/handler"
	"github.com/cernol/formintake/pkg/environment"
	"github.com/cernol/formintake/svc/submission"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type quotesPage struct {
	Success bool               `json:"success"`
	Data    []submission.Quote `json:"data"`
	Meta    pageMeta           `json:"meta"`
}

type pageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GET /api/quotes lists stored quotes for holders of the admin token.
// Without a configured token hash the route does not exist.
func (a *api) listQuotes(w http.ResponseWriter, r *http.Request) {
	if a.opts.AdminTokenHash == "" {
		a.notFound(w, r)
		return
	}
	if !a.authorized(r) {
		_ = handler.WriteJSON(w, r, http.StatusUnauthorized, failureBody{
			Error:   "Unauthorized",
			Message: "A valid admin token is required",
		})
		return
	}

	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), defaultPageSize)
	limit = min(max(limit, 1), maxPageSize)
	page := max(queryInt(q.Get("page"), 1), 1)

	result, err := a.opts.Submitter.ListQuotes(r.Context(), submission.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		_ = submitError(quoteForm, err, environment.FromContext(r.Context())).Render(w, r)
		return
	}

	data := result.Quotes
	if data == nil {
		data = []submission.Quote{}
	}
	_ = handler.WriteJSON(w, r, http.StatusOK, quotesPage{
		Success: true,
		Data:    data,
		Meta:    pageMeta{Page: page, Limit: limit, Total: result.Total},
	})
}

func (a *api) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.opts.AdminTokenHash), []byte(token)) == nil
}

func queryInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
