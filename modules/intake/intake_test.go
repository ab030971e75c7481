package intake_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cernol/formintake/modules/intake"
	"github.com/cernol/formintake/pkg/environment"
	"github.com/cernol/formintake/pkg/queue"
	"github.com/cernol/formintake/pkg/ratelimit"
	"github.com/cernol/formintake/svc/notification"
	"github.com/cernol/formintake/svc/submission"
)

type recordingScheduler struct {
	mu       sync.Mutex
	contacts []submission.Contact
}

func (s *recordingScheduler) ScheduleContact(_ context.Context, c submission.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, c)
	return nil
}

type quoteNotifierFunc func(ctx context.Context, q submission.Quote) error

func (f quoteNotifierFunc) NotifyQuote(ctx context.Context, q submission.Quote) error { return f(ctx, q) }

type fakeMailer struct {
	res notification.Result
}

func (m fakeMailer) SendTest(context.Context) notification.Result { return m.res }

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) SubmitContact(ctx context.Context, raw map[string]any) (submission.Receipt, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(submission.Receipt), args.Error(1)
}

func (m *mockSubmitter) SubmitQuote(ctx context.Context, raw map[string]any) (submission.Receipt, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(submission.Receipt), args.Error(1)
}

func (m *mockSubmitter) ListQuotes(ctx context.Context, opts submission.ListOptions) (submission.QuotePage, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(submission.QuotePage), args.Error(1)
}

// countingStore counts write attempts that reach storage.
type countingStore struct {
	*submission.MemoryStore
	writes atomic.Int32
}

func (s *countingStore) CreateContact(ctx context.Context, c *submission.Contact) error {
	s.writes.Add(1)
	return s.MemoryStore.CreateContact(ctx, c)
}

func (s *countingStore) CreateQuote(ctx context.Context, q *submission.Quote) error {
	s.writes.Add(1)
	return s.MemoryStore.CreateQuote(ctx, q)
}

type fixture struct {
	store     *countingStore
	scheduler *recordingScheduler
	handler   http.Handler
}

func newFixture(t *testing.T, mutate ...func(*intake.Options)) *fixture {
	t.Helper()

	store := &countingStore{MemoryStore: submission.NewMemoryStore()}
	scheduler := &recordingScheduler{}
	svc := submission.NewService(store, store,
		quoteNotifierFunc(func(context.Context, submission.Quote) error { return errors.New("smtp down") }),
		scheduler)

	opts := intake.Options{
		Submitter:   svc,
		Store:       store,
		Mailer:      fakeMailer{res: notification.Result{MessageID: "msg-1"}},
		Environment: environment.Development,
		Version:     "1.2.3",
		Email: intake.EmailInfo{
			Provider:         "postmark",
			FromConfigured:   true,
			AdminConfigured:  true,
			APIKeyConfigured: true,
		},
	}
	for _, m := range mutate {
		m(&opts)
	}

	return &fixture{store: store, scheduler: scheduler, handler: intake.Router(opts)}
}

func (f *fixture) do(t *testing.T, method, target, contentType, body string, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

const validContact = `{"firstName":"Tendai","lastName":"Moyo","email":"tendai@example.com","message":"Need <b>sulphuric</b> acid","subject":"support"}`

const validQuote = `{"firstName":"Rudo","lastName":"Chari","email":"rudo@example.com","phone":"+263 77 212 3456","company":"Acme","industry":"mining","services":["consulting"],"requirements":"Reagents","newsletter":true}`

func TestContact_Accepted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/contact", "application/json", validContact)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Thank you for contacting us! We have received your message and will get back to you soon.", body["message"])
	assert.Regexp(t, `^\d+ms$`, body["responseTime"])

	id, _ := body["contactId"].(string)
	stored, err := f.store.GetContact(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, submission.EmailPending, stored.EmailStatus)
	assert.Equal(t, "technical-support", stored.Service)
	assert.Equal(t, "Need sulphuric acid", stored.Message)

	require.Len(t, f.scheduler.contacts, 1)
	assert.Equal(t, id, f.scheduler.contacts[0].ID)
}

func TestContact_ClientErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		rec, body := f.do(t, http.MethodPost, "/api/contact", "application/json", `{"firstName":"T","email":"t@example.com"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Missing required fields", body["error"])
		assert.Equal(t, []any{"firstName", "lastName", "email", "message"}, body["required"])
		assert.Equal(t, []any{"lastName", "message"}, body["missing"])
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()

		rec, body := f.do(t, http.MethodPost, "/api/contact", "application/json",
			`{"firstName":"T","lastName":"M","email":"not-an-email","message":"hi"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid email format", body["error"])
		assert.Equal(t, "email", body["field"])
		assert.Equal(t, "Please enter a valid email address", body["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		rec, body := f.do(t, http.MethodPost, "/api/contact", "application/json", `{"firstName":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", body["error"])
	})
}

func TestInvalidEmailIsNotStored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "contact",
			path: "/api/contact",
			body: `{"firstName":"T","lastName":"M","email":"tendai@example","message":"hi"}`,
		},
		{
			name: "quote",
			path: "/api/quote",
			body: `{"firstName":"R","lastName":"C","email":"rudo@example","phone":"0772123456","company":"A","industry":"mining","services":["consulting"],"requirements":"x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rec, body := f.do(t, http.MethodPost, tt.path, "application/json", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid email format", body["error"])
			assert.Equal(t, "email", body["field"])
			assert.Zero(t, f.store.writes.Load())
			assert.Empty(t, f.scheduler.contacts)
		})
	}
}

func TestQuote_Created(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/quote", "application/json", validQuote)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Quote request submitted successfully! We'll get back to you within 24 hours.", body["message"])

	q, err := f.store.GetQuote(context.Background(), body["quoteId"].(string))
	require.NoError(t, err)
	assert.Equal(t, "+263772123456", q.Phone)
	assert.Equal(t, "discuss", q.Budget)
	assert.True(t, q.Newsletter)
}

func TestQuote_Form(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	form := url.Values{
		"firstName":    {"Rudo"},
		"lastName":     {"Chari"},
		"email":        {"rudo@example.com"},
		"phone":        {"0772123456"},
		"company":      {"Acme"},
		"industry":     {"textiles"},
		"services[]":   {"consulting", "lab-supplies"},
		"requirements": {"Dyes"},
	}
	rec, body := f.do(t, http.MethodPost, "/api/quote", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	q, err := f.store.GetQuote(context.Background(), body["quoteId"].(string))
	require.NoError(t, err)
	assert.Equal(t, []string{"consulting", "lab-supplies"}, q.Services)
	assert.False(t, q.Newsletter)
}

func TestQuote_ClientErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name      string
		body      string
		wantError string
		wantField any
	}{
		{
			name:      "missing company",
			body:      `{"firstName":"R","lastName":"C","email":"r@example.com","requirements":"x","services":["consulting"]}`,
			wantError: "Please fill in all required fields",
			wantField: "company",
		},
		{
			name:      "no services",
			body:      `{"firstName":"R","lastName":"C","email":"r@example.com","company":"A","requirements":"x","services":[]}`,
			wantError: "At least one service must be selected",
			wantField: nil,
		},
		{
			name:      "schema violation",
			body:      `{"firstName":"R","lastName":"C","email":"r@example.com","company":"A","requirements":"x","services":["consulting"],"industry":"unknown"}`,
			wantError: "Validation error",
			wantField: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, body := f.do(t, http.MethodPost, "/api/quote", "application/json", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantField, body["field"])
		})
	}
}

func TestSubmit_ServerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		env         environment.Environment
		err         error
		wantStatus  int
		wantError   string
		wantDetails bool
	}{
		{
			name:       "storage unavailable",
			env:        environment.Development,
			err:        submission.Unavailable(context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Database temporarily unavailable",
		},
		{
			name:        "unexpected in development",
			env:         environment.Development,
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Server error occurred while processing your request",
			wantDetails: true,
		},
		{
			name:       "unexpected in production",
			env:        environment.Production,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error occurred while processing your request",
		},
	}

	forms := []struct {
		path   string
		method string
		body   string
	}{
		{path: "/api/contact", method: "SubmitContact", body: validContact},
		{path: "/api/quote", method: "SubmitQuote", body: validQuote},
	}

	for _, tt := range tests {
		for _, form := range forms {
			t.Run(tt.name+" "+form.path, func(t *testing.T) {
				t.Parallel()

				sub := &mockSubmitter{}
				sub.On(form.method, mock.Anything, mock.Anything).Return(submission.Receipt{}, tt.err)
				f := newFixture(t, func(o *intake.Options) {
					o.Submitter = sub
					o.Environment = tt.env
				})

				rec, body := f.do(t, http.MethodPost, form.path, "application/json", form.body)
				require.Equal(t, tt.wantStatus, rec.Code)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.wantError, body["error"])
				_, hasDetails := body["details"]
				assert.Equal(t, tt.wantDetails, hasDetails)
				sub.AssertExpectations(t)
			})
		}
	}
}

func TestPanicRecovered(t *testing.T) {
	t.Parallel()

	sub := &mockSubmitter{}
	sub.On("SubmitQuote", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("kaboom") })
	f := newFixture(t, func(o *intake.Options) { o.Submitter = sub })

	rec, body := f.do(t, http.MethodPost, "/api/quote", "application/json", validQuote)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "Something went wrong on our end. Please try again later.", body["message"])
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/api/nope?x=1", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", body["error"])
	assert.Equal(t, "The requested endpoint GET /api/nope?x=1 does not exist", body["message"])
	assert.Equal(t, []any{"POST /api/contact", "POST /api/quote", "GET /api/health", "GET /api/test-email"}, body["availableEndpoints"])

	rec, body = f.do(t, http.MethodGet, "/api/contact", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Endpoint not found", body["error"])

	prod := newFixture(t, func(o *intake.Options) {
		o.Environment = environment.Production
		o.AdminTokenHash = "$2a$04$abcdefghijklmnopqrstuu"
	})
	_, body = prod.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, []any{"POST /api/contact", "POST /api/quote", "GET /api/health", "GET /api/quotes"}, body["availableEndpoints"])
}

func TestHeadersAndCORS(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodOptions, "/api/contact", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Origin, X-Requested-With, Content-Type, Accept, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))

	rec, _ = f.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy with queue", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(o *intake.Options) {
			o.Queue = func(context.Context) (queue.Stats, error) {
				return queue.Stats{Waiting: 2, Active: 1, Completed: 5, Failed: 1}, nil
			}
		})
		rec, body := f.do(t, http.MethodGet, "/api/health", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])

		services := body["services"].(map[string]any)
		assert.Equal(t, "connected", services["database"])
		assert.Equal(t, "ready", services["email"])
		assert.Equal(t, "development", services["environment"])
		assert.Equal(t, "1.2.3", services["version"])
		assert.Equal(t, map[string]any{"waiting": float64(2), "active": float64(1), "completed": float64(5), "failed": float64(1)}, services["queue"])

		email := body["config"].(map[string]any)["email"].(map[string]any)
		assert.Equal(t, "postmark", email["provider"])
		assert.Equal(t, "configured", email["apiKeyConfigured"])
		assert.Equal(t, true, email["fromConfigured"])

		_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
		assert.NoError(t, err)
	})

	t.Run("degraded", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(o *intake.Options) {
			o.Store = pingerFunc(func(context.Context) error { return errors.New("down") })
			o.Email = intake.EmailInfo{Provider: "postmark"}
		})
		rec, body := f.do(t, http.MethodGet, "/api/health", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		services := body["services"].(map[string]any)
		assert.Equal(t, "disconnected", services["database"])
		assert.Equal(t, "misconfigured", services["email"])
		assert.NotContains(t, services, "queue")
		assert.Equal(t, "missing", body["config"].(map[string]any)["email"].(map[string]any)["apiKeyConfigured"])
	})
}

func TestTestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		env        environment.Environment
		res        notification.Result
		wantStatus int
		wantKey    string
		wantValue  any
	}{
		{name: "sent", env: environment.Development, res: notification.Result{MessageID: "abc"}, wantStatus: http.StatusOK, wantKey: "messageId", wantValue: "abc"},
		{name: "failed", env: environment.Development, res: notification.Result{Err: errors.New("rejected")}, wantStatus: http.StatusInternalServerError, wantKey: "details", wantValue: "rejected"},
		{name: "production", env: environment.Production, wantStatus: http.StatusNotFound, wantKey: "error", wantValue: "Test endpoint not available in production"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, func(o *intake.Options) {
				o.Environment = tt.env
				o.Mailer = fakeMailer{res: tt.res}
			})
			rec, body := f.do(t, http.MethodGet, "/api/test-email", "", "")
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestListQuotes(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	f := newFixture(t, func(o *intake.Options) { o.AdminTokenHash = string(hash) })
	for range 3 {
		rec, _ := f.do(t, http.MethodPost, "/api/quote", "application/json", validQuote)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, _ := f.do(t, http.MethodGet, "/api/quotes", "", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/quotes", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/quotes?limit=2&page=2", "", "", "Authorization", "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 1)
	assert.Equal(t, map[string]any{"page": float64(2), "limit": float64(2), "total": float64(3)}, body["meta"])

	disabled := newFixture(t)
	rec, _ = disabled.do(t, http.MethodGet, "/api/quotes", "", "", "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewTokenBucket(ratelimit.Config{Requests: 1, Interval: time.Hour})
	require.NoError(t, err)
	f := newFixture(t, func(o *intake.Options) { o.Limiter = limiter })

	rec, _ := f.do(t, http.MethodPost, "/api/contact", "application/json", validContact)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec, body := f.do(t, http.MethodPost, "/api/contact", "application/json", validContact)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Too many requests", body["error"])
	assert.Equal(t, "Please try again later", body["message"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, _ = f.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
