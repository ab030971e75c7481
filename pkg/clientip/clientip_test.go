package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cernol/formintake/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "remote addr without port", remote: "10.0.0.2", want: "10.0.0.2"},
		{name: "cloudflare first", headers: map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, remote: "10.0.0.1:1", want: "1.1.1.1"},
		{name: "forwarded first valid", headers: map[string]string{"X-Forwarded-For": "garbage, 3.3.3.3, 4.4.4.4"}, remote: "10.0.0.1:1", want: "3.3.3.3"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "5.5.5.5"}, remote: "10.0.0.1:1", want: "5.5.5.5"},
		{name: "ipv6", remote: "[::1]:80", want: "::1"},
		{name: "invalid everything", headers: map[string]string{"X-Real-IP": "nope"}, remote: "nope", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.168.1.9", got)
}
