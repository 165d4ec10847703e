package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleNegotiation(t *testing.T) {
	var got string
	handler := Locale("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"no headers", nil, "en"},
		{"accept-language", map[string]string{"Accept-Language": "es-MX,es;q=0.9"}, "es"},
		{"explicit x-locale wins", map[string]string{"X-Locale": "id", "Accept-Language": "de"}, "id"},
		{"unsupported falls back to default", map[string]string{"Accept-Language": "zz"}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}
