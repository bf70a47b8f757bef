package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossOrigin(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		origin  string
		fetch   string
		trusted []string
		want    int
		reaches bool
	}{
		{name: "cross-site form post", method: http.MethodPost, origin: "https://evil.example", fetch: "cross-site", want: http.StatusForbidden},
		{name: "same-site sibling post", method: http.MethodPost, origin: "https://other.records.example", fetch: "same-site", want: http.StatusForbidden},
		{name: "foreign origin without fetch metadata", method: http.MethodPost, origin: "https://evil.example", want: http.StatusForbidden},
		{name: "same-origin post", method: http.MethodPost, origin: "https://records.example", fetch: "same-origin", want: http.StatusOK, reaches: true},
		{name: "matching origin header only", method: http.MethodPost, origin: "https://records.example", want: http.StatusOK, reaches: true},
		{name: "non-browser client", method: http.MethodPost, want: http.StatusOK, reaches: true},
		{name: "cross-site navigation is safe", method: http.MethodGet, origin: "https://evil.example", fetch: "cross-site", want: http.StatusOK, reaches: true},
		{name: "trusted cors origin", method: http.MethodPost, origin: "https://admin.example", fetch: "cross-site", trusted: []string{"https://admin.example", "*"}, want: http.StatusOK, reaches: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			handler := CrossOrigin(tc.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tc.method, "https://records.example/employees/new", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.fetch != "" {
				req.Header.Set("Sec-Fetch-Site", tc.fetch)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.reaches, reached)
		})
	}
}

func TestCrossOriginJSONRejection(t *testing.T) {
	handler := CrossOrigin(nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "https://records.example/login", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FORBIDDEN"`)
}
