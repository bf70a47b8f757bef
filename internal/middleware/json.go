package middleware

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"employee-records/internal/model"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/json")
}

// writeFailure answers in the envelope format for API clients and with a
// bare page for browsers.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = jsonEncode(w, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: code, Message: message},
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%d</title></head><body><h1>%s</h1></body></html>",
		status, html.EscapeString(message))
}
