package auth

import (
	"net/http"
	"strings"
)

const DefaultCookieName = "jwt"

// CookieTransport carries exactly one token per browser session. The cookie
// has no expiry of its own, so an expired token can still arrive here and
// must be rejected by Verify.
type CookieTransport struct {
	name   string
	secure bool
}

func NewCookieTransport(name string, secure bool) *CookieTransport {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCookieName
	}

	return &CookieTransport{name: name, secure: secure}
}

func (t *CookieTransport) Name() string {
	return t.name
}

func (t *CookieTransport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, t.cookie(token, 0))
}

func (t *CookieTransport) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(t.name)
	if err != nil {
		return "", false
	}

	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}

	return value, true
}

// Clear asks the browser to drop the cookie. The token itself stays valid
// until it expires.
func (t *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, t.cookie("", -1))
}

func (t *CookieTransport) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     t.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
