package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"employee-records/internal/auth"
	"employee-records/internal/metrics"
)

type tokenVerifier interface {
	Verify(token string, requiredRole string) (*auth.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

var errVerifierPanic = errors.New("token verification panicked")

// AuthMiddleware gates routes on the session cookie. Every denial is the
// same redirect so clients cannot tell why they were turned away.
type AuthMiddleware struct {
	verifier         tokenVerifier
	cookies          *auth.CookieTransport
	unauthorizedPath string
	metrics          *metrics.Metrics
}

func NewAuthMiddleware(verifier tokenVerifier, cookies *auth.CookieTransport, unauthorizedPath string, m *metrics.Metrics) *AuthMiddleware {
	if unauthorizedPath == "" {
		unauthorizedPath = "/unauthorized"
	}

	return &AuthMiddleware{
		verifier:         verifier,
		cookies:          cookies,
		unauthorizedPath: unauthorizedPath,
		metrics:          m,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.gate(nil, next)
}

// RequireRole admits tokens whose role claim is exactly one of roles.
func (m *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.gate(roles, next)
	}
}

// LoadIdentity attaches the identity of a valid cookie when there is one and
// never blocks the request.
func (m *AuthMiddleware) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.cookies.Extract(r)
		if ok {
			if identity, err := m.verify(token, ""); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityContextKey, identity))
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) gate(roles []string, next http.Handler) http.Handler {
	label := strings.Join(roles, "|")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.cookies.Extract(r)
		if !ok {
			m.metrics.ObserveGate(metrics.GateMissing, label)
			m.deny(w, r)
			return
		}

		identity, err := m.verifyRoles(token, roles)
		if err != nil {
			if errors.Is(err, errVerifierPanic) {
				m.metrics.ObserveGate(metrics.GateFault, label)
				slog.Warn("request gate fault", "path", r.URL.Path, "required_role", label, "error", err)
			} else {
				m.metrics.ObserveGate(metrics.GateRejected, label)
				slog.Debug("request gate denied", "path", r.URL.Path, "required_role", label, "error", err)
			}
			m.deny(w, r)
			return
		}

		m.metrics.ObserveGate(metrics.GateAllowed, label)
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verifyRoles lets the codec check a single role itself; a set of roles is
// checked against the verified claim.
func (m *AuthMiddleware) verifyRoles(token string, roles []string) (*auth.Identity, error) {
	if len(roles) <= 1 {
		required := ""
		if len(roles) == 1 {
			required = roles[0]
		}
		return m.verify(token, required)
	}

	identity, err := m.verify(token, "")
	if err != nil {
		return nil, err
	}
	if !slices.Contains(roles, identity.Role) {
		return nil, fmt.Errorf("%w: role %q not in %v", auth.ErrInvalidToken, identity.Role, roles)
	}
	return identity, nil
}

func (m *AuthMiddleware) verify(token string, role string) (identity *auth.Identity, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			identity = nil
			err = fmt.Errorf("%w: %v", errVerifierPanic, recovered)
		}
	}()

	identity, err = m.verifier.Verify(token, role)
	if err == nil && identity == nil {
		err = auth.ErrInvalidToken
	}
	return identity, err
}

func (m *AuthMiddleware) deny(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, m.unauthorizedPath, http.StatusFound)
}

func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*auth.Identity)
	return identity, ok && identity != nil
}

// WithIdentity is used by tests and handlers that need to simulate a
// verified request.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
