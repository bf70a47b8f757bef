//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"employee-records/internal/app"
	"employee-records/internal/config"
	"employee-records/internal/database"
	"employee-records/internal/model"
	"employee-records/internal/repository"
	"employee-records/internal/service"
)

type testEnv struct {
	server *httptest.Server
	users  *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(context.Background(), databaseURL, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	cfg := &config.Config{
		ServerPort:        "0",
		RequestTimeout:    10 * time.Second,
		DatabaseURL:       databaseURL,
		JWTSecret:         "integration-test-signing-key-0123456789",
		JWTIssuer:         "employee-records",
		JWTAudience:       "employee-records-web",
		JWTExpiry:         time.Hour,
		CookieName:        "jwt",
		CookieSecure:      true,
		BcryptCost:        bcrypt.MinCost,
		RateLimitRPM:      0,
		LoginRateLimitRPM: 1000,
		LogFormat:         "pretty",
		MetricsEnabled:    true,
	}
	require.NoError(t, cfg.Validate())

	handler, err := app.NewHandler(cfg, db)
	require.NoError(t, err)

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	users := service.NewUserService(
		repository.NewUserRepository(db.Pool),
		repository.NewRoleRepository(db.Pool),
		service.NewAuditService(repository.NewAuditRepository(db.Pool)),
		cfg.BcryptCost,
	)

	return &testEnv{server: server, users: users}
}

// createUser registers an account with a unique username and returns it.
func (e *testEnv) createUser(t *testing.T, role string, password string) model.User {
	t.Helper()

	user, err := e.users.CreateUserWithRoleName(context.Background(), model.CreateUserInput{
		FirstName: "Test",
		Username:  "it-" + uuid.NewString()[:8],
		Password:  password,
	}, role)
	require.NoError(t, err)
	return user
}

// browser returns a client that keeps cookies and does not follow redirects.
func (e *testEnv) browser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := e.server.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

func (e *testEnv) login(t *testing.T, client *http.Client, username string, password string) *http.Response {
	t.Helper()

	resp, err := client.PostForm(e.server.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, target string) *http.Response {
	t.Helper()

	resp, err := client.Get(target)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func postForm(t *testing.T, client *http.Client, target string, values url.Values) *http.Response {
	t.Helper()

	resp, err := client.PostForm(target, values)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
