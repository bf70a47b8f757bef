package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"employee-records/internal/auth"
	"employee-records/internal/middleware"
	"employee-records/internal/model"
	"employee-records/internal/service"
)

type credentialTable map[string]auth.Credential

func (c credentialTable) FindCredentialByUsername(_ context.Context, username string) (auth.Credential, error) {
	cred, ok := c[username]
	if !ok {
		return auth.Credential{}, auth.ErrCredentialNotFound
	}
	return cred, nil
}

type employeeTable struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Employee
}

func (t *employeeTable) List(context.Context) ([]model.Employee, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Employee, 0, len(t.rows))
	for _, e := range t.rows {
		out = append(out, e)
	}
	return out, nil
}

func (t *employeeTable) FindByID(_ context.Context, id int64) (model.Employee, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.rows[id]
	if !ok {
		return model.Employee{}, model.ErrEmployeeNotFound
	}
	return e, nil
}

func (t *employeeTable) ExistsByCode(_ context.Context, code string, excludeID int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, e := range t.rows {
		if id != excludeID && e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *employeeTable) Create(_ context.Context, e model.Employee) (model.Employee, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	e.ID = t.nextID
	t.rows[e.ID] = e
	return e, nil
}

func (t *employeeTable) Update(_ context.Context, e model.Employee) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[e.ID]; !ok {
		return model.ErrEmployeeNotFound
	}
	t.rows[e.ID] = e
	return nil
}

func (t *employeeTable) Delete(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return model.ErrEmployeeNotFound
	}
	delete(t.rows, id)
	return nil
}

type handlerFixture struct {
	codec     *auth.TokenCodec
	cookies   *auth.CookieTransport
	table     *employeeTable
	auth      *AuthHandler
	employees *EmployeeHandler
	router    chi.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	verifier, err := auth.NewCredentialVerifier(credentialTable{
		"alice": {Username: "alice", PasswordHash: string(hash), Role: model.RoleAdmin},
	}, bcrypt.MinCost)
	require.NoError(t, err)

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		SigningKey: "handler-test-signing-key-0123456",
		Issuer:     "employee-records",
		Audience:   "employee-records-web",
		TTL:        time.Hour,
	})
	require.NoError(t, err)

	views, err := NewViews()
	require.NoError(t, err)

	cookies := auth.NewCookieTransport(auth.DefaultCookieName, true)
	gate := middleware.NewAuthMiddleware(codec, cookies, "/unauthorized", nil)

	table := &employeeTable{rows: map[int64]model.Employee{}}
	f := &handlerFixture{
		codec:     codec,
		cookies:   cookies,
		table:     table,
		auth:      NewAuthHandler(service.NewAuthService(verifier, codec, nil, nil), cookies, views),
		employees: NewEmployeeHandler(service.NewEmployeeService(table, nil), views),
	}

	r := chi.NewRouter()
	r.Use(middleware.CrossOrigin(nil))
	r.Use(gate.LoadIdentity)
	r.Get("/login", f.auth.LoginForm)
	r.Post("/login", f.auth.Login)
	r.Post("/logout", f.auth.Logout)
	r.Get("/unauthorized", f.auth.Unauthorized)
	r.Group(func(read chi.Router) {
		read.Use(gate.RequireAuth)
		read.Get("/employees", f.employees.Index)
		read.Get("/employees/{id}", f.employees.Details)
	})
	r.Group(func(write chi.Router) {
		write.Use(gate.RequireRole(model.EmployeeEditorRoles...))
		write.Post("/employees/new", f.employees.Create)
		write.Post("/employees/{id}/edit", f.employees.Update)
		write.Post("/employees/{id}/delete", f.employees.Delete)
	})
	f.router = r

	return f
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) authed(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	return f.authedAs(t, req, model.RoleAdmin)
}

func (f *handlerFixture) authedAs(t *testing.T, req *http.Request, role string) *http.Request {
	t.Helper()

	token, err := f.codec.Issue("alice", role)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: token})
	return req
}

func formRequest(method string, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.DefaultCookieName {
			return c
		}
	}
	return nil
}

func TestViewsParseEveryPage(t *testing.T) {
	views, err := NewViews()
	require.NoError(t, err)
	assert.Len(t, views.pages, len(pageNames))
}

func TestLoginSetsSessionCookie(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(formRequest(http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"correct horse"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/employees", rec.Header().Get("Location"))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.Expires.IsZero())

	identity, err := f.codec.Verify(cookie.Value, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Subject)
}

func TestBadLoginIsGeneric(t *testing.T) {
	f := newHandlerFixture(t)

	wrongPassword := f.do(formRequest(http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"battery staple"},
	}))
	unknownUser := f.do(formRequest(http.MethodPost, "/login", url.Values{
		"username": {"mallory"},
		"password": {"battery staple"},
	}))

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid login attempt.")
		assert.Nil(t, sessionCookie(rec))
	}
	assert.NotContains(t, wrongPassword.Body.String(), "battery staple")
}

func TestBadLoginJSON(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Invalid login attempt."}}`, rec.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(f.authed(t, httptest.NewRequest(http.MethodPost, "/logout", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestLoginFormRedirectsSignedInUsers(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(f.authed(t, httptest.NewRequest(http.MethodGet, "/login", nil)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestUnauthorizedPage(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/unauthorized", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestEmployeeFormFlow(t *testing.T) {
	f := newHandlerFixture(t)

	invalid := f.do(f.authed(t, formRequest(http.MethodPost, "/employees/new", url.Values{
		"first_name": {"Grace"},
		"salary":     {"-5"},
	})))
	assert.Equal(t, http.StatusUnprocessableEntity, invalid.Code)
	assert.Contains(t, invalid.Body.String(), "Employee code is required.")
	assert.Contains(t, invalid.Body.String(), `value="Grace"`)

	created := f.do(f.authed(t, formRequest(http.MethodPost, "/employees/new", url.Values{
		"first_name":      {"Grace"},
		"last_name":       {"Hopper"},
		"employee_code":   {"EMP-1"},
		"date_of_joining": {"2020-01-15"},
		"date_of_birth":   {"1990-12-09"},
		"salary":          {"85000"},
	})))
	require.Equal(t, http.StatusSeeOther, created.Code)
	assert.Equal(t, "/employees", created.Header().Get("Location"))

	list := f.do(f.authed(t, httptest.NewRequest(http.MethodGet, "/employees", nil)))
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "EMP-1")
	assert.Contains(t, list.Body.String(), "01/15/2020")

	details := f.do(f.authed(t, httptest.NewRequest(http.MethodGet, "/employees/1", nil)))
	assert.Equal(t, http.StatusOK, details.Code)
	assert.Contains(t, details.Body.String(), "12/09/1990")

	deleted := f.do(f.authed(t, httptest.NewRequest(http.MethodPost, "/employees/1/delete", nil)))
	assert.Equal(t, http.StatusSeeOther, deleted.Code)

	missing := f.do(f.authed(t, httptest.NewRequest(http.MethodGet, "/employees/1", nil)))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestEmployeeJSON(t *testing.T) {
	f := newHandlerFixture(t)

	req := f.authed(t, httptest.NewRequest(http.MethodPost, "/employees/new", strings.NewReader(
		`{"first_name":"Ada","employee_code":"E-7","date_of_joining":"2021-03-01","date_of_birth":"1985-05-05","salary":1200}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"employee_code":"E-7"`)

	bad := f.authed(t, httptest.NewRequest(http.MethodPost, "/employees/abc/edit", strings.NewReader(`{}`)))
	bad.Header.Set("Content-Type", "application/json")
	bad.Header.Set("Accept", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(bad).Code)
}

func TestProtectedPageWithoutCookie(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/employees", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func validEmployeeForm(code string) url.Values {
	return url.Values{
		"first_name":      {"Grace"},
		"employee_code":   {code},
		"date_of_joining": {"2020-01-15"},
		"date_of_birth":   {"1990-12-09"},
		"salary":          {"85000"},
	}
}

func TestCrossSiteEmployeePostIsRejected(t *testing.T) {
	f := newHandlerFixture(t)

	forged := f.authed(t, formRequest(http.MethodPost, "https://records.example/employees/new", validEmployeeForm("EMP-X")))
	forged.Header.Set("Origin", "https://evil.example")
	forged.Header.Set("Sec-Fetch-Site", "cross-site")

	rec := f.do(forged)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.table.rows)

	sameOrigin := f.authed(t, formRequest(http.MethodPost, "https://records.example/employees/new", validEmployeeForm("EMP-X")))
	sameOrigin.Header.Set("Origin", "https://records.example")
	sameOrigin.Header.Set("Sec-Fetch-Site", "same-origin")

	rec = f.do(sameOrigin)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, f.table.rows, 1)
}

func TestViewerCanReadButNotChangeEmployees(t *testing.T) {
	f := newHandlerFixture(t)

	created := f.do(f.authedAs(t, formRequest(http.MethodPost, "/employees/new", validEmployeeForm("EMP-1")), model.RoleEditor))
	require.Equal(t, http.StatusSeeOther, created.Code)

	list := f.do(f.authedAs(t, httptest.NewRequest(http.MethodGet, "/employees", nil), model.RoleViewer))
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "EMP-1")
	assert.NotContains(t, list.Body.String(), "/employees/new")
	assert.NotContains(t, list.Body.String(), "/employees/1/delete")

	for _, target := range []string{"/employees/new", "/employees/1/edit", "/employees/1/delete"} {
		rec := f.do(f.authedAs(t, formRequest(http.MethodPost, target, validEmployeeForm("EMP-2")), model.RoleViewer))
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/unauthorized", rec.Header().Get("Location"), target)
	}

	stored, err := f.table.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "EMP-1", stored.EmployeeCode)
	assert.Len(t, f.table.rows, 1)
}
