package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"employee-records/internal/config"
	"employee-records/internal/handler"
	"employee-records/internal/metrics"
	"employee-records/internal/middleware"
	"employee-records/internal/model"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Employees *handler.EmployeeHandler
	Users     *handler.UserHandler
	Audit     *handler.AuditHandler
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
	m *metrics.Metrics,
	health HealthChecker,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.LoginRateLimitRPM, "/login")

	r.Use(middleware.Recovery)
	r.Use(middleware.NewClientIPMiddleware(cfg.TrustedProxies).Handler)
	r.Use(middleware.Logging(m))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CrossOrigin(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := health.Health(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Group(func(web chi.Router) {
		web.Use(middleware.Timeout(cfg.RequestTimeout))
		web.Use(authMiddleware.LoadIdentity)

		web.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/employees", http.StatusFound)
		})
		web.Get("/login", h.Auth.LoginForm)
		web.Post("/login", h.Auth.Login)
		web.Post("/logout", h.Auth.Logout)
		web.Get("/unauthorized", h.Auth.Unauthorized)
		web.Get("/privacy", h.Auth.Privacy)

		web.Route("/employees", func(employees chi.Router) {
			employees.Group(func(read chi.Router) {
				read.Use(authMiddleware.RequireAuth)

				read.Get("/", h.Employees.Index)
				read.Get("/{id}", h.Employees.Details)
			})

			employees.Group(func(write chi.Router) {
				write.Use(authMiddleware.RequireRole(model.EmployeeEditorRoles...))

				write.Get("/new", h.Employees.New)
				write.Post("/new", h.Employees.Create)
				write.Get("/{id}/edit", h.Employees.Edit)
				write.Post("/{id}/edit", h.Employees.Update)
				write.Get("/{id}/delete", h.Employees.ConfirmDelete)
				write.Post("/{id}/delete", h.Employees.Delete)
			})
		})

		web.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireRole(model.RoleAdmin))

			users.Get("/", h.Users.List)
			users.Get("/new", h.Users.New)
			users.Post("/new", h.Users.Create)
			users.Get("/{id}/edit", h.Users.Edit)
			users.Post("/{id}/edit", h.Users.Update)
			users.Get("/{id}/delete", h.Users.ConfirmDelete)
			users.Post("/{id}/delete", h.Users.Delete)
		})

		web.With(authMiddleware.RequireRole(model.RoleAdmin)).Get("/audit", h.Audit.List)
	})

	return r
}
