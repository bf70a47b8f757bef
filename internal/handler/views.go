package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"employee-records/internal/auth"
	"employee-records/internal/middleware"
	"employee-records/internal/model"
)

const displayDateLayout = "01/02/2006"

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login",
	"unauthorized",
	"privacy",
	"error",
	"employees",
	"employee_details",
	"employee_form",
	"employee_delete",
	"users",
	"user_form",
	"user_delete",
	"audit",
}

// page is the data every template receives.
type page struct {
	Title    string
	Identity *auth.Identity
	IsAdmin  bool
	CanEdit  bool
	Message  string
	Errors   map[string]string
	Form     any
	Data     any
	Status   int
}

type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(displayDateLayout)
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("01/02/2006 15:04:05")
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Views{pages: pages}, nil
}

func (v *Views) newPage(r *http.Request, title string) page {
	p := page{Title: title}
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		p.Identity = identity
		p.IsAdmin = identity.Role == model.RoleAdmin
		p.CanEdit = slices.Contains(model.EmployeeEditorRoles, identity.Role)
	}
	return p
}

// render executes into a buffer first so a template failure never leaves a
// half written page behind.
func (v *Views) render(w http.ResponseWriter, status int, name string, data page) {
	tmpl, ok := v.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	data.Status = status

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
