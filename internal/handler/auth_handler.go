package handler

import (
	"errors"
	"net/http"
	"strings"

	"employee-records/internal/auth"
	"employee-records/internal/middleware"
	"employee-records/internal/model"
	"employee-records/internal/service"
)

const invalidLoginMessage = "Invalid login attempt."

type AuthHandler struct {
	service *service.AuthService
	cookies *auth.CookieTransport
	views   *Views
}

func NewAuthHandler(service *service.AuthService, cookies *auth.CookieTransport, views *Views) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies, views: views}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFromContext(r.Context()); ok {
		seeOther(w, r, "/employees")
		return
	}

	p := h.views.newPage(r, "Log in")
	p.Form = model.LoginRequest{}
	h.views.render(w, http.StatusOK, "login", p)
}

// Login answers a bad username and a bad password identically.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if sentJSON(r) {
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.views.fail(w, r, model.ErrInvalidInput)
			return
		}
		payload.Username = r.PostFormValue("username")
		payload.Password = r.PostFormValue("password")
	}

	result, err := h.service.Login(r.Context(), payload.Username, payload.Password, actorFromRequest(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) && !wantsJSON(r) {
			p := h.views.newPage(r, "Log in")
			p.Message = invalidLoginMessage
			p.Form = model.LoginRequest{Username: strings.TrimSpace(payload.Username)}
			h.views.render(w, http.StatusUnauthorized, "login", p)
			return
		}
		h.views.fail(w, r, err)
		return
	}

	h.cookies.Attach(w, result.Token)

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, result, nil)
		return
	}
	seeOther(w, r, "/employees")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), actorFromRequest(r))
	h.cookies.Clear(w)

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
		return
	}
	seeOther(w, r, "/login")
}

func (h *AuthHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeError(w, errUnauthorized)
		return
	}
	h.views.render(w, http.StatusUnauthorized, "unauthorized", h.views.newPage(r, "Unauthorized"))
}

func (h *AuthHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "privacy", h.views.newPage(r, "Privacy Policy"))
}
