package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"employee-records/internal/model"
	"employee-records/internal/service"
)

type UserHandler struct {
	service *service.UserService
	views   *Views
}

func NewUserHandler(service *service.UserService, views *Views) *UserHandler {
	return &UserHandler{service: service, views: views}
}

type userForm struct {
	Input  any
	Roles  []model.Role
	RoleID int64
	UserID int64
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, model.UserList{Users: users}, nil)
		return
	}

	p := h.views.newPage(r, "Users")
	p.Data = users
	h.views.render(w, http.StatusOK, "users", p)
}

func (h *UserHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "Create User", userForm{Input: model.CreateUserInput{}}, nil)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.CreateUserInput
	if sentJSON(r) {
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.views.fail(w, r, model.ErrInvalidInput)
			return
		}
		input = model.CreateUserInput{
			FirstName: r.PostFormValue("first_name"),
			LastName:  r.PostFormValue("last_name"),
			Username:  r.PostFormValue("username"),
			Password:  r.PostFormValue("password"),
			RoleID:    formInt64(r, "role_id"),
		}
	}

	created, err := h.service.CreateUser(r.Context(), input, actorFromRequest(r))
	if err != nil {
		input.Password = ""
		h.formError(w, r, "Create User", userForm{Input: input, RoleID: input.RoleID}, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusCreated, created, nil)
		return
	}
	seeOther(w, r, "/users")
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, r)
	if !ok {
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, user, nil)
		return
	}

	form := userForm{
		Input: model.UpdateUserInput{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.Username,
			RoleID:    user.RoleID,
		},
		RoleID: user.RoleID,
		UserID: user.ID,
	}
	h.renderForm(w, r, http.StatusOK, "Edit User", form, nil)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	var input model.UpdateUserInput
	if sentJSON(r) {
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.views.fail(w, r, model.ErrInvalidInput)
			return
		}
		input = model.UpdateUserInput{
			FirstName: r.PostFormValue("first_name"),
			LastName:  r.PostFormValue("last_name"),
			Username:  r.PostFormValue("username"),
			RoleID:    formInt64(r, "role_id"),
		}
	}

	updated, err := h.service.UpdateUser(r.Context(), id, input, actorFromRequest(r))
	if err != nil {
		h.formError(w, r, "Edit User", userForm{Input: input, RoleID: input.RoleID, UserID: id}, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, updated, nil)
		return
	}
	seeOther(w, r, "/users")
}

func (h *UserHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, r)
	if !ok {
		return
	}

	p := h.views.newPage(r, "Delete User")
	p.Data = user
	h.views.render(w, http.StatusOK, "user_delete", p)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	err = h.service.DeleteUser(r.Context(), id, actorFromRequest(r))
	if errors.Is(err, model.ErrSelfDelete) && !wantsJSON(r) {
		user, loadErr := h.service.GetUser(r.Context(), id)
		if loadErr != nil {
			h.views.fail(w, r, loadErr)
			return
		}
		p := h.views.newPage(r, "Delete User")
		p.Data = user
		p.Message = "You cannot delete the account you are signed in with."
		h.views.render(w, http.StatusConflict, "user_delete", p)
		return
	}
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
		return
	}
	seeOther(w, r, "/users")
}

func (h *UserHandler) load(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	id, err := pathID(r)
	if err != nil {
		h.views.fail(w, r, err)
		return model.User{}, false
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.views.fail(w, r, err)
		return model.User{}, false
	}
	return user, true
}

func (h *UserHandler) formError(w http.ResponseWriter, r *http.Request, title string, form userForm, err error) {
	fields, ok := validationFields(err)
	if !ok || wantsJSON(r) {
		h.views.fail(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusUnprocessableEntity, title, form, fields)
}

func (h *UserHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, title string, form userForm, fields map[string]string) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.views.fail(w, r, err)
		return
	}
	form.Roles = roles

	p := h.views.newPage(r, title)
	p.Form = form
	p.Errors = fields
	h.views.render(w, status, "user_form", p)
}

func formInt64(r *http.Request, key string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue(key)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
