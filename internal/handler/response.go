package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"employee-records/internal/auth"
	"employee-records/internal/model"
	"employee-records/pkg/apierror"
)

func wantsJSON(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/json")
}

func sentJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classifyError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func classifyError(err error) (int, *model.APIError) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
		body.Fields = apiErr.Fields
	} else if errors.Is(err, auth.ErrInvalidLogin) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = invalidLoginMessage
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "User already exists"
	} else if errors.Is(err, model.ErrSelfDelete) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "You cannot delete the account you are signed in with"
	} else if errors.Is(err, model.ErrEmployeeNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Employee not found"
	} else if errors.Is(err, model.ErrEmployeeCodeConflict) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Employee code already exists"
	} else if errors.Is(err, model.ErrRoleNotFound) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Role not found"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	return status, body
}

// fail answers a failed request with the JSON envelope or the error page.
func (v *Views) fail(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		writeError(w, err)
		return
	}

	status, body := classifyError(err)
	p := v.newPage(r, http.StatusText(status))
	p.Message = body.Message
	v.render(w, status, "error", p)
}

// validationFields reports the per-field messages carried by a validation
// failure, if err is one.
func validationFields(err error) (map[string]string, bool) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		return apiErr.Fields, true
	}
	return nil, false
}

func pathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New("BAD_REQUEST", "invalid id", raw, http.StatusBadRequest)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

var errUnauthorized = apierror.New("UNAUTHORIZED", "Authentication required", "", http.StatusUnauthorized)
