package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"employee-records/internal/model"
	"employee-records/internal/service"
)

type EmployeeHandler struct {
	service *service.EmployeeService
	views   *Views
}

func NewEmployeeHandler(service *service.EmployeeService, views *Views) *EmployeeHandler {
	return &EmployeeHandler{service: service, views: views}
}

// employeePayload accepts salary as a JSON number or a numeric string.
type employeePayload struct {
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	EmployeeCode  string      `json:"employee_code"`
	DateOfJoining string      `json:"date_of_joining"`
	DateOfBirth   string      `json:"date_of_birth"`
	Salary        json.Number `json:"salary"`
}

func (h *EmployeeHandler) Index(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.List(r.Context())
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, model.EmployeeList{Employees: employees}, nil)
		return
	}

	p := h.views.newPage(r, "Employees")
	p.Data = employees
	h.views.render(w, http.StatusOK, "employees", p)
}

func (h *EmployeeHandler) Details(w http.ResponseWriter, r *http.Request) {
	employee, ok := h.load(w, r)
	if !ok {
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, employee, nil)
		return
	}

	p := h.views.newPage(r, "Employee Details")
	p.Data = employee
	h.views.render(w, http.StatusOK, "employee_details", p)
}

func (h *EmployeeHandler) New(w http.ResponseWriter, r *http.Request) {
	p := h.views.newPage(r, "Create Employee")
	p.Form = model.EmployeeInput{}
	h.views.render(w, http.StatusOK, "employee_form", p)
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := employeeInputFromRequest(r)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), input, actorFromRequest(r))
	if err != nil {
		h.formError(w, r, "Create Employee", 0, input, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusCreated, created, nil)
		return
	}
	seeOther(w, r, "/employees")
}

func (h *EmployeeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	employee, ok := h.load(w, r)
	if !ok {
		return
	}

	p := h.views.newPage(r, "Edit Employee")
	p.Form = employeeToInput(employee)
	p.Data = employee.ID
	h.views.render(w, http.StatusOK, "employee_form", p)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	input, err := employeeInputFromRequest(r)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, input, actorFromRequest(r))
	if err != nil {
		h.formError(w, r, "Edit Employee", id, input, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, updated, nil)
		return
	}
	seeOther(w, r, "/employees")
}

func (h *EmployeeHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	employee, ok := h.load(w, r)
	if !ok {
		return
	}

	p := h.views.newPage(r, "Delete Employee")
	p.Data = employee
	h.views.render(w, http.StatusOK, "employee_delete", p)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.views.fail(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, actorFromRequest(r)); err != nil {
		h.views.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
		return
	}
	seeOther(w, r, "/employees")
}

func (h *EmployeeHandler) load(w http.ResponseWriter, r *http.Request) (model.Employee, bool) {
	id, err := pathID(r)
	if err != nil {
		h.views.fail(w, r, err)
		return model.Employee{}, false
	}

	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.views.fail(w, r, err)
		return model.Employee{}, false
	}
	return employee, true
}

// formError re-renders the form for validation failures and falls back to
// the generic failure answer otherwise.
func (h *EmployeeHandler) formError(w http.ResponseWriter, r *http.Request, title string, id int64, input model.EmployeeInput, err error) {
	fields, ok := validationFields(err)
	if !ok || wantsJSON(r) {
		h.views.fail(w, r, err)
		return
	}

	p := h.views.newPage(r, title)
	p.Form = input
	p.Errors = fields
	if id > 0 {
		p.Data = id
	}
	h.views.render(w, http.StatusUnprocessableEntity, "employee_form", p)
}

func employeeInputFromRequest(r *http.Request) (model.EmployeeInput, error) {
	if sentJSON(r) {
		var payload employeePayload
		if err := decodeJSON(r, &payload); err != nil {
			return model.EmployeeInput{}, err
		}
		return model.EmployeeInput{
			FirstName:     payload.FirstName,
			LastName:      payload.LastName,
			EmployeeCode:  payload.EmployeeCode,
			DateOfJoining: payload.DateOfJoining,
			DateOfBirth:   payload.DateOfBirth,
			Salary:        payload.Salary.String(),
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return model.EmployeeInput{}, model.ErrInvalidInput
	}
	return model.EmployeeInput{
		FirstName:     r.PostFormValue("first_name"),
		LastName:      r.PostFormValue("last_name"),
		EmployeeCode:  r.PostFormValue("employee_code"),
		DateOfJoining: r.PostFormValue("date_of_joining"),
		DateOfBirth:   r.PostFormValue("date_of_birth"),
		Salary:        r.PostFormValue("salary"),
	}, nil
}

func employeeToInput(e model.Employee) model.EmployeeInput {
	input := model.EmployeeInput{
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		EmployeeCode: e.EmployeeCode,
		Salary:       strconv.FormatInt(e.Salary, 10),
	}
	if !e.DateOfJoining.IsZero() {
		input.DateOfJoining = e.DateOfJoining.Format("2006-01-02")
	}
	if !e.DateOfBirth.IsZero() {
		input.DateOfBirth = e.DateOfBirth.Format("2006-01-02")
	}
	return input
}
