package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"employee-records/internal/model"
	"employee-records/pkg/apierror"
)

const dateLayout = "2006-01-02"

type employeeStore interface {
	List(ctx context.Context) ([]model.Employee, error)
	FindByID(ctx context.Context, id int64) (model.Employee, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, e model.Employee) (model.Employee, error)
	Update(ctx context.Context, e model.Employee) error
	Delete(ctx context.Context, id int64) error
}

type EmployeeService struct {
	store employeeStore
	audit *AuditService
	now   func() time.Time
}

func NewEmployeeService(store employeeStore, audit *AuditService) *EmployeeService {
	return &EmployeeService{store: store, audit: audit, now: time.Now}
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.store.List(ctx)
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (model.Employee, error) {
	return s.store.FindByID(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, input model.EmployeeInput, actor model.AuditActor) (model.Employee, error) {
	employee, err := s.validate(ctx, input, 0)
	if err != nil {
		return model.Employee{}, err
	}

	created, err := s.store.Create(ctx, employee)
	if errors.Is(err, model.ErrEmployeeCodeConflict) {
		return model.Employee{}, apierror.Validation(map[string]string{"employee_code": "Employee code already exists."})
	}
	if err != nil {
		s.audit.Log(ctx, AuditActionEmployeeCreate, actor, model.AuditStatusFailure, employee.EmployeeCode, err.Error())
		return model.Employee{}, err
	}

	s.audit.Log(ctx, AuditActionEmployeeCreate, actor, model.AuditStatusSuccess, created.EmployeeCode, "")
	return created, nil
}

func (s *EmployeeService) Update(ctx context.Context, id int64, input model.EmployeeInput, actor model.AuditActor) (model.Employee, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}

	employee, err := s.validate(ctx, input, id)
	if err != nil {
		return model.Employee{}, err
	}
	employee.ID = id
	employee.CreatedAt = existing.CreatedAt

	if err := s.store.Update(ctx, employee); err != nil {
		if errors.Is(err, model.ErrEmployeeCodeConflict) {
			return model.Employee{}, apierror.Validation(map[string]string{"employee_code": "Employee code already exists."})
		}
		s.audit.Log(ctx, AuditActionEmployeeUpdate, actor, model.AuditStatusFailure, employee.EmployeeCode, err.Error())
		return model.Employee{}, err
	}

	s.audit.Log(ctx, AuditActionEmployeeUpdate, actor, model.AuditStatusSuccess, employee.EmployeeCode, "")
	return employee, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int64, actor model.AuditActor) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.audit.Log(ctx, AuditActionEmployeeDelete, actor, model.AuditStatusFailure, existing.EmployeeCode, err.Error())
		return err
	}

	s.audit.Log(ctx, AuditActionEmployeeDelete, actor, model.AuditStatusSuccess, existing.EmployeeCode, "")
	return nil
}

func (s *EmployeeService) validate(ctx context.Context, input model.EmployeeInput, excludeID int64) (model.Employee, error) {
	fields := model.FieldErrors{}
	employee := model.Employee{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		EmployeeCode: strings.TrimSpace(input.EmployeeCode),
	}

	if employee.FirstName == "" {
		fields.Add("first_name", "First name is required.")
	}

	switch {
	case employee.EmployeeCode == "":
		fields.Add("employee_code", "Employee code is required.")
	case len(employee.EmployeeCode) > model.EmployeeCodeMaxLength:
		fields.Add("employee_code", fmt.Sprintf("Employee code cannot exceed %d characters.", model.EmployeeCodeMaxLength))
	}

	if joined, ok := parseDate(input.DateOfJoining); ok {
		employee.DateOfJoining = joined
	} else {
		fields.Add("date_of_joining", "Date of Joining is required.")
	}

	today := s.now().UTC()
	if born, ok := parseDate(input.DateOfBirth); !ok {
		fields.Add("date_of_birth", "Date of birth is required.")
	} else if born.After(today) {
		fields.Add("date_of_birth", "The date cannot be in the future.")
	} else {
		employee.DateOfBirth = born
	}

	salaryRaw := strings.TrimSpace(input.Salary)
	if salaryRaw == "" {
		fields.Add("salary", "Salary is required.")
	} else if salary, err := strconv.ParseInt(salaryRaw, 10, 64); err != nil || salary < 0 {
		fields.Add("salary", "Salary must be a non-negative whole number.")
	} else {
		employee.Salary = salary
	}

	if _, invalid := fields["employee_code"]; !invalid {
		taken, err := s.store.ExistsByCode(ctx, employee.EmployeeCode, excludeID)
		if err != nil {
			return model.Employee{}, err
		}
		if taken {
			fields.Add("employee_code", "Employee code already exists.")
		}
	}

	if fields.Any() {
		return model.Employee{}, apierror.Validation(fields)
	}

	return employee, nil
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
