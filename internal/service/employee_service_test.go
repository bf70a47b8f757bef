package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"employee-records/internal/model"
)

func newTestEmployeeService() (*EmployeeService, *memoryAudit) {
	audit := &memoryAudit{}
	svc := NewEmployeeService(newMemoryEmployees(), NewAuditService(audit))
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC) }
	return svc, audit
}

func validEmployeeInput() model.EmployeeInput {
	return model.EmployeeInput{
		FirstName:     "Grace",
		LastName:      "Hopper",
		EmployeeCode:  "EMP-001",
		DateOfJoining: "2020-01-15",
		DateOfBirth:   "1990-12-09",
		Salary:        "85000",
	}
}

func TestCreateEmployee(t *testing.T) {
	t.Parallel()

	svc, audit := newTestEmployeeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmployeeInput(), model.AuditActor{Username: "alice"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, int64(85000), created.Salary)
	require.Equal(t, "01/15/2020", created.DateOfJoiningFormatted())

	_, err = svc.Create(ctx, validEmployeeInput(), model.AuditActor{Username: "alice"})
	requireFieldError(t, err, "employee_code")

	require.Equal(t, []string{AuditActionEmployeeCreate + ":" + model.AuditStatusSuccess}, audit.actions())
}

func TestEmployeeValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestEmployeeService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*model.EmployeeInput)
		field  string
	}{
		{"missing first name", func(in *model.EmployeeInput) { in.FirstName = "  " }, "first_name"},
		{"missing code", func(in *model.EmployeeInput) { in.EmployeeCode = "" }, "employee_code"},
		{"code too long", func(in *model.EmployeeInput) { in.EmployeeCode = strings.Repeat("x", 51) }, "employee_code"},
		{"missing joining date", func(in *model.EmployeeInput) { in.DateOfJoining = "" }, "date_of_joining"},
		{"unparseable joining date", func(in *model.EmployeeInput) { in.DateOfJoining = "15/01/2020" }, "date_of_joining"},
		{"missing birth date", func(in *model.EmployeeInput) { in.DateOfBirth = "" }, "date_of_birth"},
		{"birth date in future", func(in *model.EmployeeInput) { in.DateOfBirth = "2030-01-01" }, "date_of_birth"},
		{"missing salary", func(in *model.EmployeeInput) { in.Salary = "" }, "salary"},
		{"negative salary", func(in *model.EmployeeInput) { in.Salary = "-1" }, "salary"},
		{"non numeric salary", func(in *model.EmployeeInput) { in.Salary = "lots" }, "salary"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validEmployeeInput()
			tc.mutate(&input)

			_, err := svc.Create(ctx, input, model.AuditActor{})
			requireFieldError(t, err, tc.field)
		})
	}
}

func TestUpdateAndDeleteEmployee(t *testing.T) {
	t.Parallel()

	svc, audit := newTestEmployeeService()
	ctx := context.Background()
	actor := model.AuditActor{Username: "alice"}

	first, err := svc.Create(ctx, validEmployeeInput(), actor)
	require.NoError(t, err)

	second := validEmployeeInput()
	second.EmployeeCode = "EMP-002"
	other, err := svc.Create(ctx, second, actor)
	require.NoError(t, err)

	t.Run("keeps own code", func(t *testing.T) {
		input := validEmployeeInput()
		input.Salary = "90000"

		updated, err := svc.Update(ctx, first.ID, input, actor)
		require.NoError(t, err)
		require.Equal(t, int64(90000), updated.Salary)
	})

	t.Run("rejects another employee's code", func(t *testing.T) {
		input := validEmployeeInput()
		input.EmployeeCode = "EMP-002"

		_, err := svc.Update(ctx, first.ID, input, actor)
		requireFieldError(t, err, "employee_code")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, validEmployeeInput(), actor)
		require.ErrorIs(t, err, model.ErrEmployeeNotFound)
	})

	require.NoError(t, svc.Delete(ctx, other.ID, actor))
	_, err = svc.Get(ctx, other.ID)
	require.ErrorIs(t, err, model.ErrEmployeeNotFound)
	require.ErrorIs(t, svc.Delete(ctx, other.ID, actor), model.ErrEmployeeNotFound)

	require.Contains(t, audit.actions(), AuditActionEmployeeDelete+":"+model.AuditStatusSuccess)
}
