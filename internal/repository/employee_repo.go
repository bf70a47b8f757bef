package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-records/internal/model"
)

const employeeColumns = `id, first_name, last_name, employee_code, date_of_joining,
	date_of_birth, salary, created_at, updated_at`

type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (model.Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Employee{}, model.ErrEmployeeNotFound
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("find employee: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM employees WHERE employee_code = $1 AND id <> $2)`,
		strings.TrimSpace(code), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check employee code exists: %w", err)
	}
	return exists, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e model.Employee) (model.Employee, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO employees (first_name, last_name, employee_code, date_of_joining, date_of_birth, salary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id`,
		e.FirstName, e.LastName, e.EmployeeCode, e.DateOfJoining, e.DateOfBirth, e.Salary, now).Scan(&e.ID)
	if isUniqueViolation(err) {
		return model.Employee{}, model.ErrEmployeeCodeConflict
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("create employee: %w", err)
	}

	e.CreatedAt = now
	e.UpdatedAt = now
	return e, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e model.Employee) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE employees
		 SET first_name = $2, last_name = $3, employee_code = $4, date_of_joining = $5,
		     date_of_birth = $6, salary = $7, updated_at = $8
		 WHERE id = $1`,
		e.ID, e.FirstName, e.LastName, e.EmployeeCode, e.DateOfJoining, e.DateOfBirth, e.Salary, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrEmployeeCodeConflict
	}
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.EmployeeCode, &e.DateOfJoining,
		&e.DateOfBirth, &e.Salary, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
