package model

import "time"

const EmployeeCodeMaxLength = 50

type Employee struct {
	ID            int64     `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name,omitempty"`
	EmployeeCode  string    `json:"employee_code"`
	DateOfJoining time.Time `json:"date_of_joining"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	Salary        int64     `json:"salary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DateOfJoiningFormatted renders the joining date the way the list page shows it.
func (e Employee) DateOfJoiningFormatted() string {
	if e.DateOfJoining.IsZero() {
		return "N/A"
	}
	return e.DateOfJoining.Format("01/02/2006")
}

type EmployeeList struct {
	Employees []Employee `json:"employees"`
}
