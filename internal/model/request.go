package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type EmployeeInput struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	EmployeeCode  string `json:"employee_code"`
	DateOfJoining string `json:"date_of_joining"`
	DateOfBirth   string `json:"date_of_birth"`
	Salary        string `json:"salary"`
}

type CreateUserInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	RoleID    int64  `json:"role_id"`
}

type UpdateUserInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	RoleID    int64  `json:"role_id"`
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Add(field string, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f FieldErrors) Any() bool {
	return len(f) > 0
}
