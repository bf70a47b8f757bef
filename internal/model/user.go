package model

import "time"

const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

// EmployeeEditorRoles may create, change and delete employee records.
// Every signed-in role may read them.
var EmployeeEditorRoles = []string{RoleAdmin, RoleEditor}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"role_id"`
	RoleName     string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserList struct {
	Users []User `json:"users"`
}

type LoginResult struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
