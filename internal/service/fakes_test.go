package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"employee-records/internal/model"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[int64]model.User{}}
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) ExistsByUsername(_ context.Context, username string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, u := range m.users {
		if id != excludeID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryUsers) Update(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUsers) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryRoles struct {
	roles []model.Role
}

func newMemoryRoles() *memoryRoles {
	return &memoryRoles{roles: []model.Role{
		{ID: 1, Name: model.RoleAdmin},
		{ID: 2, Name: model.RoleEditor},
		{ID: 3, Name: model.RoleViewer},
	}}
}

func (m *memoryRoles) List(_ context.Context) ([]model.Role, error) {
	return m.roles, nil
}

func (m *memoryRoles) FindByID(_ context.Context, id int64) (model.Role, error) {
	for _, r := range m.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Role{}, model.ErrRoleNotFound
}

func (m *memoryRoles) FindByName(_ context.Context, name string) (model.Role, error) {
	for _, r := range m.roles {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return model.Role{}, model.ErrRoleNotFound
}

type memoryEmployees struct {
	mu        sync.Mutex
	nextID    int64
	employees map[int64]model.Employee
}

func newMemoryEmployees() *memoryEmployees {
	return &memoryEmployees{employees: map[int64]model.Employee{}}
}

func (m *memoryEmployees) List(_ context.Context) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryEmployees) FindByID(_ context.Context, id int64) (model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.employees[id]
	if !ok {
		return model.Employee{}, model.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memoryEmployees) ExistsByCode(_ context.Context, code string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.employees {
		if id != excludeID && e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryEmployees) Create(_ context.Context, e model.Employee) (model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = m.nextID
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryEmployees) Update(_ context.Context, e model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[e.ID]; !ok {
		return model.ErrEmployeeNotFound
	}
	m.employees[e.ID] = e
	return nil
}

func (m *memoryEmployees) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return model.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	failLog bool
}

func (m *memoryAudit) Log(_ context.Context, entry model.AuditEntry) error {
	if m.failLog {
		return errors.New("audit table unavailable")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAudit) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.AuditEntry, 0)
	for _, e := range m.entries {
		if query.Action != "" && e.Action != query.Action {
			continue
		}
		out = append(out, e)
	}
	return out, model.Meta{Page: query.Page, Limit: query.Limit, Total: len(out)}, nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action+":"+e.Status)
	}
	return out
}
