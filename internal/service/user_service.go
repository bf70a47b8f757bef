package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"employee-records/internal/auth"
	"employee-records/internal/model"
	"employee-records/pkg/apierror"
)

const maxUsernameLength = 100

type userStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
}

type roleStore interface {
	List(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id int64) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
}

type UserService struct {
	users      userStore
	roles      roleStore
	audit      *AuditService
	bcryptCost int
}

func NewUserService(users userStore, roles roleStore, audit *AuditService, bcryptCost int) *UserService {
	return &UserService{users: users, roles: roles, audit: audit, bcryptCost: bcryptCost}
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roles.List(ctx)
}

func (s *UserService) CreateUser(ctx context.Context, input model.CreateUserInput, actor model.AuditActor) (model.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)

	fields := model.FieldErrors{}
	validateUserFields(fields, input.FirstName, input.Username)
	if input.Password == "" {
		fields.Add("password", "Password is required.")
	}

	role, err := s.resolveRole(ctx, input.RoleID, fields)
	if err != nil {
		return model.User{}, err
	}
	if err := s.checkUsernameFree(ctx, input.Username, 0, fields); err != nil {
		return model.User{}, err
	}
	if fields.Any() {
		return model.User{}, apierror.Validation(fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	created, err := s.users.Create(ctx, model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.User{}, apierror.Validation(map[string]string{"username": "Username already exists."})
	}
	if err != nil {
		s.audit.Log(ctx, AuditActionUserCreate, actor, model.AuditStatusFailure, input.Username, err.Error())
		return model.User{}, err
	}

	s.audit.Log(ctx, AuditActionUserCreate, actor, model.AuditStatusSuccess, created.Username, "")
	return created, nil
}

// CreateUserWithRoleName is used by the command line, where roles are given
// by name rather than id.
func (s *UserService) CreateUserWithRoleName(ctx context.Context, input model.CreateUserInput, roleName string) (model.User, error) {
	role, err := s.roles.FindByName(ctx, strings.TrimSpace(roleName))
	if err != nil {
		if errors.Is(err, model.ErrRoleNotFound) {
			return model.User{}, apierror.New("BAD_REQUEST", "unknown role", roleName, http.StatusBadRequest)
		}
		return model.User{}, err
	}

	input.RoleID = role.ID
	return s.CreateUser(ctx, input, model.AuditActor{Username: "cli"})
}

// UpdateUser changes profile fields and the role. Passwords are not edited here.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input model.UpdateUserInput, actor model.AuditActor) (model.User, error) {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)

	fields := model.FieldErrors{}
	validateUserFields(fields, input.FirstName, input.Username)

	role, err := s.resolveRole(ctx, input.RoleID, fields)
	if err != nil {
		return model.User{}, err
	}
	if err := s.checkUsernameFree(ctx, input.Username, id, fields); err != nil {
		return model.User{}, err
	}
	if fields.Any() {
		return model.User{}, apierror.Validation(fields)
	}

	existing.FirstName = input.FirstName
	existing.LastName = input.LastName
	existing.Username = input.Username
	existing.RoleID = role.ID
	existing.RoleName = role.Name

	if err := s.users.Update(ctx, existing); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.User{}, apierror.Validation(map[string]string{"username": "Username already exists."})
		}
		s.audit.Log(ctx, AuditActionUserUpdate, actor, model.AuditStatusFailure, existing.Username, err.Error())
		return model.User{}, err
	}

	s.audit.Log(ctx, AuditActionUserUpdate, actor, model.AuditStatusSuccess, existing.Username, "")
	return existing, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64, actor model.AuditActor) error {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if strings.EqualFold(existing.Username, actor.Username) {
		return model.ErrSelfDelete
	}

	if err := s.users.Delete(ctx, id); err != nil {
		s.audit.Log(ctx, AuditActionUserDelete, actor, model.AuditStatusFailure, existing.Username, err.Error())
		return err
	}

	s.audit.Log(ctx, AuditActionUserDelete, actor, model.AuditStatusSuccess, existing.Username, "")
	return nil
}

func (s *UserService) resolveRole(ctx context.Context, roleID int64, fields model.FieldErrors) (model.Role, error) {
	if roleID <= 0 {
		fields.Add("role_id", "Role is required.")
		return model.Role{}, nil
	}

	role, err := s.roles.FindByID(ctx, roleID)
	if errors.Is(err, model.ErrRoleNotFound) {
		fields.Add("role_id", "Role does not exist.")
		return model.Role{}, nil
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("resolve role: %w", err)
	}
	return role, nil
}

func (s *UserService) checkUsernameFree(ctx context.Context, username string, excludeID int64, fields model.FieldErrors) error {
	if username == "" {
		return nil
	}

	taken, err := s.users.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		fields.Add("username", "Username already exists.")
	}
	return nil
}

func validateUserFields(fields model.FieldErrors, firstName string, username string) {
	if firstName == "" {
		fields.Add("first_name", "First name is required.")
	}
	if username == "" {
		fields.Add("username", "Username is required.")
	} else if len(username) > maxUsernameLength {
		fields.Add("username", fmt.Sprintf("Username cannot exceed %d characters.", maxUsernameLength))
	}
}
