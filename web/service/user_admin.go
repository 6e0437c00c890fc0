package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/util/crypto"
)

// Actor identifies who performs an administrative operation.
type Actor struct {
	ID string
	IP string
}

type UserAdminService struct {
	users   model.UserStore
	audit   *AuditService
	godUser string
}

func NewUserAdminService(users model.UserStore, audit *AuditService, godUser string) *UserAdminService {
	return &UserAdminService{users: users, audit: audit, godUser: godUser}
}

// UserDTO is a user as shown on the administration page.
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	God   bool   `json:"god"`
}

func (s *UserAdminService) toDTO(u *model.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Role: u.Role, God: s.IsGodUser(u.ID)}
}

// IsGodUser reports whether id is the configured administrator.
func (s *UserAdminService) IsGodUser(id string) bool {
	return s.godUser != "" && id == s.godUser
}

func (s *UserAdminService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, backendError(err)
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, s.toDTO(&users[i]))
	}
	return out, nil
}

func (s *UserAdminService) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, backendError(err)
	}
	return true, nil
}

// AddUser creates a user keyed by email. An existing email is never
// overwritten.
func (s *UserAdminService) AddUser(ctx context.Context, actor Actor, email, password, role string) (*model.User, error) {
	email = strings.TrimSpace(email)
	role = strings.TrimSpace(role)
	switch {
	case email == "":
		return nil, &ValidationError{Field: "email", Reason: "is required"}
	case password == "":
		return nil, &ValidationError{Field: "password", Reason: "is required"}
	case role == "":
		return nil, &ValidationError{Field: "role", Reason: "is required"}
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.UserExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	user, err := model.NewUser(email, password, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, backendError(err)
	}
	s.audit.LogAction(ActionUserCreated, actor.ID, user.ID, actor.IP, map[string]any{"role": role})
	return user, nil
}

// DeleteUser removes a user. The acting user and the god user are refused
// before the store is touched.
func (s *UserAdminService) DeleteUser(ctx context.Context, actor Actor, id string) error {
	if id == actor.ID {
		s.denied(actor, id, "delete self")
		return ErrCannotDeleteSelf
	}
	if s.IsGodUser(id) {
		s.denied(actor, id, "delete god user")
		return ErrProtectedUser
	}

	err := s.users.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return ErrUnknownUser
	} else if err != nil {
		return backendError(err)
	}
	s.audit.LogAction(ActionUserDeleted, actor.ID, id, actor.IP, nil)
	return nil
}

// UpdateRole replaces the role of a user with a read-modify-upsert. Two
// concurrent updates of the same user race and the last write wins.
func (s *UserAdminService) UpdateRole(ctx context.Context, actor Actor, id, role string) (*model.User, error) {
	if s.IsGodUser(id) {
		s.denied(actor, id, "update god user")
		return nil, ErrProtectedUser
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, &ValidationError{Field: "role", Reason: "is required"}
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrUnknownUser
	} else if err != nil {
		return nil, backendError(err)
	}

	oldRole := user.Role
	user.Role = role
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, backendError(err)
	}
	s.audit.LogAction(ActionRoleChanged, actor.ID, id, actor.IP, map[string]any{"from": oldRole, "to": role})
	return user, nil
}

// ResetPassword stores a fresh hash for an existing user.
func (s *UserAdminService) ResetPassword(ctx context.Context, actor Actor, email, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return ErrUnknownUser
	} else if err != nil {
		return backendError(err)
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return backendError(err)
	}
	s.audit.LogAction(ActionPasswordReset, actor.ID, user.ID, actor.IP, nil)
	return nil
}

// EnsureGodUser creates the configured administrator when missing and
// restores its admin role when it was changed outside the application.
// The stored password of an existing record is left alone.
func (s *UserAdminService) EnsureGodUser(ctx context.Context, password string) error {
	if s.godUser == "" {
		return &ValidationError{Field: "ADMIN_EMAIL", Reason: "is required"}
	}

	user, err := s.users.GetByEmail(ctx, s.godUser)
	switch {
	case errors.Is(err, model.ErrNotFound):
		if err := validatePassword(password); err != nil {
			return err
		}
		user, err = model.NewUser(s.godUser, password, model.RoleAdmin)
		if err != nil {
			return err
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			return backendError(err)
		}
		logger.Infof("admin user %s created", s.godUser)
		return nil
	case err != nil:
		return backendError(err)
	}

	if !user.IsAdmin() {
		logger.Warningf("admin user %s had role %q, restoring %q", s.godUser, user.Role, model.RoleAdmin)
		user.Role = model.RoleAdmin
		if err := s.users.Upsert(ctx, user); err != nil {
			return backendError(err)
		}
		return nil
	}
	logger.Infof("admin user %s already exists", s.godUser)
	return nil
}

// validatePassword rejects passwords bcrypt cannot hash.
func validatePassword(password string) error {
	switch {
	case password == "":
		return &ValidationError{Field: "password", Reason: "is required"}
	case len(password) > crypto.MaxPasswordBytes:
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", crypto.MaxPasswordBytes)}
	}
	return nil
}

func (s *UserAdminService) denied(actor Actor, target, reason string) {
	s.audit.LogAction(ActionPermissionDenied, actor.ID, target, actor.IP, map[string]any{"reason": reason})
}
