package service

import (
	"context"
	"errors"

	"github.com/metabo-ui/metabo-ui/database/model"
)

type AuthService struct {
	users model.UserStore
}

func NewAuthService(users model.UserStore) *AuthService {
	return &AuthService{users: users}
}

// Verify returns the user whose email matches exactly and whose stored
// hash verifies password.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrUnknownUser
	} else if err != nil {
		return nil, backendError(err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrBadPassword
	}
	return user, nil
}

// CurrentUser resolves the id held by a session. A session whose user no
// longer exists yields ErrUnknownUser.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrUnknownUser
	} else if err != nil {
		return nil, backendError(err)
	}
	return user, nil
}
