package users

import (
	"context"
	"time"

	"github.com/user/authcore-go/auth"
)

// Service provides profile reads and the identity-scoped mutations. It works
// entirely through the credential store; uniqueness on update is enforced by
// the store's indexes, not re-checked here.
type Service struct {
	store auth.UserStore
}

// NewService creates a users service over the shared credential store.
func NewService(store auth.UserStore) *Service {
	return &Service{store: store}
}

// GetProfile returns the public view of the user with the given ID.
func (s *Service) GetProfile(ctx context.Context, userID int) (*auth.UserResponse, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.PublicView(), nil
}

// UpdateProfile applies a partial update to the caller's own record and
// returns the updated public view. A username or email collision surfaces as
// the store's duplicate error.
func (s *Service) UpdateProfile(ctx context.Context, userID int, req UpdateUserRequest) (*auth.UserResponse, error) {
	user, err := s.store.Update(ctx, userID, auth.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return nil, err
	}
	return user.PublicView(), nil
}

// DeleteAccount removes the caller's own record and returns a snapshot of it,
// stamped with the deletion time.
func (s *Service) DeleteAccount(ctx context.Context, userID int) (*DeletedUserResponse, error) {
	user, err := s.store.Delete(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DeletedUserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		DeletedAt: time.Now().UTC(),
	}, nil
}
