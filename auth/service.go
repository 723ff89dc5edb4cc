package auth

import (
	"context"

	"github.com/user/authcore-go/apperror"
)

// Service holds the anonymous-path business logic: creating an account and
// exchanging credentials for a session token. Dependencies are injected
// explicitly at construction.
type Service struct {
	store  UserStore
	hasher *PasswordHasher
	codec  *TokenCodec
}

// NewService creates an auth service.
func NewService(store UserStore, hasher *PasswordHasher, codec *TokenCodec) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		codec:  codec,
	}
}

// Register hashes the password, creates the user and issues a session token
// for the new identity. A username or email collision comes back as the
// store's ConflictError, which does not reveal which field collided.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.Create(ctx, req.Username, req.Email, hashed)
	if err != nil {
		return nil, "", err
	}

	token, _, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and issues a session token. An unknown email
// and a wrong password return the same error value, so the two causes are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, "", apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, "", err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, "", apperror.NewAuthError("invalid credentials", nil)
	}

	token, _, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
