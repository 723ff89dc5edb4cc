package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/user/authcore-go/apperror"
)

// memStore is an in-memory UserStore used by service and gate tests. It
// mirrors the Postgres store's contract, including the combined duplicate
// message and the lowercasing of emails.
type memStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*User
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, users: make(map[int]*User)}
}

func (m *memStore) Create(_ context.Context, username, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return nil, apperror.NewConflictError(duplicateMessage, nil)
		}
	}

	now := time.Now()
	user := &User{
		ID:           m.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	m.nextID++

	copied := *user
	return &copied, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (m *memStore) FindByID(_ context.Context, id int) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) Update(_ context.Context, id int, params UpdateUserParams) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}

	if params.Username != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Username == *params.Username {
				return nil, apperror.NewConflictError(duplicateMessage, nil)
			}
		}
		u.Username = *params.Username
	}
	if params.Email != nil {
		email := strings.ToLower(*params.Email)
		for otherID, other := range m.users {
			if otherID != id && other.Email == email {
				return nil, apperror.NewConflictError(duplicateMessage, nil)
			}
		}
		u.Email = email
	}
	u.UpdatedAt = time.Now()

	copied := *u
	return &copied, nil
}

func (m *memStore) Delete(_ context.Context, id int) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	delete(m.users, id)
	copied := *u
	return &copied, nil
}
