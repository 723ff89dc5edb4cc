// Package auth implements credential-based authentication and session
// management: password hashing, the signed session token, the cookie that
// carries it, the credential store and the request gate.
package auth

import "time"

// User is the persisted identity record. PasswordHash carries `json:"-"` so it
// can never serialize into a response, whatever struct ends up on the wire.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicView returns the subset of the record that is safe to hand to clients.
func (u *User) PublicView() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
