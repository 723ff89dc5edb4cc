// Package users holds the identity-scoped account operations: reading the
// current profile, partial updates and account deletion. Every handler here
// sits behind the auth gate.
package users

import "time"

// UpdateUserRequest is the payload for PUT /update. Pointer fields make the
// update partial: a nil field is left untouched.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3" example:"newname"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email" example:"new@example.com"`
}

// DeletedUserResponse is the snapshot returned after account deletion: the
// public fields as they existed just before the delete, plus the deletion time.
type DeletedUserResponse struct {
	ID        int       `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	DeletedAt time.Time `json:"deleted_at"`
}
