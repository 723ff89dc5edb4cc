package auth

import "time"

// RegisterRequest is the payload for POST /register. The validate tags declare
// the field rules; Validator.Struct evaluates them before any handler logic.
// The password cap of 72 matches bcrypt's input limit.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3" example:"newuser"`
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72" example:"strongpassword123"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required,max=72" example:"strongpassword123"`
}

// UserResponse is the public view of a user: everything except the password hash.
type UserResponse struct {
	ID        int       `json:"id" example:"1"`
	Username  string    `json:"username" example:"newuser"`
	Email     string    `json:"email" example:"user@example.com"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageResponse is a minimal confirmation body, used by logout.
type MessageResponse struct {
	Message string `json:"message" example:"logged out"`
}
