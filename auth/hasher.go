package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/user/authcore-go/apperror"
)

// PasswordHasher provides one-way, salted hashing of plaintext passwords.
// bcrypt embeds a per-hash random salt and its comparison does not leak the
// position of the first mismatched byte.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the bcrypt default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

// Hash produces a salted bcrypt hash of the password. Two calls with the same
// input yield different hashes.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", apperror.NewValidationError("password must not be empty", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}
	return string(hashed), nil
}

// Verify reports whether password is the input that produced hash. A malformed
// stored hash yields false rather than an error: from the caller's standpoint
// it is simply a credential that cannot match.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
