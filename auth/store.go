package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/authcore-go/apperror"
)

// duplicateMessage deliberately does not say which field collided, so the
// endpoint cannot be used to probe which usernames or emails exist.
const duplicateMessage = "username or email already exists"

// UpdateUserParams carries the mutable fields for a partial update. A nil
// field is left untouched.
type UpdateUserParams struct {
	Username *string
	Email    *string
}

// UserStore is the credential store: persistence-backed lookup, insert, update
// and delete of user records. It is the sole authority for the uniqueness of
// usernames and emails; enforcement lives in the database's unique indexes so
// concurrent creates cannot both pass a pre-check.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	Update(ctx context.Context, id int, params UpdateUserParams) (*User, error)
	Delete(ctx context.Context, id int) (*User, error)
}

// poolIface is the subset of pgxpool.Pool the store uses. Declared as an
// interface so tests can substitute a pgxmock pool.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserStore implements UserStore using PostgreSQL.
type PostgresUserStore struct {
	pool poolIface
}

// NewPostgresUserStore creates a new PostgreSQL-backed credential store.
func NewPostgresUserStore(pool poolIface) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Create inserts a new user record. Emails are stored lowercased. A collision
// on username or email surfaces as a ConflictError straight from the unique
// index, with no check-then-insert window.
func (s *PostgresUserStore) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	user := &User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
	}

	query := `INSERT INTO users (username, email, password_hash)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewConflictError(duplicateMessage, err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// FindByEmail returns the user with the given email, matched case-insensitively.
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at
	          FROM users WHERE email = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, strings.ToLower(email)),
		fmt.Sprintf("user with email '%s' not found", email))
}

// FindByID returns the user with the given ID.
func (s *PostgresUserStore) FindByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at
	          FROM users WHERE id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, id),
		fmt.Sprintf("user with ID %d not found", id))
}

// Update applies a partial update of the mutable fields and bumps updated_at.
// Uniqueness is re-checked by the same indexes that guard Create, so a
// concurrent update cannot slip a duplicate through.
func (s *PostgresUserStore) Update(ctx context.Context, id int, params UpdateUserParams) (*User, error) {
	var setClauses []string
	var args []any
	argID := 1

	if params.Username != nil {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", argID))
		args = append(args, *params.Username)
		argID++
	}
	if params.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, strings.ToLower(*params.Email))
		argID++
	}

	if len(setClauses) == 0 {
		return s.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d
	          RETURNING id, username, email, password_hash, created_at, updated_at`,
		strings.Join(setClauses, ", "), argID)

	user := &User{}
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
		}
		if isUniqueViolation(err) {
			return nil, apperror.NewConflictError(duplicateMessage, err)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return user, nil
}

// Delete removes the record and returns it as it existed immediately before
// deletion, for caller-side reporting.
func (s *PostgresUserStore) Delete(ctx context.Context, id int) (*User, error) {
	query := `DELETE FROM users WHERE id = $1
	          RETURNING id, username, email, password_hash, created_at, updated_at`
	return s.scanUser(s.pool.QueryRow(ctx, query, id),
		fmt.Sprintf("user with ID %d not found", id))
}

func (s *PostgresUserStore) scanUser(row pgx.Row, notFoundMsg string) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(notFoundMsg, nil)
		}
		return nil, apperror.NewDatabaseError("failed to query user", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
