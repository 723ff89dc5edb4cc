package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/authcore-go/apperror"
	"github.com/user/authcore-go/auth"
	"github.com/user/authcore-go/config"
)

// fakeStore is an in-memory auth.UserStore mirroring the Postgres store's
// contract: combined duplicate message, lowercased emails, not-found errors.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*auth.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, users: make(map[int]*auth.User)}
}

func (f *fakeStore) Create(_ context.Context, username, email, passwordHash string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return nil, apperror.NewConflictError("username or email already exists", nil)
		}
	}
	now := time.Now()
	user := &auth.User{
		ID: f.nextID, Username: username, Email: email,
		PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now,
	}
	f.users[user.ID] = user
	f.nextID++
	copied := *user
	return &copied, nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (f *fakeStore) FindByID(_ context.Context, id int) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) Update(_ context.Context, id int, params auth.UpdateUserParams) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	if params.Username != nil {
		for otherID, other := range f.users {
			if otherID != id && other.Username == *params.Username {
				return nil, apperror.NewConflictError("username or email already exists", nil)
			}
		}
		u.Username = *params.Username
	}
	if params.Email != nil {
		email := strings.ToLower(*params.Email)
		for otherID, other := range f.users {
			if otherID != id && other.Email == email {
				return nil, apperror.NewConflictError("username or email already exists", nil)
			}
		}
		u.Email = email
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeStore) Delete(_ context.Context, id int) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	delete(f.users, id)
	copied := *u
	return &copied, nil
}

// newTestRouter assembles the router exactly as main does, over the fake store.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	cfg := config.AuthConfig{
		JWTSecret:    "handlers-test-secret",
		TokenTTL:     time.Hour,
		CookieMaxAge: time.Hour,
		Environment:  "development",
	}

	store := newFakeStore()
	hasher := auth.NewPasswordHasher()
	codec := auth.NewTokenCodec(cfg)
	cookie := auth.NewSessionCookie(cfg)
	validator := auth.NewValidator()

	authHandlers := auth.NewHandlers(auth.NewService(store, hasher, codec), validator, cookie)
	userHandlers := NewHandlers(NewService(store), validator, cookie)

	r := chi.NewRouter()
	r.Post("/register", authHandlers.HandleRegister())
	r.Post("/login", authHandlers.HandleLogin())
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(codec, store, cookie))
		r.Get("/logout", authHandlers.HandleLogout())
		r.Get("/me", userHandlers.HandleGetMe())
		r.Put("/update", userHandlers.HandleUpdate())
		r.Delete("/delete", userHandlers.HandleDelete())
	})
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookies(t *testing.T, rec *httptest.ResponseRecorder) []*http.Cookie {
	t.Helper()
	var out []*http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" && c.MaxAge > 0 {
			out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	return out
}

func TestRegisterLoginMeLogoutFlow(t *testing.T) {
	r := newTestRouter(t)

	// Register.
	rec := doJSON(t, r, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, "alice", registered["username"])
	assert.Equal(t, "alice@x.com", registered["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	session := sessionCookies(t, rec)
	require.NotEmpty(t, session, "register must set the session cookie")

	// Me with the fresh session.
	rec = doJSON(t, r, http.MethodGet, "/me", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, registered["id"], me["id"])
	assert.Equal(t, "alice", me["username"])

	// Logout clears the cookie.
	rec = doJSON(t, r, http.MethodGet, "/logout", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)

	// Presenting the cleared cookie (empty value, as the browser now holds it)
	// must read as no session.
	rec = doJSON(t, r, http.MethodGet, "/me", "",
		[]*http.Cookie{{Name: cleared[0].Name, Value: cleared[0].Value}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := sessionCookies(t, rec)

	// Same email, different username.
	rec = doJSON(t, r, http.MethodPost, "/register",
		`{"username":"bob","email":"alice@x.com","password":"secret2"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username or email already exists")

	// First user's record is unchanged.
	rec = doJSON(t, r, http.MethodGet, "/me", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"short username", `{"username":"ab","email":"a@x.com","password":"secret1"}`, "username must be at least 3 characters"},
		{"bad email", `{"username":"alice","email":"nope","password":"secret1"}`, "email must be a valid email address"},
		{"short password", `{"username":"alice","email":"a@x.com","password":"abc"}`, "password must be at least 6 characters"},
		{"missing everything", `{}`, "username is required"},
		{"password beyond the bcrypt limit",
			`{"username":"alice","email":"a@x.com","password":"` + strings.Repeat("a", 100) + `"}`,
			"password must be at most 72 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestLoginFailureParity(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPass := doJSON(t, r, http.MethodPost, "/login",
		`{"email":"alice@x.com","password":"wrong!"}`, nil)
	unknown := doJSON(t, r, http.MethodPost, "/login",
		`{"email":"ghost@x.com","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	// Byte-identical bodies: the caller cannot tell the causes apart.
	assert.Equal(t, wrongPass.Body.Bytes(), unknown.Body.Bytes())
}

func TestLoginSuccess(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)

	rec := doJSON(t, r, http.MethodPost, "/login",
		`{"email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotEmpty(t, sessionCookies(t, rec), "login must set the session cookie")
}

func TestUpdateHandler(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := sessionCookies(t, rec)

	doJSON(t, r, http.MethodPost, "/register",
		`{"username":"bob","email":"bob@x.com","password":"secret2"}`, nil)

	t.Run("requires authentication", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/update", `{"username":"newname"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("partial update succeeds", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/update", `{"username":"alice2"}`, session)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"alice2"`)
		assert.Contains(t, rec.Body.String(), `"email":"alice@x.com"`)
	})

	t.Run("email collision with another user", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/update", `{"email":"bob@x.com"}`, session)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "username or email already exists")
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/update", `{}`, session)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "no fields provided for update")
	})

	t.Run("invalid optional fields are rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/update", `{"username":"ab"}`, session)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "username must be at least 3 characters")
	})
}

func TestDeleteHandler(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/register",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := sessionCookies(t, rec)

	t.Run("requires authentication", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/delete", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deletes own account and clears the session", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/delete", "", session)
		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, "alice", snapshot["username"])
		assert.Equal(t, "alice@x.com", snapshot["email"])
		assert.NotEmpty(t, snapshot["deleted_at"])
		assert.NotContains(t, rec.Body.String(), "password")

		cleared := rec.Result().Cookies()
		require.NotEmpty(t, cleared)
		assert.Less(t, cleared[0].MaxAge, 0)
	})

	t.Run("stale session after deletion is unauthorized", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/me", "", session)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
