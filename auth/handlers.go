package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/authcore-go/apperror"
)

// Handlers exposes the anonymous account operations over HTTP and owns the
// pieces every session-producing path needs: the service, the validator and
// the session cookie.
type Handlers struct {
	service   *Service
	validator *Validator
	cookie    *SessionCookie
}

// NewHandlers creates the auth HTTP layer.
func NewHandlers(service *Service, validator *Validator, cookie *SessionCookie) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
		cookie:    cookie,
	}
}

// HandleRegister godoc
// @Summary Register a new account
// @Description Creates a user, starts a session and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.UserResponse "Account created"
// @Failure 400 {object} apperror.ErrorResponse "Validation failure or duplicate username/email"
// @Failure 500 {object} apperror.ErrorResponse "Internal error"
// @Router /register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validator.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		user, token, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		h.cookie.Attach(w, token)
		writeJSON(w, http.StatusCreated, user.PublicView())
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Verifies credentials, starts a session and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.UserResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Validation failure"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal error"
// @Router /login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validator.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		user, token, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		h.cookie.Attach(w, token)
		writeJSON(w, http.StatusOK, user.PublicView())
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Clears the session cookie. Idempotent.
// @Tags auth
// @Produce json
// @Success 200 {object} auth.MessageResponse "Session cleared"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Router /logout [get]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cookie.Clear(w)
		writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
	}
}

// writeJSON serializes data to the response with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError renders any error as a standardized JSON error body. Errors that
// are not AppErrors become a generic internal failure; the detail goes to the
// log, never to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("error handling %s %s: %v", r.Method, r.URL.Path, appErr)
	}

	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
