package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/authcore-go/apperror"
	"github.com/user/authcore-go/auth"
)

// Handlers exposes the identity-scoped account operations over HTTP. The auth
// gate has already loaded the identity; handlers read it from the context and
// never accept a user ID from the client.
type Handlers struct {
	service   *Service
	validator *auth.Validator
	cookie    *auth.SessionCookie
}

// NewHandlers creates the users HTTP layer.
func NewHandlers(service *Service, validator *auth.Validator, cookie *auth.SessionCookie) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
		cookie:    cookie,
	}
}

// HandleGetMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Success 200 {object} auth.UserResponse "Current profile"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Failure 404 {object} apperror.ErrorResponse "Identity no longer exists"
// @Router /me [get]
func (h *Handlers) HandleGetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		// The gate loaded the user moments ago; re-reading through the service
		// covers the pathological window where the record vanished in between.
		profile, err := h.service.GetProfile(r.Context(), user.ID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdate godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param updateBody body UpdateUserRequest true "Fields to update"
// @Success 200 {object} auth.UserResponse "Updated profile"
// @Failure 400 {object} apperror.ErrorResponse "Validation failure or duplicate username/email"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Failure 404 {object} apperror.ErrorResponse "Identity no longer exists"
// @Router /update [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.validator.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if req.Username == nil && req.Email == nil {
			auth.WriteError(w, r, apperror.NewValidationError("no fields provided for update", nil))
			return
		}

		profile, err := h.service.UpdateProfile(r.Context(), user.ID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

// HandleDelete godoc
// @Summary Delete the current user's account
// @Description Deletes the caller's own record, clears the session cookie and
// @Description returns a snapshot of the deleted account.
// @Tags users
// @Produce json
// @Success 200 {object} DeletedUserResponse "Deleted account snapshot"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Failure 404 {object} apperror.ErrorResponse "Identity no longer exists"
// @Router /delete [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		snapshot, err := h.service.DeleteAccount(r.Context(), user.ID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.cookie.Clear(w)
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
