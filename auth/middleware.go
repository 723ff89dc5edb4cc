package auth

import (
	"net/http"

	"github.com/user/authcore-go/apperror"
)

// RequireAuth is the gate in front of every protected handler. It extracts the
// session cookie, verifies the token, loads the identity from the store and
// threads it into the request context. Any failure short-circuits with a 401
// before the protected handler runs.
//
// All rejection bodies are identical on purpose: a caller cannot tell a
// missing cookie from a tampered token, an expired session or a token whose
// user has since been deleted.
func RequireAuth(codec *TokenCodec, store UserStore, cookie *SessionCookie) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := cookie.Extract(r)
			if !ok {
				WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
				return
			}

			userID, err := codec.Verify(token)
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("not authenticated", err))
				return
			}

			// The user may have been deleted after the token was issued; a
			// verified token for a vanished identity is still a rejection.
			user, err := store.FindByID(r.Context(), userID)
			if err != nil {
				if apperror.IsNotFound(err) {
					WriteError(w, r, apperror.NewAuthError("not authenticated", err))
					return
				}
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
