package auth

import (
	"net/http"
	"time"

	"github.com/user/authcore-go/config"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// SessionCookie maps the session token to and from its HTTP cookie. The server
// is the sole writer; the client stores and replays the value verbatim.
//
// Attribute policy: always HttpOnly. In production the cookie is Secure with
// SameSite=None so it survives cross-site requests behind a proxy; everywhere
// else it is SameSite=Lax and not Secure so local development over plain HTTP
// works.
type SessionCookie struct {
	cfg config.AuthConfig
}

// NewSessionCookie creates a session transport bound to the cookie policy in cfg.
func NewSessionCookie(cfg config.AuthConfig) *SessionCookie {
	return &SessionCookie{cfg: cfg}
}

// Attach sets the session cookie on the response.
func (s *SessionCookie) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: s.sameSite(),
	})
}

// Clear overwrites the cookie with an already-expired value so the client
// stops presenting it. Safe to call whether or not a session existed.
func (s *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: s.sameSite(),
	})
}

// Extract reads the raw cookie value from the request, if present. It performs
// no validation; that is the token codec's job.
func (s *SessionCookie) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *SessionCookie) sameSite() http.SameSite {
	if s.cfg.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
