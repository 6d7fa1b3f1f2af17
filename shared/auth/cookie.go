package auth

import (
	"net/http"
	"time"
)

// CookieBaker writes and clears the httponly session cookies. In production
// the frontend is served from a different origin, so cookies are
// SameSite=None and Secure; in development they are SameSite=Lax over plain
// HTTP.
type CookieBaker struct {
	production bool
}

// NewCookieBaker creates a CookieBaker for the given environment.
func NewCookieBaker(production bool) CookieBaker {
	return CookieBaker{production: production}
}

// Set writes the token into an httponly cookie with the given lifetime.
func (b CookieBaker) Set(w http.ResponseWriter, name, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   b.production,
		SameSite: b.sameSite(),
	})
}

// Clear removes the cookie. The attributes must match Set so browsers drop
// the right cookie.
func (b CookieBaker) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   b.production,
		SameSite: b.sameSite(),
	})
}

func (b CookieBaker) sameSite() http.SameSite {
	if b.production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
