package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/ratelimit"
	"github.com/nandanfoods/grocer-api/shared/auth"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"userID"}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Middleware carries the cross-cutting guards in front of the handlers:
// session checks, the two rate-limit classes, and request logging.
type Middleware struct {
	tokenIssuer auth.TokenIssuer
	limiter     *ratelimit.Limiter
	logger      *zerolog.Logger
}

// NewMiddleware creates the middleware set.
func NewMiddleware(tokenIssuer auth.TokenIssuer, limiter *ratelimit.Limiter, logger *zerolog.Logger) *Middleware {
	return &Middleware{
		tokenIssuer: tokenIssuer,
		limiter:     limiter,
		logger:      logger,
	}
}

// RequireUser admits only requests carrying a valid session cookie and puts
// the user id on the context.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			failStatus(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		userID, err := m.tokenIssuer.VerifySession(cookie.Value)
		if err != nil {
			failStatus(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSeller admits only requests carrying a valid seller-panel cookie.
func (m *Middleware) RequireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SellerCookieName)
		if err != nil {
			failStatus(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		if _, err := m.tokenIssuer.VerifySellerSession(cookie.Value); err != nil {
			failStatus(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LimitAuth applies the general auth throttle class.
func (m *Middleware) LimitAuth(next http.Handler) http.Handler {
	return m.limit(next, m.limiter.AllowAuth)
}

// LimitVerify applies the stricter OTP-verification throttle class.
func (m *Middleware) LimitVerify(next http.Handler) http.Handler {
	return m.limit(next, m.limiter.AllowVerify)
}

func (m *Middleware) limit(next http.Handler, allow func(context.Context, string) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := allow(r.Context(), clientIP(r))
		switch {
		case errors.Is(err, ratelimit.ErrRateLimited):
			failStatus(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		case err != nil:
			m.logger.Error().Err(err).Msg("rate limiter unavailable")
			failStatus(w, http.StatusServiceUnavailable, msgSomethingWentWrong)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func clientIP(r *http.Request) string {
	// RealIP middleware rewrites RemoteAddr from proxy headers, in which
	// case it may no longer carry a port.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
