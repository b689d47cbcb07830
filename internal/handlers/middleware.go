package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"daycaremoments/internal/models"
	"daycaremoments/internal/security"
	"daycaremoments/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	rateLimiter *security.RateLimiter
	csrf        *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, rateLimiter *security.RateLimiter, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService: authService,
		rateLimiter: rateLimiter,
		csrf:        csrf,
	}
}

// RequireAuth is middleware that requires a valid session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, "Session expired", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole requires an authenticated user with one of the given roles.
// Admins always pass: they can do everything staff can.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
				return
			}
			if !roleAllowed(user.Role, roles) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions", "", nil)
				return
			}
			next(w, r)
		})
	}
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff, models.RoleParent:
		for _, a := range allowed {
			if role == a {
				return true
			}
		}
		return false
	default:
		// Unknown roles never pass authorization.
		return false
	}
}

// CSRFHeaderName is the request header carrying the CSRF token.
const CSRFHeaderName = "X-CSRF-Token"

// CSRFProtect rejects state-changing requests whose CSRF header does not
// match the session. Wrap inside RequireAuth so the session cookie is known
// to be valid.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		if !m.csrf.ValidateToken(cookie.Value, r.Header.Get(CSRFHeaderName)) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects requests from IPs that exceed the limiter's budget.
// Used on login and register to slow down credential stuffing.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
