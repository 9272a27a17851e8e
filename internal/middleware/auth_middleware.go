package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/waynje/django-sprint4/internal/auth"
)

// AuthMiddleware resolves the session cookie and stores the user in the
// request context. Anonymous requests pass through with no user set.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie("session_token")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := auth.GetUserBySession(sessionCookie.Value)
		if err != nil {
			// Session invalid or expired; drop the cookie and continue
			// as anonymous.
			auth.ClearSessionCookie(w)
			log.Printf("Invalid or expired session: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), auth.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthMiddleware redirects anonymous requests to the login page,
// preserving the original target so the user lands back on it after
// authenticating.
func RequireAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, "/auth/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
