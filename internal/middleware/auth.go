package middleware

import (
	"net/http"
	"strings"
)

// AuthCookie carries the logged-in flag.
const AuthCookie = "authenticated"

// AuthMiddleware checks that the user is logged in (cookie 'authenticated=true').
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Login page, static assets and the audio feed (pushed by camera stations) are public.
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(AuthCookie)
		if err != nil || cookie.Value != "true" {
			if isAPIRequest(r) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isPublic(path string) bool {
	return path == "/login" ||
		path == "/auth/login" ||
		path == "/api/audio" ||
		strings.HasPrefix(path, "/static/css/") ||
		strings.HasPrefix(path, "/static/js/")
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		r.Header.Get("Content-Type") == "application/json"
}
